package buhlmann

const (
	// SurfacePressure is the ambient pressure at sea level in bar
	SurfacePressure = 1.01325

	// WaterVapourPressure is the alveolar water vapour pressure in bar
	WaterVapourPressure = 0.0627

	// MetersPerBar is the sea water depth that adds one bar of pressure
	MetersPerBar = 10.0

	// airN2 is the nitrogen fraction the tissues start out saturated with
	airN2 = 0.7902
)

// Gas is a breathing mix. Nitrogen makes up whatever oxygen and helium don't.
type Gas struct {
	O2 float64
	He float64
}

// NewGas returns a mix with the given oxygen and helium fractions
func NewGas(o2, he float64) Gas {
	return Gas{O2: o2, He: he}
}

// Air returns a 21% oxygen, helium-free mix
func Air() Gas {
	return Gas{O2: 0.21}
}

// N2 returns the nitrogen fraction of the mix
func (g Gas) N2() float64 {
	n2 := 1 - g.O2 - g.He
	if n2 < 0 {
		return 0
	}
	return n2
}

// inspired returns the alveolar inspired partial pressures of N2 and He at depth
func (g Gas) inspired(depthM float64) (pN2, pHe float64) {
	alveolar := AmbientPressure(depthM) - WaterVapourPressure
	return alveolar * g.N2(), alveolar * g.He
}

// AmbientPressure converts a depth in meters of sea water to absolute pressure in bar
func AmbientPressure(depthM float64) float64 {
	return SurfacePressure + depthM/MetersPerBar
}

// DepthAt converts an absolute pressure in bar to a depth in meters
func DepthAt(pressure float64) float64 {
	return (pressure - SurfacePressure) * MetersPerBar
}
