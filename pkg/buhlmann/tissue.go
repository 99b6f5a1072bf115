package buhlmann

import "math"

// Tissue is the inert gas loading of one compartment, in bar
type Tissue struct {
	PN2 float64
	PHe float64
}

// Total returns the combined inert gas pressure
func (t Tissue) Total() float64 {
	return t.PN2 + t.PHe
}

// TissueState holds the loading of every compartment. It is an array, so
// plain assignment produces an independent copy.
type TissueState [NumCompartments]Tissue

// NewTissueState returns tissues saturated with air at the surface
func NewTissueState() TissueState {
	var s TissueState
	pN2 := (SurfacePressure - WaterVapourPressure) * airN2
	for i := range s {
		s[i] = Tissue{PN2: pN2}
	}
	return s
}

// Apply loads or unloads every compartment for durationSec seconds spent at a
// constant depth breathing gas. Non-positive durations leave the state as is.
func (s *TissueState) Apply(depthM, durationSec float64, gas Gas) {
	if durationSec <= 0 {
		return
	}
	minutes := durationSec / 60.0
	inspN2, inspHe := gas.inspired(depthM)

	for i := range s {
		c := zhl16c[i]
		s[i].PN2 = schreiner(s[i].PN2, inspN2, c.N2HalfTime, minutes)
		s[i].PHe = schreiner(s[i].PHe, inspHe, c.HeHalfTime, minutes)
	}
}

// Travel moves between two depths at rateMPerMin meters per minute and returns
// the time taken in seconds. The change is modelled as one meter slices, each
// held at its midpoint depth.
func (s *TissueState) Travel(fromM, toM, rateMPerMin float64, gas Gas) float64 {
	distance := math.Abs(fromM - toM)
	if distance == 0 || rateMPerMin <= 0 {
		return 0
	}
	durationSec := distance / rateMPerMin * 60.0

	slices := int(math.Ceil(distance))
	sliceSec := durationSec / float64(slices)
	for k := 0; k < slices; k++ {
		frac := (float64(k) + 0.5) / float64(slices)
		s.Apply(fromM+(toM-fromM)*frac, sliceSec, gas)
	}
	return durationSec
}

// schreiner applies the constant-depth exponential uptake equation
func schreiner(p0, pInspired, halfTime, minutes float64) float64 {
	k := math.Ln2 / halfTime
	return pInspired + (p0-pInspired)*math.Exp(-k*minutes)
}

func (s *TissueState) hasHelium() bool {
	for _, t := range s {
		if t.PHe > 0 {
			return true
		}
	}
	return false
}
