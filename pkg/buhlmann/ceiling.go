package buhlmann

// bisectIterations fixes the search depth so results are reproducible
const bisectIterations = 60

// GradientFactors are percentages (0-100) of the allowed supersaturation.
// Low applies at the first stop, High at the surface.
type GradientFactors struct {
	Low  int
	High int
}

// at returns the gradient factor, as a fraction, that applies at depthM given
// the first stop depth anchorM
func (gf GradientFactors) at(depthM, anchorM float64) float64 {
	low, high := float64(gf.Low)/100.0, float64(gf.High)/100.0
	if anchorM <= 0 {
		return high
	}
	if depthM >= anchorM {
		return low
	}
	return high + (low-high)*depthM/anchorM
}

// CeilingAt returns the shallowest depth every compartment tolerates when the
// allowed supersaturation is scaled by gf percent. Zero means the diver may
// surface.
func CeilingAt(s *TissueState, gf int) float64 {
	return ceilingAtFraction(s, float64(gf)/100.0)
}

// ceilingAtFraction is CeilingAt with the gradient factor given as a fraction
func ceilingAtFraction(s *TissueState, g float64) float64 {
	var ceiling float64

	for i, t := range s {
		a, b, ok := zhl16c[i].coefficients(t.PN2, t.PHe)
		if !ok {
			continue
		}
		tolerated := (t.Total() - a*g) / (g/b + 1 - g)
		if d := DepthAt(tolerated); d > ceiling {
			ceiling = d
		}
	}
	return ceiling
}

// Ceiling returns the gradient factor ceiling. anchorM is the first stop depth
// where gf.Low applies; pass zero when none has been established and the
// anchor derived from s is returned for use in later calls.
func Ceiling(s *TissueState, gf GradientFactors, anchorM float64) (ceilingM, anchor float64) {
	if gf.Low == gf.High {
		return CeilingAt(s, gf.High), anchorM
	}

	highCeiling := CeilingAt(s, gf.High)
	if highCeiling <= 0 {
		return 0, anchorM
	}

	lowCeiling := CeilingAt(s, gf.Low)
	if anchorM <= 0 {
		if lowCeiling <= 0 {
			return highCeiling, anchorM
		}
		anchorM = lowCeiling
	}
	if lowCeiling >= anchorM {
		return lowCeiling, anchorM
	}

	// Shallowest depth that satisfies the gradient factor in force there.
	// shallow always violates, deep always satisfies.
	shallow, deep := 0.0, anchorM
	for i := 0; i < bisectIterations; i++ {
		mid := (shallow + deep) / 2
		if ceilingAtFraction(s, gf.at(mid, anchorM)) > mid {
			shallow = mid
		} else {
			deep = mid
		}
	}
	return deep, anchorM
}
