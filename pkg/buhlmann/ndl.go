package buhlmann

import "errors"

// DefaultNDLCap is the longest no-decompression limit reported, in minutes
const DefaultNDLCap = 999

// ErrInDeco is returned when a no-decompression limit is requested while a
// ceiling is already present
var ErrInDeco = errors.New("ceiling present, no-decompression limit undefined")

// NDL returns how many whole minutes the diver can stay at depthM breathing
// gas before a ceiling appears. s is taken by value and left untouched.
// Results are capped at maxMinutes, which is also returned when the depth
// never produces a ceiling at full saturation.
func NDL(s TissueState, depthM float64, gas Gas, gf GradientFactors, maxMinutes int) (int, error) {
	if c, _ := Ceiling(&s, gf, 0); c > 0 {
		return 0, ErrInDeco
	}

	// Nitrogen alone moves monotonically towards saturation, so a depth that
	// is safe when fully saturated is safe for any exposure.
	if gas.He == 0 && !s.hasHelium() {
		saturated := s
		inspN2, _ := gas.inspired(depthM)
		for i := range saturated {
			saturated[i] = Tissue{PN2: inspN2}
		}
		if c, _ := Ceiling(&saturated, gf, 0); c <= 0 {
			return maxMinutes, nil
		}
	}

	for minute := 0; minute < maxMinutes; minute++ {
		s.Apply(depthM, 60, gas)
		if c, _ := Ceiling(&s, gf, 0); c > 0 {
			return minute, nil
		}
	}
	return maxMinutes, nil
}
