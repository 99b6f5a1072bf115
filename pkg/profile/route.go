package profile

import "fmt"

// Route segment phases
const (
	PhaseDescent    = "descent"
	PhaseLevel      = "level"
	PhaseSafetyStop = "safety_stop"
	PhaseAscent     = "ascent"
)

// RouteSegment is one leg of a dive template. Level legs and safety stops
// carry DepthM; descents and ascents carry FromDepthM and ToDepthM.
type RouteSegment struct {
	Phase       string   `json:"phase"`
	DepthM      *float64 `json:"depth_m,omitempty"`
	FromDepthM  *float64 `json:"from_depth_m,omitempty"`
	ToDepthM    *float64 `json:"to_depth_m,omitempty"`
	DurationMin float64  `json:"duration_min"`
}

// SliceParams bounds how finely ramps are cut into constant-depth steps
type SliceParams struct {
	MinSlices int
	MaxSlices int
}

// DefaultSliceParams cuts ramps into one slice per minute, between 3 and 10
func DefaultSliceParams() SliceParams {
	return SliceParams{MinSlices: 3, MaxSlices: 10}
}

// Steps flattens route segments into constant-depth steps. A final leg that
// ends at the surface is dropped so the ceiling is evaluated before surfacing,
// and legs without a positive duration are skipped.
func Steps(route []RouteSegment, params SliceParams) ([]Segment, error) {
	route = dropSurfaceLeg(route)

	var steps []Segment
	for i, leg := range route {
		if leg.DurationMin <= 0 {
			continue
		}

		phase := leg.Phase
		if phase == "" {
			phase = PhaseLevel
		}

		switch phase {
		case PhaseLevel, PhaseSafetyStop:
			if leg.DepthM == nil {
				return nil, fmt.Errorf("route segment %d (%s) has no depth_m", i, phase)
			}
			steps = append(steps, Segment{DepthM: *leg.DepthM, DurationMin: leg.DurationMin})
		case PhaseDescent, PhaseAscent:
			steps = append(steps, sliceRamp(leg, params)...)
		default:
			return nil, fmt.Errorf("route segment %d has unknown phase %q", i, leg.Phase)
		}
	}
	return steps, nil
}

func dropSurfaceLeg(route []RouteSegment) []RouteSegment {
	if len(route) == 0 {
		return route
	}
	last := route[len(route)-1]
	if (last.ToDepthM != nil && *last.ToDepthM == 0) || (last.DepthM != nil && *last.DepthM == 0) {
		return route[:len(route)-1]
	}
	return route
}

// sliceRamp cuts a descent or ascent into equal-time steps, each held at the
// depth its slice ends at
func sliceRamp(leg RouteSegment, params SliceParams) []Segment {
	from, to := valueOr(leg.FromDepthM), valueOr(leg.ToDepthM)

	slices := int(leg.DurationMin)
	if slices > params.MaxSlices {
		slices = params.MaxSlices
	}
	if slices < params.MinSlices {
		slices = params.MinSlices
	}
	if slices < 1 {
		slices = 1
	}
	dt := leg.DurationMin / float64(slices)

	steps := make([]Segment, 0, slices)
	for i := 0; i < slices; i++ {
		frac := float64(i+1) / float64(slices)
		steps = append(steps, Segment{DepthM: from + (to-from)*frac, DurationMin: dt})
	}
	return steps
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
