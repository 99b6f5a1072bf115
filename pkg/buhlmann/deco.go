package buhlmann

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoConvergence is returned when a schedule cannot reach the surface within
// its step budget. A partial schedule would understate the required
// decompression, so none is returned.
var ErrNoConvergence = errors.New("decompression schedule did not converge")

// StageType tells ascent legs from decompression stops
type StageType int

const (
	StageAscent StageType = iota
	StageDecoStop
)

func (t StageType) String() string {
	switch t {
	case StageAscent:
		return "ascent"
	case StageDecoStop:
		return "deco_stop"
	default:
		return fmt.Sprintf("StageType(%d)", int(t))
	}
}

// DecoStage is one leg of an ascent plan. Stops keep the same start and end
// depth.
type DecoStage struct {
	Type        StageType
	StartDepthM float64
	EndDepthM   float64
	DurationSec float64
}

// Deco is a complete ascent plan
type Deco struct {
	Stages []DecoStage
	TTSSec float64

	// FirstStopM is the depth gradient factor low was anchored to, zero when
	// no stop was needed
	FirstStopM float64
}

// Stops returns the decompression stops of the plan in order
func (d Deco) Stops() []DecoStage {
	var stops []DecoStage
	for _, st := range d.Stages {
		if st.Type == StageDecoStop && st.DurationSec > 0 {
			stops = append(stops, st)
		}
	}
	return stops
}

// TTSMinutes returns the time to surface in minutes
func (d Deco) TTSMinutes() float64 {
	return d.TTSSec / 60.0
}

// PlanOptions controls stop spacing, ascent speed and the work budget of Plan
type PlanOptions struct {
	// StopIncrementM spaces the candidate stop depths (e.g., 3 m)
	StopIncrementM float64

	// LastStopM is the shallowest stop before surfacing
	LastStopM float64

	// AscentRateMPerMin is the travel speed between stops
	AscentRateMPerMin float64

	// StopStepSec is the granularity stops are extended by
	StopStepSec float64

	// MaxSteps bounds the scheduling loop: every ascent leg and every stop
	// step counts as one
	MaxSteps int
}

// DefaultPlanOptions returns 3 m stops, a 3 m last stop, 10 m/min ascents and
// one minute stop granularity
func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		StopIncrementM:    3,
		LastStopM:         3,
		AscentRateMPerMin: 10,
		StopStepSec:       60,
		MaxSteps:          20000,
	}
}

func (o PlanOptions) validate() error {
	if o.StopIncrementM <= 0 {
		return fmt.Errorf("stop increment must be positive, got %v", o.StopIncrementM)
	}
	if o.LastStopM < 0 {
		return fmt.Errorf("last stop must not be negative, got %v", o.LastStopM)
	}
	if o.AscentRateMPerMin <= 0 {
		return fmt.Errorf("ascent rate must be positive, got %v", o.AscentRateMPerMin)
	}
	if o.StopStepSec <= 0 {
		return fmt.Errorf("stop step must be positive, got %v", o.StopStepSec)
	}
	return nil
}

// stopAtOrBelow returns the shallowest candidate stop that is not above ceilingM
func (o PlanOptions) stopAtOrBelow(ceilingM float64) float64 {
	if ceilingM <= 0 {
		return 0
	}
	stop := math.Ceil(ceilingM/o.StopIncrementM-1e-9) * o.StopIncrementM
	return math.Max(stop, o.LastStopM)
}

// nextShallower returns the first candidate stop shallower than depthM
func (o PlanOptions) nextShallower(depthM float64) float64 {
	stop := math.Ceil(depthM/o.StopIncrementM-1e-9)*o.StopIncrementM - o.StopIncrementM
	if stop < o.LastStopM || stop <= 0 {
		return 0
	}
	return stop
}

// Plan schedules the ascent from depthM to the surface for tissues s breathing
// gas. s is taken by value and left untouched. With no ceiling the plan is a
// single ascent.
func Plan(s TissueState, depthM float64, gas Gas, gf GradientFactors, opts PlanOptions) (Deco, error) {
	if err := opts.validate(); err != nil {
		return Deco{}, fmt.Errorf("invalid plan options: %w", err)
	}

	var (
		deco   Deco
		anchor float64
		steps  int
	)
	depth := depthM

	for depth > 0 {
		steps++
		if steps > opts.MaxSteps {
			return Deco{}, fmt.Errorf("%w: %d steps exhausted at %.1f m", ErrNoConvergence, opts.MaxSteps, depth)
		}

		if anchor <= 0 {
			if c, _ := Ceiling(&s, gf, 0); c > 0 {
				anchor = opts.stopAtOrBelow(CeilingAt(&s, gf.Low))
				deco.FirstStopM = anchor
			}
		}

		ceiling, _ := Ceiling(&s, gf, anchor)
		target := opts.stopAtOrBelow(ceiling)

		if target < depth {
			dur := s.Travel(depth, target, opts.AscentRateMPerMin, gas)
			deco.Stages = append(deco.Stages, DecoStage{
				Type:        StageAscent,
				StartDepthM: depth,
				EndDepthM:   target,
				DurationSec: dur,
			})
			deco.TTSSec += dur
			depth = target
			continue
		}

		// Hold here until the next shallower stop is clear
		next := opts.nextShallower(depth)
		var held float64
		for ceiling > next {
			steps++
			if steps > opts.MaxSteps {
				return Deco{}, fmt.Errorf("%w: %d steps exhausted holding at %.1f m", ErrNoConvergence, opts.MaxSteps, depth)
			}
			s.Apply(depth, opts.StopStepSec, gas)
			held += opts.StopStepSec
			ceiling, _ = Ceiling(&s, gf, anchor)
		}

		if held > 0 {
			deco.Stages = append(deco.Stages, DecoStage{
				Type:        StageDecoStop,
				StartDepthM: depth,
				EndDepthM:   depth,
				DurationSec: held,
			})
			deco.TTSSec += held
		}
	}

	return deco, nil
}
