// Package profile describes dive profiles: flat depth/time steps, the route
// segments dive templates are written in, and summary statistics.
package profile

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Segment is a constant-depth step of a dive
type Segment struct {
	DepthM      float64 `json:"depth_m"`
	DurationMin float64 `json:"duration_min"`
}

// DurationSec returns the segment length rounded to whole seconds
func (s Segment) DurationSec() float64 {
	return math.Round(s.DurationMin * 60)
}

// Summary holds profile statistics computed straight from the segments
type Summary struct {
	MaxDepthM  float64
	RuntimeMin float64
	AvgDepthM  float64 // time-weighted
}

// Summarize computes max depth, runtime and time-weighted mean depth
func Summarize(segments []Segment) Summary {
	if len(segments) == 0 {
		return Summary{}
	}

	depths := make([]float64, len(segments))
	durations := make([]float64, len(segments))
	for i, s := range segments {
		depths[i] = s.DepthM
		durations[i] = s.DurationMin
	}

	summary := Summary{
		MaxDepthM:  floats.Max(depths),
		RuntimeMin: floats.Sum(durations),
	}
	if summary.MaxDepthM < 0 {
		summary.MaxDepthM = 0
	}
	if summary.RuntimeMin > 0 {
		summary.AvgDepthM = stat.Mean(depths, durations)
	}
	return summary
}

// EndsAtSurface reports whether the last step is spent at 0 m
func EndsAtSurface(segments []Segment) bool {
	if len(segments) == 0 {
		return false
	}
	return segments[len(segments)-1].DepthM <= 0
}
