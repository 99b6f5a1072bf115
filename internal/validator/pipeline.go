// Package validator turns a dive profile document into a decompression
// result. It validates the input, replays the profile through the Bühlmann
// model and assembles the output document.
package validator

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/diveops/deco-validate/internal/constants"
	"github.com/diveops/deco-validate/pkg/buhlmann"
	"github.com/diveops/deco-validate/pkg/config"
	"github.com/diveops/deco-validate/pkg/profile"
)

// MaxReportedNDL is the largest NDL written to a result
const MaxReportedNDL = 999

// MaxDepthM bounds segment depths. Ascent time and work grow with depth, so
// anything past the deepest plausible dive is rejected as malformed.
const MaxDepthM = 1000.0

// Request is a validated input ready for the model
type Request struct {
	Steps  []profile.Segment
	Gas    buhlmann.Gas
	GFLow  float64
	GFHigh float64

	// Warnings collected while validating
	Warnings []string
}

// GradientFactors returns the request's gradient factors as percentages
func (r Request) GradientFactors() buhlmann.GradientFactors {
	return buhlmann.GradientFactors{
		Low:  int(math.Round(r.GFLow * 100)),
		High: int(math.Round(r.GFHigh * 100)),
	}
}

// Pipeline runs validations against one configuration
type Pipeline struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a pipeline. A nil logger disables logging.
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *Pipeline {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// ReadInput reads the whole input document
func ReadInput(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, NewError(KindStdinRead, fmt.Errorf("failed to read stdin: %w", err))
	}
	return raw, nil
}

// HashInput returns "sha256:<hex>" of the raw input bytes
func HashInput(raw []byte) string {
	sum := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Decode parses the input document
func Decode(raw []byte) (*Input, error) {
	var in Input
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&in); err != nil {
		return nil, NewError(KindMalformedInput, fmt.Errorf("failed to parse input: %w", err))
	}
	if dec.More() {
		return nil, Errorf(KindMalformedInput, "failed to parse input: trailing data after document")
	}
	return &in, nil
}

// Validate checks an input document and resolves defaults
func (p *Pipeline) Validate(in *Input) (Request, error) {
	var req Request

	if in.Segments == nil && in.RouteSegments == nil {
		return req, Errorf(KindMalformedInput, "failed to parse input: missing segments")
	}
	if in.Gas == nil {
		return req, Errorf(KindMalformedInput, "failed to parse input: missing gas")
	}

	steps := in.Segments
	if len(in.Segments) > 0 && len(in.RouteSegments) > 0 {
		req.Warnings = append(req.Warnings, "both segments and route_segments supplied; route_segments ignored")
	} else if len(in.Segments) == 0 && len(in.RouteSegments) > 0 {
		converted, err := profile.Steps(in.RouteSegments, profile.DefaultSliceParams())
		if err != nil {
			return req, NewError(KindMalformedInput, fmt.Errorf("invalid route: %w", err))
		}
		steps = converted
	}
	if len(steps) == 0 {
		return req, Errorf(KindNoSegments, "no segments provided")
	}

	if !inUnitRange(in.Gas.O2) || !inUnitRange(in.Gas.He) {
		return req, Errorf(KindInvalidGas, "gas fractions must be within [0, 1]: o2=%v he=%v", in.Gas.O2, in.Gas.He)
	}
	if in.Gas.O2+in.Gas.He > 1 {
		return req, Errorf(KindGasSum, "o2 + he exceeds 1.0: %v", in.Gas.O2+in.Gas.He)
	}

	for i, s := range steps {
		if math.IsNaN(s.DepthM) || s.DepthM < 0 || s.DepthM > MaxDepthM {
			return req, Errorf(KindMalformedInput, "segment %d: invalid depth %v", i, s.DepthM)
		}
		if math.IsNaN(s.DurationMin) || math.IsInf(s.DurationMin, 0) || s.DurationMin < 0 {
			return req, Errorf(KindMalformedInput, "segment %d: invalid duration %v", i, s.DurationMin)
		}
	}

	req.GFLow = p.cfg.GradientFactors.Low
	if in.GFLow != nil {
		req.GFLow = *in.GFLow
	} else {
		req.Warnings = append(req.Warnings, fmt.Sprintf("gf_low not supplied; using %.2f", req.GFLow))
	}
	req.GFHigh = p.cfg.GradientFactors.High
	if in.GFHigh != nil {
		req.GFHigh = *in.GFHigh
	} else {
		req.Warnings = append(req.Warnings, fmt.Sprintf("gf_high not supplied; using %.2f", req.GFHigh))
	}
	if !inUnitRange(req.GFLow) || !inUnitRange(req.GFHigh) {
		return req, Errorf(KindInvalidGradientFactors, "gradient factors must be within [0, 1]: gf_low=%v gf_high=%v", req.GFLow, req.GFHigh)
	}
	if req.GFLow > req.GFHigh {
		req.Warnings = append(req.Warnings, "gf_low exceeds gf_high")
	}

	if profile.EndsAtSurface(steps) {
		req.Warnings = append(req.Warnings, "last segment is at the surface; ceiling reflects post-surfacing tissue state")
	}

	req.Steps = steps
	req.Gas = buhlmann.Gas{O2: in.Gas.O2, He: in.Gas.He}
	return req, nil
}

// Compute replays the request through the model and builds the result
func (p *Pipeline) Compute(req Request) (*Output, error) {
	gf := req.GradientFactors()
	model := buhlmann.NewModel(buhlmann.Config{
		GradientFactors: gf,
		Plan:            p.cfg.PlanOptions(),
		NDLCapMinutes:   p.cfg.NDL.CapMinutes,
	})

	for _, s := range req.Steps {
		model.Step(s.DepthM, s.DurationSec(), req.Gas)
	}

	summary := profile.Summarize(req.Steps)
	p.logger.Debugw("profile replayed",
		"segments", len(req.Steps),
		"max_depth_m", summary.MaxDepthM,
		"runtime_min", summary.RuntimeMin,
		"avg_depth_m", summary.AvgDepthM,
		"gf_low", gf.Low,
		"gf_high", gf.High,
	)

	out := &Output{
		Tool:        constants.ToolName,
		ToolVersion: constants.Version,
		Model:       constants.ModelName,
		GFLow:       req.GFLow,
		GFHigh:      req.GFHigh,
		CeilingM:    model.Ceiling(),
		Stops:       []Stop{},
		MaxDepthM:   summary.MaxDepthM,
		RuntimeMin:  summary.RuntimeMin,
		Warnings:    req.Warnings,
	}
	out.DecoRequired = out.CeilingM > 0

	if !out.DecoRequired {
		ndl, err := model.NDL()
		if err != nil {
			return nil, fmt.Errorf("failed to compute NDL: %w", err)
		}
		n := uint64(min(max(ndl, 0), MaxReportedNDL))
		out.NDLMin = &n
	}

	plan, err := model.Deco()
	if err != nil {
		if errors.Is(err, buhlmann.ErrNoConvergence) {
			return nil, NewError(KindNoConvergence, fmt.Errorf("failed to plan ascent: %w", err))
		}
		return nil, fmt.Errorf("failed to plan ascent: %w", err)
	}
	out.TTSMin = plan.TTSMinutes()
	for _, stop := range plan.Stops() {
		out.Stops = append(out.Stops, Stop{
			DepthM:      stop.StartDepthM,
			DurationMin: stop.DurationSec / 60,
		})
	}

	p.logger.Debugw("ascent planned",
		"ceiling_m", out.CeilingM,
		"first_stop_m", plan.FirstStopM,
		"stops", len(out.Stops),
		"tts_min", out.TTSMin,
	)
	return out, nil
}

// Run decodes, validates and computes the result for a raw input document
func (p *Pipeline) Run(raw []byte) (*Output, error) {
	in, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	req, err := p.Validate(in)
	if err != nil {
		return nil, err
	}
	out, err := p.Compute(req)
	if err != nil {
		return nil, err
	}
	out.InputHash = HashInput(raw)
	return out, nil
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
