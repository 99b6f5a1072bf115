package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/diveops/deco-validate/pkg/config"
)

func runDoc(t *testing.T, doc string) (*Output, error) {
	t.Helper()
	return New(config.Defaults(), nil).Run([]byte(doc))
}

func mustRun(t *testing.T, doc string) *Output {
	t.Helper()
	out, err := runDoc(t, doc)
	if err != nil {
		t.Fatalf("Run(%s) returned error: %v", doc, err)
	}
	return out
}

func TestRunDecoDive(t *testing.T) {
	out := mustRun(t, `{"segments":[{"depth_m":40,"duration_min":25}],"gas":{"o2":0.21,"he":0.0},"gf_low":0.3,"gf_high":0.7}`)

	if !out.DecoRequired {
		t.Fatalf("DecoRequired = false, expected true")
	}
	if out.CeilingM <= 0 {
		t.Errorf("CeilingM = %v, expected > 0", out.CeilingM)
	}
	if out.NDLMin != nil {
		t.Errorf("NDLMin = %v, expected nil", *out.NDLMin)
	}
	if out.TTSMin <= 4 {
		t.Errorf("TTSMin = %v, expected > 4", out.TTSMin)
	}
	if math.Abs(out.TTSMin-53) > 1 {
		t.Errorf("TTSMin = %v, expected about 53", out.TTSMin)
	}

	expected := []Stop{{18, 1}, {15, 2}, {12, 4}, {9, 6}, {6, 10}, {3, 26}}
	if len(out.Stops) != len(expected) {
		t.Fatalf("got %d stops %v, expected %v", len(out.Stops), out.Stops, expected)
	}
	for i, s := range out.Stops {
		if s.DepthM != expected[i].DepthM {
			t.Errorf("stop %d depth = %v, expected %v", i, s.DepthM, expected[i].DepthM)
		}
		if math.Abs(s.DurationMin-expected[i].DurationMin) > 1 {
			t.Errorf("stop %d duration = %v, expected about %v", i, s.DurationMin, expected[i].DurationMin)
		}
		if s.DurationMin <= 0 {
			t.Errorf("stop %d has non-positive duration %v", i, s.DurationMin)
		}
	}

	if out.GFLow != 0.3 || out.GFHigh != 0.7 {
		t.Errorf("gf echo = %v/%v, expected 0.3/0.7", out.GFLow, out.GFHigh)
	}
	if out.MaxDepthM != 40 || out.RuntimeMin != 25 {
		t.Errorf("summary = %v m / %v min, expected 40 / 25", out.MaxDepthM, out.RuntimeMin)
	}
	if len(out.Warnings) != 0 {
		t.Errorf("Warnings = %v, expected none", out.Warnings)
	}
}

func TestRunNoDecoDive(t *testing.T) {
	out := mustRun(t, `{"segments":[{"depth_m":18,"duration_min":20}],"gas":{"o2":0.21,"he":0},"gf_low":0.3,"gf_high":0.7}`)

	if out.DecoRequired {
		t.Errorf("DecoRequired = true, expected false")
	}
	if out.CeilingM != 0 {
		t.Errorf("CeilingM = %v, expected 0", out.CeilingM)
	}
	if out.NDLMin == nil || *out.NDLMin == 0 {
		t.Fatalf("NDLMin = %v, expected a positive value", out.NDLMin)
	}
	if len(out.Stops) != 0 {
		t.Errorf("Stops = %v, expected none", out.Stops)
	}
	if out.TTSMin < 1.7 || out.TTSMin > 2 {
		t.Errorf("TTSMin = %v, expected a direct ascent of about 1.8 min", out.TTSMin)
	}
}

func TestRunConsistency(t *testing.T) {
	docs := []string{
		`{"segments":[{"depth_m":12,"duration_min":30}],"gas":{"o2":0.21,"he":0},"gf_low":1,"gf_high":1}`,
		`{"segments":[{"depth_m":30,"duration_min":16}],"gas":{"o2":0.21,"he":0},"gf_low":1,"gf_high":1}`,
		`{"segments":[{"depth_m":30,"duration_min":17}],"gas":{"o2":0.21,"he":0},"gf_low":1,"gf_high":1}`,
		`{"segments":[{"depth_m":45,"duration_min":20}],"gas":{"o2":0.21,"he":0.35},"gf_low":0.4,"gf_high":0.85}`,
		`{"segments":[{"depth_m":40,"duration_min":25},{"depth_m":0,"duration_min":5}],"gas":"air","gf_low":0.3,"gf_high":0.7}`,
	}

	for i, doc := range docs {
		t.Run(fmt.Sprintf("doc%d", i), func(t *testing.T) {
			out := mustRun(t, doc)
			if out.DecoRequired != (out.CeilingM > 0) {
				t.Errorf("DecoRequired = %v with ceiling %v", out.DecoRequired, out.CeilingM)
			}
			if out.DecoRequired == (out.NDLMin != nil) {
				t.Errorf("DecoRequired = %v but NDLMin present = %v", out.DecoRequired, out.NDLMin != nil)
			}
			for j := 1; j < len(out.Stops); j++ {
				if out.Stops[j].DepthM >= out.Stops[j-1].DepthM {
					t.Errorf("stops not strictly shallower: %v", out.Stops)
				}
			}
		})
	}
}

func TestRunNDLBoundary(t *testing.T) {
	at := mustRun(t, `{"segments":[{"depth_m":30,"duration_min":16}],"gas":{"o2":0.21,"he":0},"gf_low":1,"gf_high":1}`)
	if at.DecoRequired {
		t.Fatalf("30 m for 16 min requires deco, expected none")
	}
	if at.NDLMin == nil || *at.NDLMin > 1 {
		t.Errorf("NDLMin after 16 min = %v, expected 0 or 1", at.NDLMin)
	}

	past := mustRun(t, `{"segments":[{"depth_m":30,"duration_min":18}],"gas":{"o2":0.21,"he":0},"gf_low":1,"gf_high":1}`)
	if !past.DecoRequired {
		t.Errorf("30 m for 18 min requires no deco, expected a ceiling")
	}
}

func TestRunZeroDurationSegments(t *testing.T) {
	base := mustRun(t, `{"segments":[{"depth_m":35,"duration_min":20}],"gas":{"o2":0.21,"he":0},"gf_low":0.4,"gf_high":0.85}`)
	padded := mustRun(t, `{"segments":[{"depth_m":50,"duration_min":0},{"depth_m":35,"duration_min":20},{"depth_m":10,"duration_min":0}],"gas":{"o2":0.21,"he":0},"gf_low":0.4,"gf_high":0.85}`)

	if base.CeilingM != padded.CeilingM {
		t.Errorf("CeilingM = %v with zero-length segments, expected %v", padded.CeilingM, base.CeilingM)
	}
	if base.TTSMin != padded.TTSMin {
		t.Errorf("TTSMin = %v with zero-length segments, expected %v", padded.TTSMin, base.TTSMin)
	}
}

func TestRunDeterministic(t *testing.T) {
	doc := `{"segments":[{"depth_m":40,"duration_min":25}],"gas":{"o2":0.21,"he":0.0},"gf_low":0.3,"gf_high":0.7}`
	first, err := json.Marshal(mustRun(t, doc))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(mustRun(t, doc))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("outputs differ:\n%s\n%s", first, second)
	}
}

func TestRunInputHash(t *testing.T) {
	doc := `{"segments":[{"depth_m":10,"duration_min":10}],"gas":{"o2":0.21,"he":0},"gf_low":0.4,"gf_high":0.85}`
	out := mustRun(t, doc)
	if out.InputHash != HashInput([]byte(doc)) {
		t.Errorf("InputHash = %s, expected %s", out.InputHash, HashInput([]byte(doc)))
	}

	expected := "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := HashInput(nil); got != expected {
		t.Errorf("HashInput(nil) = %s, expected %s", got, expected)
	}
}

func TestRunWarnings(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		contains string
	}{
		{
			name:     "surface last segment",
			doc:      `{"segments":[{"depth_m":20,"duration_min":20},{"depth_m":0,"duration_min":1}],"gas":{"o2":0.21,"he":0},"gf_low":0.4,"gf_high":0.85}`,
			contains: "surface",
		},
		{
			name:     "default gf_low",
			doc:      `{"segments":[{"depth_m":20,"duration_min":20}],"gas":{"o2":0.21,"he":0},"gf_high":0.85}`,
			contains: "gf_low not supplied",
		},
		{
			name:     "inverted gradient factors",
			doc:      `{"segments":[{"depth_m":20,"duration_min":20}],"gas":{"o2":0.21,"he":0},"gf_low":0.9,"gf_high":0.5}`,
			contains: "gf_low exceeds gf_high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, tt.doc)
			found := false
			for _, w := range out.Warnings {
				if strings.Contains(w, tt.contains) {
					found = true
				}
			}
			if !found {
				t.Errorf("Warnings = %v, expected one containing %q", out.Warnings, tt.contains)
			}
		})
	}
}

func TestRunDefaultGradientFactors(t *testing.T) {
	out := mustRun(t, `{"segments":[{"depth_m":20,"duration_min":20}],"gas":{"o2":0.21,"he":0}}`)
	if out.GFLow != config.DefaultGFLow || out.GFHigh != config.DefaultGFHigh {
		t.Errorf("gf echo = %v/%v, expected %v/%v", out.GFLow, out.GFHigh, config.DefaultGFLow, config.DefaultGFHigh)
	}
}

func TestRunNamedGas(t *testing.T) {
	named := mustRun(t, `{"segments":[{"depth_m":25,"duration_min":30}],"gas":"EAN32","gf_low":0.4,"gf_high":0.85}`)
	explicit := mustRun(t, `{"segments":[{"depth_m":25,"duration_min":30}],"gas":{"o2":0.32,"he":0},"gf_low":0.4,"gf_high":0.85}`)

	if named.CeilingM != explicit.CeilingM || named.TTSMin != explicit.TTSMin {
		t.Errorf("named gas result %v/%v differs from explicit %v/%v",
			named.CeilingM, named.TTSMin, explicit.CeilingM, explicit.TTSMin)
	}
}

func TestRunRouteSegments(t *testing.T) {
	doc := `{"route_segments":[
		{"phase":"descent","from_depth_m":0,"to_depth_m":30,"duration_min":3},
		{"phase":"level","depth_m":30,"duration_min":20},
		{"phase":"ascent","from_depth_m":30,"to_depth_m":5,"duration_min":3},
		{"phase":"safety_stop","depth_m":5,"duration_min":3},
		{"phase":"ascent","from_depth_m":5,"to_depth_m":0,"duration_min":1}
	],"gas":"air","gf_low":0.4,"gf_high":0.85}`

	out := mustRun(t, doc)
	if out.MaxDepthM != 30 {
		t.Errorf("MaxDepthM = %v, expected 30", out.MaxDepthM)
	}
	if math.Abs(out.RuntimeMin-29) > 1e-9 {
		t.Errorf("RuntimeMin = %v, expected 29", out.RuntimeMin)
	}
	for _, w := range out.Warnings {
		if strings.Contains(w, "surface") {
			t.Errorf("unexpected surface warning %q", w)
		}
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		kind     ErrorKind
		exitCode int
	}{
		{"not json", `not json`, KindMalformedInput, ExitMalformedInput},
		{"trailing data", `{"segments":[{"depth_m":10,"duration_min":1}],"gas":"air"} {}`, KindMalformedInput, ExitMalformedInput},
		{"wrong type", `{"segments":[{"depth_m":"deep","duration_min":1}],"gas":"air"}`, KindMalformedInput, ExitMalformedInput},
		{"missing gas", `{"segments":[{"depth_m":10,"duration_min":1}]}`, KindMalformedInput, ExitMalformedInput},
		{"unknown gas name", `{"segments":[{"depth_m":10,"duration_min":1}],"gas":"trimix"}`, KindMalformedInput, ExitMalformedInput},
		{"negative depth", `{"segments":[{"depth_m":-1,"duration_min":1}],"gas":"air"}`, KindMalformedInput, ExitMalformedInput},
		{"negative duration", `{"segments":[{"depth_m":10,"duration_min":-1}],"gas":"air"}`, KindMalformedInput, ExitMalformedInput},
		{"bad route phase", `{"route_segments":[{"phase":"swim","depth_m":10,"duration_min":1}],"gas":"air"}`, KindMalformedInput, ExitMalformedInput},
		{"empty segments", `{"segments":[],"gas":{"o2":0.21,"he":0}}`, KindNoSegments, ExitNoSegments},
		{"no segments key", `{"gas":{"o2":0.21,"he":0}}`, KindMalformedInput, ExitMalformedInput},
		{"null segments", `{"segments":null,"gas":{"o2":0.21,"he":0}}`, KindMalformedInput, ExitMalformedInput},
		{"no segments and no gas", `{"gf_low":0.3,"gf_high":0.7}`, KindMalformedInput, ExitMalformedInput},
		{"empty segments without gas", `{"segments":[]}`, KindMalformedInput, ExitMalformedInput},
		{"empty route", `{"route_segments":[],"gas":"air"}`, KindNoSegments, ExitNoSegments},
		{"implausible depth", `{"segments":[{"depth_m":1e12,"duration_min":1}],"gas":"air"}`, KindMalformedInput, ExitMalformedInput},
		{"depth past limit", `{"segments":[{"depth_m":1000.5,"duration_min":1}],"gas":"air"}`, KindMalformedInput, ExitMalformedInput},
		{"o2 above one", `{"segments":[{"depth_m":10,"duration_min":1}],"gas":{"o2":1.2,"he":0}}`, KindInvalidGas, ExitInvalidGas},
		{"negative he", `{"segments":[{"depth_m":10,"duration_min":1}],"gas":{"o2":0.21,"he":-0.1}}`, KindInvalidGas, ExitInvalidGas},
		{"gas sum", `{"segments":[{"depth_m":10,"duration_min":1}],"gas":{"o2":0.6,"he":0.5}}`, KindGasSum, ExitGasSum},
		{"gf above one", `{"segments":[{"depth_m":10,"duration_min":1}],"gas":"air","gf_low":0.3,"gf_high":1.5}`, KindInvalidGradientFactors, ExitInvalidGradientFactors},
		{"negative gf", `{"segments":[{"depth_m":10,"duration_min":1}],"gas":"air","gf_low":-0.1,"gf_high":0.7}`, KindInvalidGradientFactors, ExitInvalidGradientFactors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runDoc(t, tt.doc)
			if err == nil {
				t.Fatalf("Run returned %+v, expected an error", out)
			}
			var vErr *Error
			if !errors.As(err, &vErr) {
				t.Fatalf("error %v is not a *Error", err)
			}
			if vErr.Kind != tt.kind {
				t.Errorf("Kind = %v, expected %v", vErr.Kind, tt.kind)
			}
			if code := ExitCode(err); code != tt.exitCode {
				t.Errorf("ExitCode = %d, expected %d", code, tt.exitCode)
			}
		})
	}
}

func TestRunNoConvergence(t *testing.T) {
	cfg := config.Defaults()
	cfg.Deco.MaxSteps = 3

	_, err := New(cfg, nil).Run([]byte(`{"segments":[{"depth_m":40,"duration_min":25}],"gas":"air","gf_low":0.3,"gf_high":0.7}`))
	if code := ExitCode(err); code != ExitNoConvergence {
		t.Errorf("ExitCode = %d (%v), expected %d", code, err, ExitNoConvergence)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitStartup},
		{"typed", NewError(KindStdinRead, errors.New("eof")), ExitStdinRead},
		{"wrapped", fmt.Errorf("writing: %w", NewError(KindArchive, errors.New("disk full"))), ExitArchive},
		{"serialize", Errorf(KindSerialize, "bad value"), ExitSerialize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("ExitCode(%v) = %d, expected %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestReadInput(t *testing.T) {
	raw, err := ReadInput(strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"a":1}` {
		t.Errorf("ReadInput = %q", raw)
	}

	_, err = ReadInput(failingReader{})
	if code := ExitCode(err); code != ExitStdinRead {
		t.Errorf("ExitCode = %d, expected %d", code, ExitStdinRead)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}
