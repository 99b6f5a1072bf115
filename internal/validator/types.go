package validator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/diveops/deco-validate/pkg/profile"
)

// Input is the document read from stdin. Either Segments or RouteSegments
// describes the dive; Segments wins when both are present.
type Input struct {
	Segments      []profile.Segment      `json:"segments"`
	RouteSegments []profile.RouteSegment `json:"route_segments,omitempty"`
	Gas           *InputGas              `json:"gas"`
	GFLow         *float64               `json:"gf_low"`
	GFHigh        *float64               `json:"gf_high"`
}

// InputGas holds the breathing gas fractions. It also decodes from a gas
// name such as "ean32".
type InputGas struct {
	O2 float64 `json:"o2"`
	He float64 `json:"he"`

	// Name is set when the gas was given by name
	Name string `json:"-"`
}

// UnmarshalJSON accepts {"o2":..,"he":..} or a gas name string
func (g *InputGas) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if !profile.IsNamedGas(name) {
			return fmt.Errorf("unknown gas name %q", name)
		}
		mix := profile.GasByName(name)
		*g = InputGas{O2: mix.O2, He: mix.He, Name: name}
		return nil
	}

	type plain InputGas
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = InputGas(p)
	return nil
}

// Stop is a decompression stop in the result document
type Stop struct {
	DepthM      float64 `json:"depth_m"`
	DurationMin float64 `json:"duration_min"`
}

// Output is the result document written to stdout
type Output struct {
	Tool        string  `json:"tool"`
	ToolVersion string  `json:"tool_version"`
	Model       string  `json:"model"`
	GFLow       float64 `json:"gf_low"`
	GFHigh      float64 `json:"gf_high"`

	CeilingM     float64 `json:"ceiling_m"`
	TTSMin       float64 `json:"tts_min"`
	NDLMin       *uint64 `json:"ndl_min"`
	DecoRequired bool    `json:"deco_required"`
	Stops        []Stop  `json:"stops"`

	MaxDepthM  float64 `json:"max_depth_m"`
	RuntimeMin float64 `json:"runtime_min"`
	InputHash  string  `json:"input_hash"`

	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}
