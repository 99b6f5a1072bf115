package config

import (
	"fmt"

	"github.com/diveops/deco-validate/pkg/buhlmann"
)

// Default values applied when fields are absent from the configuration source
const (
	DefaultGFLow             = 0.40
	DefaultGFHigh            = 0.85
	DefaultStopIncrementM    = 3.0
	DefaultLastStopM         = 3.0
	DefaultAscentRateMPerMin = 10.0
	DefaultStopStepSec       = 60.0
	DefaultMaxSteps          = 20000
	DefaultNDLCapMinutes     = buhlmann.DefaultNDLCap
	DefaultOutputFormat      = FormatJSON
)

// Output formats
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	LoadConfig() (*ConfigData, error)
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	GradientFactors GradientFactorsData `json:"gradient_factors"`
	Deco            DecoData            `json:"deco"`
	NDL             NDLData             `json:"ndl"`
	Output          OutputData          `json:"output"`
	Archive         ArchiveData         `json:"archive,omitempty"`
}

// GradientFactorsData holds the fallback gradient factors, as fractions,
// used when an input document leaves them out
type GradientFactorsData struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DecoData holds ascent planning settings
type DecoData struct {
	StopIncrementM    float64 `json:"stop_increment_m"`
	LastStopM         float64 `json:"last_stop_m"`
	AscentRateMPerMin float64 `json:"ascent_rate_m_per_min"`
	StopStepSec       float64 `json:"stop_step_sec"`
	MaxSteps          int     `json:"max_steps"`
}

// NDLData holds no-decompression limit settings
type NDLData struct {
	CapMinutes int `json:"cap_minutes"`
}

// OutputData selects the result encoding
type OutputData struct {
	Format string `json:"format"`
}

// ArchiveData configures the optional SQLite run archive. An empty path
// disables archiving.
type ArchiveData struct {
	Path string `json:"path,omitempty"`
}

// Defaults returns a configuration populated with default values
func Defaults() *ConfigData {
	return &ConfigData{
		GradientFactors: GradientFactorsData{
			Low:  DefaultGFLow,
			High: DefaultGFHigh,
		},
		Deco: DecoData{
			StopIncrementM:    DefaultStopIncrementM,
			LastStopM:         DefaultLastStopM,
			AscentRateMPerMin: DefaultAscentRateMPerMin,
			StopStepSec:       DefaultStopStepSec,
			MaxSteps:          DefaultMaxSteps,
		},
		NDL: NDLData{
			CapMinutes: DefaultNDLCapMinutes,
		},
		Output: OutputData{
			Format: DefaultOutputFormat,
		},
	}
}

// Validate checks ranges and enumerations
func (c *ConfigData) Validate() error {
	if c.GradientFactors.Low < 0 || c.GradientFactors.Low > 1 {
		return fmt.Errorf("gradient_factors.low must be within [0, 1], got %v", c.GradientFactors.Low)
	}
	if c.GradientFactors.High < 0 || c.GradientFactors.High > 1 {
		return fmt.Errorf("gradient_factors.high must be within [0, 1], got %v", c.GradientFactors.High)
	}
	if c.Deco.StopIncrementM <= 0 {
		return fmt.Errorf("deco.stop_increment_m must be positive")
	}
	if c.Deco.LastStopM < 0 {
		return fmt.Errorf("deco.last_stop_m must not be negative")
	}
	if c.Deco.AscentRateMPerMin <= 0 {
		return fmt.Errorf("deco.ascent_rate_m_per_min must be positive")
	}
	if c.Deco.StopStepSec <= 0 {
		return fmt.Errorf("deco.stop_step_sec must be positive")
	}
	if c.Deco.MaxSteps <= 0 {
		return fmt.Errorf("deco.max_steps must be positive")
	}
	if c.NDL.CapMinutes <= 0 {
		return fmt.Errorf("ndl.cap_minutes must be positive")
	}
	switch c.Output.Format {
	case FormatJSON, FormatMsgPack:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatJSON, FormatMsgPack, c.Output.Format)
	}
	return nil
}

// PlanOptions converts the deco settings for the scheduler
func (c *ConfigData) PlanOptions() buhlmann.PlanOptions {
	return buhlmann.PlanOptions{
		StopIncrementM:    c.Deco.StopIncrementM,
		LastStopM:         c.Deco.LastStopM,
		AscentRateMPerMin: c.Deco.AscentRateMPerMin,
		StopStepSec:       c.Deco.StopStepSec,
		MaxSteps:          c.Deco.MaxSteps,
	}
}

// DefaultProvider serves the built-in defaults when no file is given
type DefaultProvider struct{}

// LoadConfig returns the defaults
func (DefaultProvider) LoadConfig() (*ConfigData, error) {
	return Defaults(), nil
}
