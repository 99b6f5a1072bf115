package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// yamlConfig mirrors ConfigData with pointer fields so absent keys can be
// told apart from zero values
type yamlConfig struct {
	GradientFactors struct {
		Low  *float64 `yaml:"low"`
		High *float64 `yaml:"high"`
	} `yaml:"gradient_factors"`
	Deco struct {
		StopIncrementM    *float64 `yaml:"stop_increment_m"`
		LastStopM         *float64 `yaml:"last_stop_m"`
		AscentRateMPerMin *float64 `yaml:"ascent_rate_m_per_min"`
		StopStepSec       *float64 `yaml:"stop_step_sec"`
		MaxSteps          *int     `yaml:"max_steps"`
	} `yaml:"deco"`
	NDL struct {
		CapMinutes *int `yaml:"cap_minutes"`
	} `yaml:"ndl"`
	Output struct {
		Format string `yaml:"format"`
	} `yaml:"output"`
	Archive struct {
		Path string `yaml:"path"`
	} `yaml:"archive"`
}

// LoadConfig reads the YAML file, fills absent fields with defaults and
// validates the result
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", y.filename, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(cfgFile, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	config := Defaults()
	setFloat(&config.GradientFactors.Low, raw.GradientFactors.Low)
	setFloat(&config.GradientFactors.High, raw.GradientFactors.High)
	setFloat(&config.Deco.StopIncrementM, raw.Deco.StopIncrementM)
	setFloat(&config.Deco.LastStopM, raw.Deco.LastStopM)
	setFloat(&config.Deco.AscentRateMPerMin, raw.Deco.AscentRateMPerMin)
	setFloat(&config.Deco.StopStepSec, raw.Deco.StopStepSec)
	setInt(&config.Deco.MaxSteps, raw.Deco.MaxSteps)
	setInt(&config.NDL.CapMinutes, raw.NDL.CapMinutes)
	if raw.Output.Format != "" {
		config.Output.Format = raw.Output.Format
	}
	config.Archive.Path = raw.Archive.Path

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", y.filename, err)
	}
	return config, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
