package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/diveops/deco-validate/pkg/config"
)

func main() {
	yamlFile := flag.String("yaml", "", "Path to YAML configuration file")
	flag.Parse()

	if *yamlFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Check")
	fmt.Println("===================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	cfg, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Configuration is valid")

	defaults := config.Defaults()

	fmt.Println("\nEffective settings (* = overrides default):")
	fmt.Println("===========================================")
	printSetting("gradient_factors.low", cfg.GradientFactors.Low, defaults.GradientFactors.Low)
	printSetting("gradient_factors.high", cfg.GradientFactors.High, defaults.GradientFactors.High)
	printSetting("deco.stop_increment_m", cfg.Deco.StopIncrementM, defaults.Deco.StopIncrementM)
	printSetting("deco.last_stop_m", cfg.Deco.LastStopM, defaults.Deco.LastStopM)
	printSetting("deco.ascent_rate_m_per_min", cfg.Deco.AscentRateMPerMin, defaults.Deco.AscentRateMPerMin)
	printSetting("deco.stop_step_sec", cfg.Deco.StopStepSec, defaults.Deco.StopStepSec)
	printSetting("deco.max_steps", cfg.Deco.MaxSteps, defaults.Deco.MaxSteps)
	printSetting("ndl.cap_minutes", cfg.NDL.CapMinutes, defaults.NDL.CapMinutes)
	printSetting("output.format", cfg.Output.Format, defaults.Output.Format)

	if cfg.Archive.Path == "" {
		fmt.Println("  archive.path: (disabled)")
	} else {
		printSetting("archive.path", cfg.Archive.Path, defaults.Archive.Path)
	}

	if cfg.GradientFactors.Low > cfg.GradientFactors.High {
		fmt.Println("\n✗ gradient_factors.low exceeds gradient_factors.high")
	}
	if cfg.Deco.LastStopM > 0 && cfg.Deco.LastStopM < cfg.Deco.StopIncrementM {
		fmt.Println("\n✗ deco.last_stop_m is shallower than one stop increment")
	}

	fmt.Println("\nCheck completed!")
}

func printSetting[T comparable](name string, value, defaultValue T) {
	marker := " "
	if value != defaultValue {
		marker = "*"
	}
	fmt.Printf("%s %s: %v\n", marker, name, value)
}
