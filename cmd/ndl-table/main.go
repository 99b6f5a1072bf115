package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/diveops/deco-validate/pkg/buhlmann"
	"github.com/diveops/deco-validate/pkg/profile"
)

func main() {
	var (
		fromDepth = flag.Float64("from", 9, "Shallowest depth in meters")
		toDepth   = flag.Float64("to", 42, "Deepest depth in meters")
		step      = flag.Float64("step", 3, "Depth increment in meters")
		gasName   = flag.String("gas", "air", "Breathing gas: air, ean32 or ean36")
		gfLow     = flag.Float64("gf-low", 1.0, "Gradient factor low (0-1)")
		gfHigh    = flag.Float64("gf-high", 1.0, "Gradient factor high (0-1)")
		maxNDL    = flag.Int("max", buhlmann.DefaultNDLCap, "Largest NDL to report, in minutes")
	)
	flag.Parse()

	if *step <= 0 || *fromDepth < 0 || *toDepth < *fromDepth {
		fmt.Fprintf(os.Stderr, "Usage: %s -from <m> -to <m> -step <m>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *gfLow < 0 || *gfLow > 1 || *gfHigh < 0 || *gfHigh > 1 {
		fmt.Fprintf(os.Stderr, "Error: gradient factors must be within [0, 1]\n")
		os.Exit(1)
	}
	if !profile.IsNamedGas(*gasName) {
		fmt.Fprintf(os.Stderr, "Error: unknown gas %q\n", *gasName)
		os.Exit(1)
	}

	gas := profile.GasByName(*gasName)
	gf := buhlmann.GradientFactors{
		Low:  int(math.Round(*gfLow * 100)),
		High: int(math.Round(*gfHigh * 100)),
	}
	surface := buhlmann.NewTissueState()

	fmt.Printf("No-Decompression Limits, %s (O2 %.0f%%), GF %d/%d\n", *gasName, gas.O2*100, gf.Low, gf.High)
	fmt.Printf("  %8s  %8s\n", "Depth", "NDL")
	for depth := *fromDepth; depth <= *toDepth+1e-9; depth += *step {
		ndl, err := buhlmann.NDL(surface, depth, gas, gf, *maxNDL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error at %.0f m: %v\n", depth, err)
			os.Exit(1)
		}
		if ndl >= *maxNDL {
			fmt.Printf("  %6.0f m  %8s\n", depth, fmt.Sprintf("%d+", *maxNDL))
			continue
		}
		fmt.Printf("  %6.0f m  %4d min\n", depth, ndl)
	}
}
