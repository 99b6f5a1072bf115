package profile

import (
	"strings"

	"github.com/diveops/deco-validate/pkg/buhlmann"
)

// namedGases maps dive template gas names to their oxygen fraction
var namedGases = map[string]float64{
	"air":   0.21,
	"ean32": 0.32,
	"ean36": 0.36,
}

// GasByName resolves a template gas name, case-insensitively. Empty and
// unknown names fall back to air.
func GasByName(name string) buhlmann.Gas {
	if o2, ok := namedGases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return buhlmann.NewGas(o2, 0)
	}
	return buhlmann.Air()
}

// IsNamedGas reports whether name is a known gas name
func IsNamedGas(name string) bool {
	_, ok := namedGases[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
