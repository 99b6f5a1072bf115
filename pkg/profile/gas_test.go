package profile

import "testing"

func TestGasByName(t *testing.T) {
	tests := []struct {
		name string
		o2   float64
	}{
		{"air", 0.21},
		{"ean32", 0.32},
		{"EAN32", 0.32},
		{"ean36", 0.36},
		{"", 0.21},
		{"unknown_gas", 0.21},
	}

	for _, tt := range tests {
		gas := GasByName(tt.name)
		if gas.O2 != tt.o2 || gas.He != 0 {
			t.Errorf("GasByName(%q) = %+v, expected O2 %.2f", tt.name, gas, tt.o2)
		}
	}

	if !IsNamedGas("Air") || IsNamedGas("trimix") {
		t.Errorf("IsNamedGas misclassified names")
	}
}
