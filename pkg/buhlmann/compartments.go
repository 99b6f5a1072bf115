// Package buhlmann implements the Bühlmann ZHL-16C inert gas model with
// gradient factors. It tracks nitrogen and helium loading in sixteen tissue
// compartments and derives ceilings, no-decompression limits and staged
// ascent plans from that loading.
package buhlmann

// NumCompartments is the number of tissue compartments in ZHL-16C
const NumCompartments = 16

// Compartment holds the fixed half-times (minutes) and M-value coefficients
// of one tissue compartment
type Compartment struct {
	N2HalfTime float64
	N2A        float64
	N2B        float64
	HeHalfTime float64
	HeA        float64
	HeB        float64
}

// zhl16c is indexed by compartment number minus one
var zhl16c = [NumCompartments]Compartment{
	{4.0, 1.2599, 0.5050, 1.51, 1.7424, 0.4245},
	{8.0, 1.0000, 0.6514, 3.02, 1.3830, 0.5747},
	{12.5, 0.8618, 0.7222, 4.72, 1.1919, 0.6527},
	{18.5, 0.7562, 0.7825, 6.99, 1.0458, 0.7223},
	{27.0, 0.6200, 0.8126, 10.21, 0.9220, 0.7582},
	{38.3, 0.5043, 0.8434, 14.48, 0.8205, 0.7957},
	{54.3, 0.4410, 0.8693, 20.53, 0.7305, 0.8279},
	{77.0, 0.4000, 0.8910, 29.11, 0.6502, 0.8553},
	{109.0, 0.3750, 0.9092, 41.20, 0.5950, 0.8757},
	{146.0, 0.3500, 0.9222, 55.19, 0.5545, 0.8903},
	{187.0, 0.3295, 0.9319, 70.69, 0.5333, 0.8997},
	{239.0, 0.3065, 0.9403, 90.34, 0.5189, 0.9073},
	{305.0, 0.2835, 0.9477, 115.29, 0.5181, 0.9122},
	{390.0, 0.2610, 0.9544, 147.42, 0.5176, 0.9171},
	{498.0, 0.2480, 0.9602, 188.24, 0.5172, 0.9217},
	{635.0, 0.2327, 0.9653, 240.03, 0.5119, 0.9267},
}

// Compartments returns a copy of the ZHL-16C parameter table
func Compartments() [NumCompartments]Compartment {
	return zhl16c
}

// coefficients blends the N2 and He a/b values by each gas's share of the
// total inert pressure. ok is false when the compartment carries no inert gas.
func (c Compartment) coefficients(pN2, pHe float64) (a, b float64, ok bool) {
	total := pN2 + pHe
	if total <= 0 {
		return 0, 0, false
	}
	a = (c.N2A*pN2 + c.HeA*pHe) / total
	b = (c.N2B*pN2 + c.HeB*pHe) / total
	return a, b, true
}
