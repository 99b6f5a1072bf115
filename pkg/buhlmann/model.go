package buhlmann

// Config bundles the settings a Model runs with
type Config struct {
	GradientFactors GradientFactors
	Plan            PlanOptions

	// NDLCapMinutes caps NDL results
	NDLCapMinutes int
}

// DefaultConfig returns GF 100/100 with the default plan options
func DefaultConfig() Config {
	return Config{
		GradientFactors: GradientFactors{Low: 100, High: 100},
		Plan:            DefaultPlanOptions(),
		NDLCapMinutes:   DefaultNDLCap,
	}
}

// Model follows a dive segment by segment
type Model struct {
	cfg        Config
	tissues    TissueState
	depthM     float64
	gas        Gas
	elapsedSec float64
}

// NewModel returns a model with surface-saturated tissues
func NewModel(cfg Config) *Model {
	return &Model{
		cfg:     cfg,
		tissues: NewTissueState(),
		gas:     Air(),
	}
}

// Step records durationSec seconds at depthM breathing gas. Zero-length
// steps change nothing.
func (m *Model) Step(depthM, durationSec float64, gas Gas) {
	if durationSec <= 0 {
		return
	}
	m.tissues.Apply(depthM, durationSec, gas)
	m.depthM = depthM
	m.gas = gas
	m.elapsedSec += durationSec
}

// Ceiling returns the current gradient factor ceiling in meters
func (m *Model) Ceiling() float64 {
	c, _ := Ceiling(&m.tissues, m.cfg.GradientFactors, 0)
	return c
}

// InDeco reports whether a ceiling is present
func (m *Model) InDeco() bool {
	return m.Ceiling() > 0
}

// NDL returns the no-decompression limit at the current depth and gas
func (m *Model) NDL() (int, error) {
	return NDL(m.tissues, m.depthM, m.gas, m.cfg.GradientFactors, m.cfg.NDLCapMinutes)
}

// Deco plans the ascent from the current depth on the current gas
func (m *Model) Deco() (Deco, error) {
	return Plan(m.tissues, m.depthM, m.gas, m.cfg.GradientFactors, m.cfg.Plan)
}

// Tissues returns a copy of the compartment loadings
func (m *Model) Tissues() TissueState {
	return m.tissues
}

// Depth returns the depth of the last recorded step
func (m *Model) Depth() float64 {
	return m.depthM
}

// ElapsedSec returns the total time recorded
func (m *Model) ElapsedSec() float64 {
	return m.elapsedSec
}
