package config

import "fmt"

// SolverConfig tunes the simplex solver.
type SolverConfig struct {
	// Tolerance is the feasibility tolerance passed to the solver.
	Tolerance float64 `json:"tolerance"`
	// MaxSteps bounds the horizon length accepted from user input.
	MaxSteps int `json:"max_steps"`
}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
	if c.Tolerance == 0 {
		c.Tolerance = 1e-7
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 8784
	}
}

// Validate checks mandatory fields.
func (c SolverConfig) Validate() error {
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive")
	}
	return nil
}
