package model

import "fmt"

// Series holds the aligned per-step inputs of one horizon. Demand is the
// site load in kWh per step, Price the energy price in currency per kWh.
// Index t of one slice corresponds to index t of the other.
type Series struct {
	Demand []float64 `json:"demand"`
	Price  []float64 `json:"price"`
}

// Steps returns the horizon length.
func (s Series) Steps() int { return len(s.Demand) }

// Validate checks that the series are non-empty and aligned.
func (s Series) Validate() error {
	if len(s.Demand) == 0 {
		return &ValidationError{Field: "demand", Reason: "must contain at least one step"}
	}
	if len(s.Demand) != len(s.Price) {
		return &ValidationError{
			Field:  "series",
			Reason: fmt.Sprintf("demand has %d steps, price has %d", len(s.Demand), len(s.Price)),
		}
	}
	return nil
}
