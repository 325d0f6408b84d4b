package models

import (
	"time"

	"github.com/kilianp07/bessopt/infra/store"
)

// ErrorResponse is the envelope returned on any request failure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine readable code and a human readable message.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RunSummary describes one stored run without its points.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	SolvedAt     time.Time `json:"solved_at"`
	ElapsedMS    float64   `json:"elapsed_ms"`
	Steps        int       `json:"steps"`
	PeakKW       float64   `json:"peak_kw"`
	EnergyCost   float64   `json:"energy_cost"`
	DemandCharge float64   `json:"demand_charge"`
	TotalCost    float64   `json:"total_cost"`
}

// RunListResponse wraps the run history listing.
type RunListResponse struct {
	Runs []RunSummary `json:"runs"`
}

// NewRunSummary converts a stored run row into its API form.
func NewRunSummary(r store.StoredRun) RunSummary {
	return RunSummary{
		RunID:        r.RunID,
		SolvedAt:     r.SolvedAt,
		ElapsedMS:    float64(r.ElapsedNS) / 1e6,
		Steps:        r.Steps,
		PeakKW:       r.PeakKW,
		EnergyCost:   r.EnergyCost,
		DemandCharge: r.DemandCharge,
		TotalCost:    r.TotalCost,
	}
}
