package models

import "github.com/kilianp07/bessopt/core/model"

// OptimizeRequest represents the request body for solving a schedule.
// Battery and tariff fall back to the server configuration when omitted.
type OptimizeRequest struct {
	Battery *model.BatteryParams `json:"battery,omitempty"`
	Tariff  *model.Tariff        `json:"tariff,omitempty"`
	Series  model.Series         `json:"series"`
}
