package model

import "time"

// SchedulePoint is the planned battery action for one timestep.
type SchedulePoint struct {
	Step        int     `json:"step"`
	ChargeKW    float64 `json:"charge_kw"`
	DischargeKW float64 `json:"discharge_kw"`
	SocKWh      float64 `json:"soc_kwh"`
	// NetGridKW is the resulting grid draw: demand - discharge + charge.
	// It may be negative when the plan exports surplus energy.
	NetGridKW float64 `json:"net_grid_kw"`
	// EnergyCost is the energy charge of the step at the step price.
	EnergyCost float64 `json:"energy_cost"`
}

// Schedule is an optimized charge/discharge plan for one horizon together
// with its cost breakdown. TotalCost equals EnergyCost plus DemandCharge and
// matches the solver objective, including the fixed cost of serving the
// demand unchanged.
type Schedule struct {
	RunID        string          `json:"run_id"`
	SolvedAt     time.Time       `json:"solved_at"`
	Elapsed      time.Duration   `json:"elapsed"`
	Points       []SchedulePoint `json:"points"`
	PeakKW       float64         `json:"peak_kw"`
	EnergyCost   float64         `json:"energy_cost"`
	DemandCharge float64         `json:"demand_charge"`
	TotalCost    float64         `json:"total_cost"`
}

// Steps returns the horizon length of the plan.
func (s *Schedule) Steps() int { return len(s.Points) }

// MaxNetGridKW returns the highest net grid draw across the plan.
func (s *Schedule) MaxNetGridKW() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	max := s.Points[0].NetGridKW
	for _, p := range s.Points[1:] {
		if p.NetGridKW > max {
			max = p.NetGridKW
		}
	}
	return max
}
