package model

// BatteryParams defines the physical parameters of the storage asset.
// Units:
// - PowerKW: kW, symmetric limit for charging and discharging
// - CapacityKWh: kWh of usable energy
// - Efficiency: 0..1, applied once per leg (round trip is Efficiency squared)
// - InitialSocFraction: fraction 0..1 of CapacityKWh held at the first step
type BatteryParams struct {
	PowerKW            float64 `json:"power_kw"`
	CapacityKWh        float64 `json:"capacity_kwh"`
	Efficiency         float64 `json:"efficiency"`
	InitialSocFraction float64 `json:"initial_soc_fraction"`
}

// Validate checks the parameter ranges.
func (p BatteryParams) Validate() error {
	if p.PowerKW <= 0 {
		return &ValidationError{Field: "power_kw", Reason: "must be > 0"}
	}
	if p.CapacityKWh <= 0 {
		return &ValidationError{Field: "capacity_kwh", Reason: "must be > 0"}
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return &ValidationError{Field: "efficiency", Reason: "must be in (0, 1]"}
	}
	if p.InitialSocFraction < 0 || p.InitialSocFraction > 1 {
		return &ValidationError{Field: "initial_soc_fraction", Reason: "must be in [0, 1]"}
	}
	return nil
}

// InitialSocKWh returns the energy stored at the start of the horizon.
func (p BatteryParams) InitialSocKWh() float64 {
	return p.InitialSocFraction * p.CapacityKWh
}

// Tariff defines the billing terms applied over one horizon.
type Tariff struct {
	// PeakRate is the demand charge in currency per kW, billed once on the
	// highest net grid draw of the horizon.
	PeakRate float64 `json:"peak_rate"`
	// StepHours is the timestep length in hours, used for report labelling
	// only. The optimization treats one step as the unit of time.
	StepHours float64 `json:"step_hours"`
}

// Validate checks the tariff ranges. A negative peak rate is rejected since
// it would reward an unbounded peak.
func (t Tariff) Validate() error {
	if t.PeakRate < 0 {
		return &ValidationError{Field: "peak_rate", Reason: "must be >= 0"}
	}
	if t.StepHours <= 0 {
		return &ValidationError{Field: "step_hours", Reason: "must be > 0"}
	}
	return nil
}
