package model

import (
	"errors"
	"testing"
)

func TestBatteryParamsValidate(t *testing.T) {
	valid := BatteryParams{PowerKW: 5, CapacityKWh: 20, Efficiency: 0.95, InitialSocFraction: 0.5}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*BatteryParams)
		field  string
	}{
		{"zero power", func(p *BatteryParams) { p.PowerKW = 0 }, "power_kw"},
		{"negative power", func(p *BatteryParams) { p.PowerKW = -1 }, "power_kw"},
		{"zero capacity", func(p *BatteryParams) { p.CapacityKWh = 0 }, "capacity_kwh"},
		{"zero efficiency", func(p *BatteryParams) { p.Efficiency = 0 }, "efficiency"},
		{"efficiency above one", func(p *BatteryParams) { p.Efficiency = 1.01 }, "efficiency"},
		{"negative soc", func(p *BatteryParams) { p.InitialSocFraction = -0.1 }, "initial_soc_fraction"},
		{"soc above one", func(p *BatteryParams) { p.InitialSocFraction = 1.1 }, "initial_soc_fraction"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestBatteryParamsInitialSocKWh(t *testing.T) {
	p := BatteryParams{PowerKW: 5, CapacityKWh: 20, Efficiency: 1, InitialSocFraction: 0.25}
	if got := p.InitialSocKWh(); got != 5 {
		t.Errorf("InitialSocKWh = %v, want 5", got)
	}
}

func TestTariffValidate(t *testing.T) {
	if err := (Tariff{PeakRate: 12.5, StepHours: 1}).Validate(); err != nil {
		t.Fatalf("valid tariff rejected: %v", err)
	}
	if err := (Tariff{PeakRate: 0, StepHours: 0.25}).Validate(); err != nil {
		t.Fatalf("zero peak rate should be allowed: %v", err)
	}
	if err := (Tariff{PeakRate: -1, StepHours: 1}).Validate(); err == nil {
		t.Error("negative peak rate accepted")
	}
	if err := (Tariff{PeakRate: 1, StepHours: 0}).Validate(); err == nil {
		t.Error("zero step length accepted")
	}
}
