package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/bessopt/core/model"
)

type BatteryDef struct {
	PowerKW            float64 `yaml:"power_kw"`
	CapacityKWh        float64 `yaml:"capacity_kwh"`
	Efficiency         float64 `yaml:"efficiency"`
	InitialSocFraction float64 `yaml:"initial_soc_fraction"`
}

func (b BatteryDef) ToModel() model.BatteryParams {
	return model.BatteryParams{
		PowerKW:            b.PowerKW,
		CapacityKWh:        b.CapacityKWh,
		Efficiency:         b.Efficiency,
		InitialSocFraction: b.InitialSocFraction,
	}
}

type TariffDef struct {
	PeakRate  float64 `yaml:"peak_rate"`
	StepHours float64 `yaml:"step_hours"`
}

func (t TariffDef) ToModel() model.Tariff {
	return model.Tariff{PeakRate: t.PeakRate, StepHours: t.StepHours}
}

// Expected lists the assertions of a scenario. Scalar fields are pointers so
// absent keys assert nothing; the step maps only pin values where the optimum
// is unique.
type Expected struct {
	TotalCost    *float64        `yaml:"total_cost,omitempty"`
	EnergyCost   *float64        `yaml:"energy_cost,omitempty"`
	DemandCharge *float64        `yaml:"demand_charge,omitempty"`
	PeakKW       *float64        `yaml:"peak_kw,omitempty"`
	Charge       map[int]float64 `yaml:"charge,omitempty"`
	Discharge    map[int]float64 `yaml:"discharge,omitempty"`
	Soc          map[int]float64 `yaml:"soc,omitempty"`
	Tolerance    float64         `yaml:"tolerance,omitempty"`
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Battery     BatteryDef `yaml:"battery"`
	Tariff      TariffDef  `yaml:"tariff"`
	Demand      []float64  `yaml:"demand"`
	Price       []float64  `yaml:"price"`
	Expected    Expected   `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
