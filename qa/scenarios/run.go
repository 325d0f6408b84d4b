package scenarios

import (
	"context"
	"math"
	"testing"

	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/optimizer"
	"github.com/kilianp07/bessopt/infra/simplex"
)

const defaultTolerance = 1e-6

// RunScenario solves the scenario with the real simplex solver and checks
// the expected values plus the invariants every optimal schedule satisfies.
func RunScenario(t *testing.T, sc *Scenario) {
	opt := optimizer.New(simplex.New())

	batt := sc.Battery.ToModel()
	tariff := sc.Tariff.ToModel()
	series := model.Series{Demand: sc.Demand, Price: sc.Price}

	sched, err := opt.Optimize(context.Background(), batt, tariff, series)
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	tol := sc.Expected.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}

	checkScalar := func(name string, got float64, want *float64) {
		if want != nil && math.Abs(got-*want) > tol {
			t.Errorf("%s = %v, want %v", name, got, *want)
		}
	}
	checkScalar("total_cost", sched.TotalCost, sc.Expected.TotalCost)
	checkScalar("energy_cost", sched.EnergyCost, sc.Expected.EnergyCost)
	checkScalar("demand_charge", sched.DemandCharge, sc.Expected.DemandCharge)
	checkScalar("peak_kw", sched.PeakKW, sc.Expected.PeakKW)

	checkStep := func(name string, want map[int]float64, value func(model.SchedulePoint) float64) {
		for step, w := range want {
			if step < 0 || step >= len(sched.Points) {
				t.Errorf("%s[%d]: no such step", name, step)
				continue
			}
			if got := value(sched.Points[step]); math.Abs(got-w) > tol {
				t.Errorf("%s[%d] = %v, want %v", name, step, got, w)
			}
		}
	}
	checkStep("charge", sc.Expected.Charge, func(p model.SchedulePoint) float64 { return p.ChargeKW })
	checkStep("discharge", sc.Expected.Discharge, func(p model.SchedulePoint) float64 { return p.DischargeKW })
	checkStep("soc", sc.Expected.Soc, func(p model.SchedulePoint) float64 { return p.SocKWh })

	checkInvariants(t, batt, tariff, sched, tol)

	// Objective values are deterministic across re-solves even when the
	// variable assignment is degenerate.
	again, err := opt.Optimize(context.Background(), batt, tariff, series)
	if err != nil {
		t.Fatalf("scenario %s re-solve: %v", sc.Name, err)
	}
	if math.Abs(again.TotalCost-sched.TotalCost) > tol {
		t.Errorf("re-solve objective %v differs from %v", again.TotalCost, sched.TotalCost)
	}
}

func checkInvariants(t *testing.T, batt model.BatteryParams, tariff model.Tariff, sched *model.Schedule, tol float64) {
	if got := sched.Points[0].SocKWh; math.Abs(got-batt.InitialSocKWh()) > tol {
		t.Errorf("soc[0] = %v, want initial %v", got, batt.InitialSocKWh())
	}

	maxNet := math.Inf(-1)
	energy := 0.0
	for _, p := range sched.Points {
		if p.SocKWh < -tol || p.SocKWh > batt.CapacityKWh+tol {
			t.Errorf("soc[%d] = %v outside [0, %v]", p.Step, p.SocKWh, batt.CapacityKWh)
		}
		if p.ChargeKW < -tol || p.ChargeKW > batt.PowerKW+tol {
			t.Errorf("charge[%d] = %v outside [0, %v]", p.Step, p.ChargeKW, batt.PowerKW)
		}
		if p.DischargeKW < -tol || p.DischargeKW > batt.PowerKW+tol {
			t.Errorf("discharge[%d] = %v outside [0, %v]", p.Step, p.DischargeKW, batt.PowerKW)
		}
		if p.NetGridKW > maxNet {
			maxNet = p.NetGridKW
		}
		energy += p.EnergyCost
	}

	eff := batt.Efficiency
	for i := 1; i < len(sched.Points); i++ {
		p, prev := sched.Points[i], sched.Points[i-1]
		bal := prev.SocKWh + eff*p.ChargeKW - p.DischargeKW/eff
		if math.Abs(p.SocKWh-bal) > tol {
			t.Errorf("soc balance violated at step %d: %v != %v", i, p.SocKWh, bal)
		}
	}

	if sched.PeakKW < maxNet-tol {
		t.Errorf("peak %v below max net draw %v", sched.PeakKW, maxNet)
	}
	if tariff.PeakRate > 0 {
		// A positive rate makes the epigraph tight at the optimum.
		floor := math.Max(maxNet, 0)
		if math.Abs(sched.PeakKW-floor) > tol {
			t.Errorf("peak %v not tight against max net draw %v", sched.PeakKW, floor)
		}
	}

	if got := energy + sched.DemandCharge; math.Abs(got-sched.TotalCost) > tol {
		t.Errorf("recomputed cost %v differs from objective %v", got, sched.TotalCost)
	}
}
