package optimizer

import (
	"fmt"
	"math"

	"github.com/kilianp07/bessopt/core/lp"
	"github.com/kilianp07/bessopt/core/model"
)

// horizon carries the variable handles of one assembled problem so the
// solution can be mapped back onto a schedule.
type horizon struct {
	batt   model.BatteryParams
	tariff model.Tariff
	series model.Series

	charge    []lp.Var
	discharge []lp.Var
	soc       []lp.Var
	peak      lp.Var
	problem   lp.Problem
}

// buildHorizon assembles the linear program
//
//	minimize  sum_t price[t]*(charge[t] - discharge[t])
//	        + peakRate*peak + sum_t price[t]*demand[t]
//
// subject to, for every step t,
//
//	0 <= charge[t] <= P,  0 <= discharge[t] <= P,  0 <= soc[t] <= E
//	soc[0] = initialSocFraction*E
//	soc[t] = soc[t-1] + eff*charge[t] - discharge[t]/eff   (t >= 1)
//	peak  >= demand[t] - discharge[t] + charge[t]
//
// The constant sum over price[t]*demand[t] is carried as the objective
// offset, so the reported optimum is the full bill rather than the saving.
// The storage limits are emitted both as variable bounds and as explicit
// rows. The balance recursion starts at t=1: the first step's charge and
// discharge act on the grid while soc[0] stays at its configured value.
func buildHorizon(batt model.BatteryParams, tariff model.Tariff, series model.Series) (*horizon, error) {
	n := series.Steps()
	h := &horizon{
		batt:      batt,
		tariff:    tariff,
		series:    series,
		charge:    make([]lp.Var, n),
		discharge: make([]lp.Var, n),
		soc:       make([]lp.Var, n),
	}

	b := lp.NewBuilder()
	for t := 0; t < n; t++ {
		h.charge[t] = b.AddVariable(fmt.Sprintf("charge[%d]", t), 0, batt.PowerKW)
		h.discharge[t] = b.AddVariable(fmt.Sprintf("discharge[%d]", t), 0, batt.PowerKW)
		h.soc[t] = b.AddVariable(fmt.Sprintf("soc[%d]", t), 0, batt.CapacityKWh)
	}
	h.peak = b.AddVariable("peak", 0, math.Inf(1))

	b.AddConstraint("soc_init", []lp.Term{{Var: h.soc[0], Coeff: 1}}, lp.EQ, batt.InitialSocKWh())
	eff := batt.Efficiency
	for t := 1; t < n; t++ {
		b.AddConstraint(fmt.Sprintf("soc_balance[%d]", t), []lp.Term{
			{Var: h.soc[t], Coeff: 1},
			{Var: h.soc[t-1], Coeff: -1},
			{Var: h.charge[t], Coeff: -eff},
			{Var: h.discharge[t], Coeff: 1 / eff},
		}, lp.EQ, 0)
	}
	for t := 0; t < n; t++ {
		b.AddConstraint(fmt.Sprintf("soc_max[%d]", t), []lp.Term{{Var: h.soc[t], Coeff: 1}}, lp.LE, batt.CapacityKWh)
		b.AddConstraint(fmt.Sprintf("soc_min[%d]", t), []lp.Term{{Var: h.soc[t], Coeff: 1}}, lp.GE, 0)
		b.AddConstraint(fmt.Sprintf("peak[%d]", t), []lp.Term{
			{Var: h.charge[t], Coeff: 1},
			{Var: h.discharge[t], Coeff: -1},
			{Var: h.peak, Coeff: -1},
		}, lp.LE, -series.Demand[t])
	}

	terms := make([]lp.Term, 0, 2*n+1)
	offset := 0.0
	for t := 0; t < n; t++ {
		terms = append(terms,
			lp.Term{Var: h.charge[t], Coeff: series.Price[t]},
			lp.Term{Var: h.discharge[t], Coeff: -series.Price[t]},
		)
		offset += series.Price[t] * series.Demand[t]
	}
	terms = append(terms, lp.Term{Var: h.peak, Coeff: tariff.PeakRate})
	b.Minimize(terms, offset)

	p, err := b.Build()
	if err != nil {
		return nil, err
	}
	h.problem = p
	return h, nil
}

// schedule maps an optimal solution back onto the horizon steps.
func (h *horizon) schedule(sol lp.Solution) *model.Schedule {
	n := h.series.Steps()
	points := make([]model.SchedulePoint, n)
	for t := 0; t < n; t++ {
		c := sol.Value(h.charge[t])
		d := sol.Value(h.discharge[t])
		net := h.series.Demand[t] - d + c
		points[t] = model.SchedulePoint{
			Step:        t,
			ChargeKW:    c,
			DischargeKW: d,
			SocKWh:      sol.Value(h.soc[t]),
			NetGridKW:   net,
			EnergyCost:  net * h.series.Price[t],
		}
	}
	peak := sol.Value(h.peak)
	demandCharge := peak * h.tariff.PeakRate
	return &model.Schedule{
		Points:       points,
		PeakKW:       peak,
		TotalCost:    sol.Objective,
		DemandCharge: demandCharge,
		EnergyCost:   sol.Objective - demandCharge,
	}
}
