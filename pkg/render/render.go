// Package render draws schedules as ASCII tables and charts for the CLI.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"github.com/kilianp07/bessopt/core/model"
)

// Table writes the schedule points as an ASCII table to w.
func Table(w io.Writer, s *model.Schedule) error {
	if s == nil {
		return fmt.Errorf("nil schedule")
	}
	table := tablewriter.NewTable(w)
	table.Header([]string{"Step", "Charge kW", "Discharge kW", "SoC kWh", "Net Grid kW", "Energy Cost"})
	for _, p := range s.Points {
		table.Append([]string{
			strconv.Itoa(p.Step),
			cell(p.ChargeKW),
			cell(p.DischargeKW),
			cell(p.SocKWh),
			cell(p.NetGridKW),
			cell(p.EnergyCost),
		})
	}
	return table.Render()
}

// Summary writes the run cost summary as a single-row table to w.
func Summary(w io.Writer, s *model.Schedule) error {
	if s == nil {
		return fmt.Errorf("nil schedule")
	}
	table := tablewriter.NewTable(w)
	table.Header([]string{"Run", "Steps", "Peak kW", "Energy Cost", "Demand Charge", "Total Cost"})
	table.Append([]string{
		s.RunID,
		strconv.Itoa(s.Steps()),
		fmt.Sprintf("%.2f", s.PeakKW),
		fmt.Sprintf("%.2f", s.EnergyCost),
		fmt.Sprintf("%.2f", s.DemandCharge),
		fmt.Sprintf("%.2f", s.TotalCost),
	})
	return table.Render()
}

// Charts renders the state of charge and the power flows as ASCII charts.
func Charts(w io.Writer, s *model.Schedule, width, height int) error {
	if s == nil || len(s.Points) == 0 {
		return fmt.Errorf("empty schedule")
	}
	soc := make([]float64, len(s.Points))
	net := make([]float64, len(s.Points))
	charge := make([]float64, len(s.Points))
	discharge := make([]float64, len(s.Points))
	for i, p := range s.Points {
		soc[i] = p.SocKWh
		net[i] = p.NetGridKW
		charge[i] = p.ChargeKW
		discharge[i] = p.DischargeKW
	}

	fmt.Fprintln(w, asciigraph.Plot(soc,
		asciigraph.Precision(1),
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption("State of charge (kWh)"),
	))
	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.PlotMany([][]float64{net, charge, discharge},
		asciigraph.Precision(1),
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption("Power flow (kW)"),
		asciigraph.SeriesLegends("net grid", "charge", "discharge"),
	))
	return nil
}

func cell(f float64) string {
	if f == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", f)
}
