package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	corelp "github.com/kilianp07/bessopt/core/lp"
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
)

func TestPromSink_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	ev := coremetrics.SolveEvent{
		RunID:        "run-1",
		Status:       corelp.StatusOptimal,
		Steps:        24,
		TotalCost:    128.5,
		EnergyCost:   83.5,
		DemandCharge: 45,
		PeakKW:       4.5,
		Duration:     150 * time.Millisecond,
		Time:         time.Now(),
	}
	if err := sink.RecordSolve(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP solve_runs_total Total number of optimization runs by outcome
# TYPE solve_runs_total counter
solve_runs_total{status="Optimal"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}

	expectedCost := `
# HELP solve_last_total_cost Objective value of the last optimal run
# TYPE solve_last_total_cost gauge
solve_last_total_cost 128.5
`
	if err := testutil.CollectAndCompare(sink.totalCost, strings.NewReader(expectedCost)); err != nil {
		t.Errorf("unexpected total cost metric: %v", err)
	}

	expectedPeak := `
# HELP solve_last_peak_kw Peak net grid draw of the last optimal run
# TYPE solve_last_peak_kw gauge
solve_last_peak_kw 4.5
`
	if err := testutil.CollectAndCompare(sink.peak, strings.NewReader(expectedPeak)); err != nil {
		t.Errorf("unexpected peak metric: %v", err)
	}
}

func TestPromSink_NonOptimalLeavesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)

	if err := sink.RecordSolve(coremetrics.SolveEvent{Status: corelp.StatusOptimal, TotalCost: 128.5, PeakKW: 4.5}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := sink.RecordSolve(coremetrics.SolveEvent{Status: corelp.StatusInfeasible, TotalCost: 999}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP solve_runs_total Total number of optimization runs by outcome
# TYPE solve_runs_total counter
solve_runs_total{status="Infeasible"} 1
solve_runs_total{status="Optimal"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	expectedCost := `
# HELP solve_last_total_cost Objective value of the last optimal run
# TYPE solve_last_total_cost gauge
solve_last_total_cost 128.5
`
	if err := testutil.CollectAndCompare(sink.totalCost, strings.NewReader(expectedCost)); err != nil {
		t.Errorf("gauge overwritten on non-optimal run: %v", err)
	}
}

func TestNewPromSinkWithRegistryTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second create should reuse collectors: %v", err)
	}
}
