package app

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/bessopt/config"
	"github.com/kilianp07/bessopt/core/events"
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Battery: model.BatteryParams{PowerKW: 2, CapacityKWh: 8, Efficiency: 1, InitialSocFraction: 0.25},
		Tariff:  model.Tariff{PeakRate: 10, StepHours: 1},
		Solver:  config.SolverConfig{Tolerance: 1e-7, MaxSteps: 100},
		Store:   config.StoreConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "runs.db")},
		Metrics: coremetrics.Config{},
	}
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return svc
}

func TestServiceOptimizePersistsRun(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)

	sub := svc.Bus().Subscribe()
	defer svc.Bus().Unsubscribe(sub)

	series := model.Series{Demand: []float64{6}, Price: []float64{1}}
	sched, err := svc.Optimize(context.Background(), cfg.Battery, cfg.Tariff, series)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	// Discharging the full 2 kWh shaves the peak to 4 kW: 4 + 4*10 = 44.
	if math.Abs(sched.TotalCost-44) > 1e-6 {
		t.Errorf("total cost = %v, want 44", sched.TotalCost)
	}
	if math.Abs(sched.PeakKW-4) > 1e-6 {
		t.Errorf("peak = %v, want 4", sched.PeakKW)
	}

	select {
	case ev := <-sub:
		completed, ok := ev.(events.RunCompletedEvent)
		if !ok {
			t.Fatalf("event = %T, want RunCompletedEvent", ev)
		}
		if completed.Schedule != sched {
			t.Errorf("event carries a different schedule")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}

	stored, err := svc.Store().GetRun(sched.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if stored.RunID != sched.RunID || len(stored.Points) != 1 {
		t.Errorf("stored = %+v", stored)
	}
	if math.Abs(stored.Points[0].DischargeKW-2) > 1e-6 {
		t.Errorf("stored discharge = %v, want 2", stored.Points[0].DischargeKW)
	}
}

func TestServiceOptimizeInvalidInput(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)

	batt := cfg.Battery
	batt.PowerKW = -1
	_, err := svc.Optimize(context.Background(), batt, cfg.Tariff, model.Series{Demand: []float64{1}, Price: []float64{1}})
	if err == nil {
		t.Fatal("expected error")
	}
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestServiceWithoutStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Enabled = false
	svc := newTestService(t, cfg)

	if svc.Store() != nil {
		t.Fatal("store should be nil when disabled")
	}

	series := model.Series{Demand: []float64{6}, Price: []float64{1}}
	sched, err := svc.Optimize(context.Background(), cfg.Battery, cfg.Tariff, series)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if sched == nil {
		t.Fatal("schedule is nil")
	}
}

func TestServiceStartWithoutSinks(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	series := model.Series{Demand: []float64{6}, Price: []float64{1}}
	if _, err := svc.Optimize(ctx, cfg.Battery, cfg.Tariff, series); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
}
