// Package optimizer plans battery charge/discharge schedules minimizing the
// sum of time-varying energy cost and the monthly peak demand charge.
package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/bessopt/core/logger"
	"github.com/kilianp07/bessopt/core/lp"
	"github.com/kilianp07/bessopt/core/model"
)

// Optimizer builds one linear program per request and hands it to the
// configured solver. It holds no state between calls and is safe for
// concurrent use when the solver is.
type Optimizer struct {
	solver lp.Solver
	log    logger.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger attaches a logger. The default discards all output.
func WithLogger(l logger.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.log = l
		}
	}
}

// New creates an Optimizer backed by solver.
func New(solver lp.Solver, opts ...Option) *Optimizer {
	o := &Optimizer{solver: solver, log: nopLogger{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize validates the inputs, solves the horizon and returns the plan.
// The result is all or nothing: invalid inputs are rejected with a
// *model.ValidationError before the solver runs, and any non-optimal solver
// outcome is reported as a *NoSolutionError without a schedule.
func (o *Optimizer) Optimize(ctx context.Context, batt model.BatteryParams, tariff model.Tariff, series model.Series) (*model.Schedule, error) {
	if err := batt.Validate(); err != nil {
		return nil, err
	}
	if err := tariff.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	h, err := buildHorizon(batt, tariff, series)
	if err != nil {
		return nil, fmt.Errorf("build problem: %w", err)
	}
	o.log.Debugw("problem assembled", map[string]any{
		"run_id":      runID,
		"steps":       series.Steps(),
		"variables":   h.problem.NumVars(),
		"constraints": len(h.problem.Constraints()),
	})

	start := time.Now()
	sol, err := o.solver.Solve(ctx, h.problem)
	elapsed := time.Since(start)
	if err != nil {
		o.log.Errorf("run %s: solver returned %s: %v", runID, sol.Status, err)
		return nil, &NoSolutionError{Status: sol.Status, Err: err}
	}
	if sol.Status != lp.StatusOptimal {
		o.log.Errorf("run %s: solver returned %s without error", runID, sol.Status)
		return nil, &NoSolutionError{Status: sol.Status}
	}

	sched := h.schedule(sol)
	sched.RunID = runID
	sched.SolvedAt = time.Now().UTC()
	sched.Elapsed = elapsed
	o.log.Infof("run %s: optimal in %s, total cost %.4f, peak %.3f kW",
		runID, elapsed, sched.TotalCost, sched.PeakKW)
	return sched, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
