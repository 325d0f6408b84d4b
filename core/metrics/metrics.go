package metrics

import (
	"time"

	"github.com/kilianp07/bessopt/core/lp"
	"github.com/kilianp07/bessopt/core/model"
)

// SolveEvent summarizes one optimization run.
type SolveEvent struct {
	RunID        string
	Status       lp.Status
	Steps        int
	TotalCost    float64
	EnergyCost   float64
	DemandCharge float64
	PeakKW       float64
	Duration     time.Duration
	Time         time.Time
}

// MetricsSink records solve events for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// ScheduleEvent carries a solved plan for per-step recording.
type ScheduleEvent struct {
	RunID    string
	Schedule *model.Schedule
	Time     time.Time
}

// ScheduleRecorder is implemented by sinks able to store full schedules.
type ScheduleRecorder interface {
	RecordSchedule(ev ScheduleEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }

// Ensure NopSink implements ScheduleRecorder.
func (NopSink) RecordSchedule(ScheduleEvent) error { return nil }

// FromSchedule builds the pair of events describing a successful run.
func FromSchedule(s *model.Schedule) (SolveEvent, ScheduleEvent) {
	ev := SolveEvent{
		RunID:        s.RunID,
		Status:       lp.StatusOptimal,
		Steps:        s.Steps(),
		TotalCost:    s.TotalCost,
		EnergyCost:   s.EnergyCost,
		DemandCharge: s.DemandCharge,
		PeakKW:       s.PeakKW,
		Duration:     s.Elapsed,
		Time:         s.SolvedAt,
	}
	return ev, ScheduleEvent{RunID: s.RunID, Schedule: s, Time: s.SolvedAt}
}
