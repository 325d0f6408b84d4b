package metrics

import coremetrics "github.com/kilianp07/bessopt/core/metrics"

// MultiSink fanouts solve events to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolve(ev coremetrics.SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSchedule forwards schedule events when supported by the sink.
func (m *MultiSink) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ScheduleRecorder); ok {
			if err := rec.RecordSchedule(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
