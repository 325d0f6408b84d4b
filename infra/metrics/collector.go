package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/bessopt/core/events"
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// solver events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.RunCompletedEvent:
					if e.Schedule == nil {
						continue
					}
					solveEv, schedEv := coremetrics.FromSchedule(e.Schedule)
					_ = sink.RecordSolve(solveEv)
					if r, ok := sink.(coremetrics.ScheduleRecorder); ok {
						_ = r.RecordSchedule(schedEv)
					}
				case events.RunFailedEvent:
					_ = sink.RecordSolve(coremetrics.SolveEvent{
						Status:   e.Status,
						Duration: e.Elapsed,
						Time:     time.Now(),
					})
				}
			}
		}
	}()
}
