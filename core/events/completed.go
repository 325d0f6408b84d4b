package events

import "github.com/kilianp07/bessopt/core/model"

// RunCompletedEvent is published when the solver returns an optimal schedule.
type RunCompletedEvent struct {
	Schedule *model.Schedule
}
