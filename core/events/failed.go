package events

import (
	"time"

	"github.com/kilianp07/bessopt/core/lp"
)

// RunFailedEvent is published when the solver returns no usable solution.
type RunFailedEvent struct {
	Status  lp.Status
	Err     error
	Elapsed time.Duration
}
