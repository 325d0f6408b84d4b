package optimizer

import (
	"fmt"

	"github.com/kilianp07/bessopt/core/lp"
)

// NoSolutionError reports that the solver terminated without an optimal
// solution. No partial schedule accompanies it.
type NoSolutionError struct {
	Status lp.Status
	Err    error
}

func (e *NoSolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no solution (%s): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("no solution (%s)", e.Status)
}

func (e *NoSolutionError) Unwrap() error { return e.Err }
