package lp

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Status classifies the outcome of a solve.
type Status int

const (
	// StatusUnknown is the zero value and never returned by a Solver.
	StatusUnknown Status = iota
	// StatusOptimal indicates an optimal assignment was found.
	StatusOptimal
	// StatusInfeasible indicates no assignment satisfies the constraints.
	StatusInfeasible
	// StatusUnbounded indicates the objective decreases without limit.
	StatusUnbounded
	// StatusError indicates the solver failed before classifying the problem.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "Unknown"
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ErrInfeasible indicates the problem has no feasible assignment.
var ErrInfeasible = errors.New("lp: problem is infeasible")

// ErrUnbounded indicates the objective can decrease without limit.
var ErrUnbounded = errors.New("lp: problem is unbounded")

// Solution is the outcome of solving a Problem. Objective and Values are
// only meaningful when Status is StatusOptimal; Objective includes the
// Problem offset.
type Solution struct {
	Status    Status
	Objective float64
	// Values holds one entry per problem variable in declaration order.
	Values []float64
}

// Value returns the solved value of v, or NaN if the solution carries no
// value for it.
func (s Solution) Value(v Var) float64 {
	if v.id < 0 || v.id >= len(s.Values) {
		return math.NaN()
	}
	return s.Values[v.id]
}

// Solver solves linear minimization problems. Implementations report
// infeasible and unbounded problems with the matching Status and an error
// wrapping ErrInfeasible or ErrUnbounded. A non-nil error always accompanies
// a non-optimal status.
type Solver interface {
	Solve(ctx context.Context, p Problem) (Solution, error)
}
