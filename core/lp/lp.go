package lp

import (
	"errors"
	"fmt"
	"math"
)

// Op identifies the comparison operator of a linear constraint.
type Op int

const (
	// LE constrains the expression to be at most the right-hand side.
	LE Op = iota
	// GE constrains the expression to be at least the right-hand side.
	GE
	// EQ constrains the expression to equal the right-hand side.
	EQ
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Var is a handle to a decision variable. A handle is only valid for the
// Problem built by the Builder that issued it.
type Var struct {
	id int
}

// Index returns the variable's position in declaration order. Solvers use it
// to map variables to matrix columns.
func (v Var) Index() int { return v.id }

// Term is a single coefficient-variable product in a linear expression.
type Term struct {
	Var   Var
	Coeff float64
}

// Variable describes a decision variable with its inclusive box bounds.
// Hi may be math.Inf(1) for a variable without an upper limit.
type Variable struct {
	Name string
	Lo   float64
	Hi   float64
}

// Constraint is a linear constraint sum(Terms) Op RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Op    Op
	RHS   float64
}

// Problem is an immutable linear minimization problem. Problems are built
// with a Builder and are safe to share between goroutines.
type Problem struct {
	vars   []Variable
	cons   []Constraint
	obj    []Term
	offset float64
}

// NumVars returns the number of decision variables.
func (p Problem) NumVars() int { return len(p.vars) }

// Variables returns the variable definitions in declaration order. The
// returned slice is shared and must not be modified.
func (p Problem) Variables() []Variable { return p.vars }

// Constraints returns the constraints in insertion order. The returned slice
// is shared and must not be modified.
func (p Problem) Constraints() []Constraint { return p.cons }

// Objective returns the linear objective terms and the constant offset. The
// offset is added to the reported objective value and does not influence the
// optimum.
func (p Problem) Objective() ([]Term, float64) { return p.obj, p.offset }

// Builder incrementally assembles a Problem. The zero value is ready to use.
// Builders are not safe for concurrent use.
type Builder struct {
	vars   []Variable
	cons   []Constraint
	obj    []Term
	offset float64
	err    error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddVariable declares a decision variable bounded to [lo, hi] and returns
// its handle. Invalid bounds are reported by Build.
func (b *Builder) AddVariable(name string, lo, hi float64) Var {
	if b.err == nil {
		switch {
		case math.IsNaN(lo) || math.IsNaN(hi):
			b.err = fmt.Errorf("variable %s: NaN bound", name)
		case math.IsInf(lo, 1) || math.IsInf(hi, -1):
			b.err = fmt.Errorf("variable %s: bounds [%v, %v] exclude all values", name, lo, hi)
		case lo > hi:
			b.err = fmt.Errorf("variable %s: lower bound %v exceeds upper bound %v", name, lo, hi)
		}
	}
	v := Var{id: len(b.vars)}
	b.vars = append(b.vars, Variable{Name: name, Lo: lo, Hi: hi})
	return v
}

// AddConstraint appends the constraint sum(terms) op rhs. The terms slice is
// copied and may be reused by the caller.
func (b *Builder) AddConstraint(name string, terms []Term, op Op, rhs float64) {
	if b.err == nil {
		switch {
		case len(terms) == 0:
			b.err = fmt.Errorf("constraint %s: no terms", name)
		case math.IsNaN(rhs):
			b.err = fmt.Errorf("constraint %s: NaN right-hand side", name)
		default:
			for _, t := range terms {
				if t.Var.id < 0 || t.Var.id >= len(b.vars) {
					b.err = fmt.Errorf("constraint %s: term references unknown variable", name)
					break
				}
			}
		}
	}
	b.cons = append(b.cons, Constraint{Name: name, Terms: append([]Term(nil), terms...), Op: op, RHS: rhs})
}

// Minimize sets the objective to sum(terms) + offset, replacing any
// previously set objective.
func (b *Builder) Minimize(terms []Term, offset float64) {
	b.obj = append([]Term(nil), terms...)
	b.offset = offset
}

// Build validates the accumulated definition and returns the frozen Problem.
// The Builder may be discarded afterwards; the Problem shares no state with
// it.
func (b *Builder) Build() (Problem, error) {
	if b.err != nil {
		return Problem{}, b.err
	}
	if len(b.vars) == 0 {
		return Problem{}, errors.New("problem has no variables")
	}
	for _, t := range b.obj {
		if t.Var.id < 0 || t.Var.id >= len(b.vars) {
			return Problem{}, errors.New("objective references unknown variable")
		}
	}
	p := Problem{
		vars:   append([]Variable(nil), b.vars...),
		cons:   append([]Constraint(nil), b.cons...),
		obj:    append([]Term(nil), b.obj...),
		offset: b.offset,
	}
	return p, nil
}
