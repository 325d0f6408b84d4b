// Package simplex solves core LP problems with gonum's dense simplex method.
package simplex

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	corelp "github.com/kilianp07/bessopt/core/lp"
)

// DefaultTol is the pivot tolerance handed to the simplex routine.
const DefaultTol = 1e-7

// Solver implements lp.Solver on gonum.org/v1/gonum/optimize/convex/lp.
type Solver struct {
	tol float64
}

// Option configures a Solver.
type Option func(*Solver)

// WithTolerance overrides the simplex pivot tolerance.
func WithTolerance(tol float64) Option {
	return func(s *Solver) { s.tol = tol }
}

// New returns a Solver with the default tolerance.
func New(opts ...Option) *Solver {
	s := &Solver{tol: DefaultTol}
	for _, o := range opts {
		o(s)
	}
	return s
}

// lpSolve points to the gonum routine. It can be overridden in tests to
// simulate solver failures.
var lpSolve = func(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// Solve lowers p to standard form and runs the simplex method. The
// underlying routine cannot be interrupted: if ctx ends first the result is
// discarded and a StatusError solution is returned.
func (s *Solver) Solve(ctx context.Context, p corelp.Problem) (corelp.Solution, error) {
	if err := ctx.Err(); err != nil {
		return corelp.Solution{Status: corelp.StatusError}, fmt.Errorf("solve aborted: %w", err)
	}
	std, err := lower(p)
	if err != nil {
		return corelp.Solution{Status: corelp.StatusError}, fmt.Errorf("lower problem: %w", err)
	}

	type result struct {
		opt float64
		x   []float64
		err error
	}
	ch := make(chan result, 1)
	go func() {
		opt, x, err := lpSolve(std.c, std.a, std.b, s.tol)
		ch <- result{opt: opt, x: x, err: err}
	}()

	select {
	case <-ctx.Done():
		return corelp.Solution{Status: corelp.StatusError}, fmt.Errorf("solve aborted: %w", ctx.Err())
	case res := <-ch:
		if res.err != nil {
			status, serr := mapSolveError(res.err)
			return corelp.Solution{Status: status}, serr
		}
		return std.solution(res.opt, res.x), nil
	}
}

func mapSolveError(err error) (corelp.Status, error) {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return corelp.StatusInfeasible, fmt.Errorf("%w", corelp.ErrInfeasible)
	case errors.Is(err, lp.ErrUnbounded):
		return corelp.StatusUnbounded, fmt.Errorf("%w", corelp.ErrUnbounded)
	default:
		return corelp.StatusError, fmt.Errorf("simplex: %w", err)
	}
}

// varMapping records where an original variable landed in the standard form.
type varMapping struct {
	pos   int     // column of the (shifted) variable or positive part
	neg   int     // column of the negative part for free variables, -1 otherwise
	shift float64 // added back when reading the solution
}

// standardForm is a problem lowered to min c'x subject to Ax = b, x >= 0.
type standardForm struct {
	c      []float64
	a      *mat.Dense
	b      []float64
	cols   []varMapping
	offset float64
}

// lower rewrites a box-bounded problem with mixed comparisons into standard
// form. Variables with a finite lower bound are shifted so it becomes zero,
// free variables are split into a difference of two nonnegative columns, and
// finite upper bounds and inequality rows receive slack columns.
func lower(p corelp.Problem) (*standardForm, error) {
	vars := p.Variables()
	cons := p.Constraints()

	ncols := 0
	cols := make([]varMapping, len(vars))
	type upperBound struct {
		varIdx int
		rhs    float64
	}
	var uppers []upperBound
	for i, v := range vars {
		m := varMapping{pos: ncols, neg: -1}
		if math.IsInf(v.Lo, -1) {
			m.neg = ncols + 1
			ncols += 2
		} else {
			m.shift = v.Lo
			ncols++
		}
		cols[i] = m
		if !math.IsInf(v.Hi, 1) {
			uppers = append(uppers, upperBound{varIdx: i, rhs: v.Hi - m.shift})
		}
	}

	nrows := len(cons) + len(uppers)
	if nrows == 0 {
		return nil, errors.New("problem has no constraints")
	}
	nslack := len(uppers)
	for _, con := range cons {
		if con.Op != corelp.EQ {
			nslack++
		}
	}

	a := mat.NewDense(nrows, ncols+nslack, nil)
	b := make([]float64, nrows)
	c := make([]float64, ncols+nslack)

	row := 0
	slack := ncols
	for _, con := range cons {
		sign := 1.0
		if con.Op == corelp.GE {
			sign = -1
		}
		rhs := sign * con.RHS
		for _, t := range con.Terms {
			m := cols[t.Var.Index()]
			coeff := sign * t.Coeff
			a.Set(row, m.pos, a.At(row, m.pos)+coeff)
			if m.neg >= 0 {
				a.Set(row, m.neg, a.At(row, m.neg)-coeff)
			}
			rhs -= coeff * m.shift
		}
		if con.Op != corelp.EQ {
			a.Set(row, slack, 1)
			slack++
		}
		b[row] = rhs
		row++
	}
	for _, ub := range uppers {
		m := cols[ub.varIdx]
		a.Set(row, m.pos, 1)
		if m.neg >= 0 {
			a.Set(row, m.neg, -1)
		}
		a.Set(row, slack, 1)
		slack++
		b[row] = ub.rhs
		row++
	}

	terms, offset := p.Objective()
	for _, t := range terms {
		m := cols[t.Var.Index()]
		c[m.pos] += t.Coeff
		if m.neg >= 0 {
			c[m.neg] -= t.Coeff
		}
		offset += t.Coeff * m.shift
	}

	return &standardForm{c: c, a: a, b: b, cols: cols, offset: offset}, nil
}

// solution maps a standard-form optimum back onto the original variables.
func (f *standardForm) solution(opt float64, x []float64) corelp.Solution {
	values := make([]float64, len(f.cols))
	for i, m := range f.cols {
		v := x[m.pos] + m.shift
		if m.neg >= 0 {
			v -= x[m.neg]
		}
		values[i] = v
	}
	return corelp.Solution{
		Status:    corelp.StatusOptimal,
		Objective: opt + f.offset,
		Values:    values,
	}
}
