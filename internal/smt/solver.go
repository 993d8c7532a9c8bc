// Package smt wraps the gini SAT solver as an incremental decision oracle
// answering queries under assumption literals.
package smt

import (
	"io"
	"time"

	"invsynth/internal/metrics"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Status is the three-way answer of a query.
type Status int

const (
	StatusUnsat   Status = -1
	StatusUnknown Status = 0
	StatusSat     Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	}
	return "unknown"
}

var (
	ErrUnknown = errors.New("oracle returned unknown")
	ErrNoCore  = errors.New("unsat core requested without a preceding unsat check")
	ErrNoModel = errors.New("model requested without a preceding sat check")
)

type Option func(*Solver)

// WithTimeout bounds every Check. A query that runs out of time is unknown.
func WithTimeout(d time.Duration) Option {
	return func(s *Solver) {
		s.timeout = d
	}
}

// Solver owns one gini instance fed from a shared circuit. Literals of the
// circuit are literals of the solver; only the cone of the roots handed to
// Assert, AddClause and Check is ever translated to CNF.
type Solver struct {
	c       *logic.C
	g       *gini.Gini
	marks   []int8
	timeout time.Duration

	last Status
	core []z.Lit
}

func NewSolver(c *logic.C, opts ...Option) *Solver {
	s := &Solver{
		c: c,
		g: gini.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Circuit is the circuit literals are built in.
func (s *Solver) Circuit() *logic.C {
	return s.c
}

// Lit allocates a fresh free literal.
func (s *Solver) Lit() z.Lit {
	return s.c.Lit()
}

func (s *Solver) encode(ms []z.Lit) {
	s.marks, _ = s.c.CnfSince(s.g, s.marks, ms...)
}

// Encode translates the cone of ms without constraining it, so that
// Value reports model-consistent values for gates that are otherwise
// outside every assertion.
func (s *Solver) Encode(ms ...z.Lit) {
	s.encode(ms)
	s.last = StatusUnknown
}

// Assert adds every literal as a unit clause.
func (s *Solver) Assert(ms ...z.Lit) {
	s.encode(ms)
	for _, m := range ms {
		s.g.Add(m)
		s.g.Add(0)
	}
	s.last = StatusUnknown
}

// AddClause adds the disjunction of ms.
func (s *Solver) AddClause(ms ...z.Lit) {
	s.encode(ms)
	for _, m := range ms {
		s.g.Add(m)
	}
	s.g.Add(0)
	s.last = StatusUnknown
}

// Check decides the asserted constraints under assumptions. An unknown
// answer is reported both as StatusUnknown and ErrUnknown.
func (s *Solver) Check(assumptions ...z.Lit) (Status, error) {
	s.encode(assumptions)
	s.core = s.core[:0]
	s.g.Assume(assumptions...)

	start := time.Now()
	var res int
	if s.timeout > 0 {
		res = s.g.Try(s.timeout)
	} else {
		res = s.g.Solve()
	}
	s.last = Status(res)
	metrics.ObserveQuery(s.last.String(), time.Since(start))

	switch s.last {
	case StatusSat:
		return StatusSat, nil
	case StatusUnsat:
		s.core = s.g.Why(s.core)
		return StatusUnsat, nil
	}
	return StatusUnknown, ErrUnknown
}

// Core returns a subset of the last assumptions that is unsatisfiable on
// its own. It is only valid right after an unsat Check.
func (s *Solver) Core() ([]z.Lit, error) {
	if s.last != StatusUnsat {
		return nil, ErrNoCore
	}
	core := make([]z.Lit, len(s.core))
	copy(core, s.core)
	return core, nil
}

// Value reads m in the model of the last sat Check. Variables the solver
// never saw are false.
func (s *Solver) Value(m z.Lit) (bool, error) {
	if s.last != StatusSat {
		return false, ErrNoModel
	}
	if m.Var() > s.g.MaxVar() {
		return !m.IsPos(), nil
	}
	return s.g.Value(m), nil
}

// Model reads every literal of ms. See Value.
func (s *Solver) Model(ms ...z.Lit) ([]bool, error) {
	vals := make([]bool, len(ms))
	for i, m := range ms {
		v, err := s.Value(m)
		if err != nil {
			return nil, errors.Wrap(err, "Value")
		}
		vals[i] = v
	}
	return vals, nil
}

// Copy returns an independent solver over the same circuit. The circuit is
// shared, so copies may only run concurrently if nobody adds to it.
func (s *Solver) Copy() *Solver {
	marks := make([]int8, len(s.marks), cap(s.marks))
	copy(marks, s.marks)
	return &Solver{
		c:       s.c,
		g:       s.g.Copy(),
		marks:   marks,
		timeout: s.timeout,
	}
}

// WriteDimacs dumps the clauses added so far.
func (s *Solver) WriteDimacs(w io.Writer) error {
	return errors.Wrap(s.g.Write(w), "Write")
}
