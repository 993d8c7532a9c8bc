package transys

import (
	"sort"

	"invsynth/internal/formula"
	"invsynth/internal/smt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// State is a symbolic set of states: the constraints on an unrolling whose
// last frame is at Depth.
type State struct {
	Depth       int
	constraints []z.Lit
}

func NewState(depth int, constraints ...z.Lit) *State {
	st := &State{
		Depth:       depth,
		constraints: make([]z.Lit, len(constraints)),
	}
	copy(st.constraints, constraints)
	return st
}

func (st *State) Append(ms ...z.Lit) {
	st.constraints = append(st.constraints, ms...)
}

func (st *State) Constraints() []z.Lit {
	out := make([]z.Lit, len(st.constraints))
	copy(out, st.constraints)
	return out
}

func (st *State) Clone() *State {
	return NewState(st.Depth, st.constraints...)
}

// Unroller answers symbolic queries over time frames of a Machine. All
// literals it returns belong to Circuit(). It is not safe for concurrent
// use.
type Unroller struct {
	m    *Machine
	roll *logic.Roll
}

func (u *Unroller) Circuit() *logic.C {
	return u.roll.C
}

func (u *Unroller) Machine() *Machine {
	return u.m
}

// Var is variable name at depth.
func (u *Unroller) Var(name string, depth int) (z.Lit, error) {
	l, err := u.m.resolve(name)
	if err != nil {
		return z.LitNull, err
	}
	return u.roll.At(l, depth), nil
}

// Lit translates f over the variables at depth.
func (u *Unroller) Lit(f formula.Formula, depth int) (z.Lit, error) {
	return smt.Build(u.roll.C, f, func(name string) (z.Lit, error) {
		return u.Var(name, depth)
	})
}

// Initial is the set of states reachable in exactly steps steps from Init.
func (u *Unroller) Initial(steps int) *State {
	st := NewState(0, u.roll.At(u.m.init, 0), u.roll.At(u.m.axioms, 0))
	for i := 0; i < steps; i++ {
		st = u.Step(st)
	}
	return st
}

// FromFormula is the set of states satisfying f and the axioms.
func (u *Unroller) FromFormula(f formula.Formula) (*State, error) {
	m, err := u.Lit(f, 0)
	if err != nil {
		return nil, errors.Wrap(err, "Lit")
	}
	return NewState(0, m, u.roll.At(u.m.axioms, 0)), nil
}

// Step is the image of st under the choice of any one enabled action.
func (u *Unroller) Step(st *State) *State {
	d := st.Depth
	c := u.roll.C
	sels := make([]z.Lit, len(u.m.sel))
	for i, sel := range u.m.sel {
		sels[i] = u.roll.At(sel, d)
	}
	next := NewState(d+1, st.constraints...)
	next.Append(c.Ors(sels...), c.CardSort(sels).Leq(1))
	for i, sel := range sels {
		next.Append(c.Implies(sel, u.roll.At(u.m.guard[i], d)))
	}
	next.Append(u.roll.At(u.m.axioms, d+1))
	return next
}

// Image is the image of st under the named action.
func (u *Unroller) Image(st *State, action string) (*State, error) {
	i, err := u.actionIndex(action)
	if err != nil {
		return nil, err
	}
	next := u.Step(st)
	next.Append(u.roll.At(u.m.sel[i], st.Depth))
	return next, nil
}

func (u *Unroller) actionIndex(name string) (int, error) {
	for i, a := range u.m.sys.Actions {
		if a.Name == name {
			return i, nil
		}
	}
	return -1, &UnknownSymbolError{Name: name, Context: "image"}
}

// Solver returns a fresh oracle holding the constraints of st. Variables,
// selectors and inputs of every frame up to st.Depth are encoded so models
// can be read back.
func (u *Unroller) Solver(st *State, opts ...smt.Option) *smt.Solver {
	s := smt.NewSolver(u.roll.C, opts...)
	s.Assert(st.constraints...)
	var ms []z.Lit
	for d := 0; d <= st.Depth; d++ {
		for _, v := range u.m.sys.Vars {
			ms = append(ms, u.roll.At(u.m.latch[v], d))
		}
		for _, sel := range u.m.sel {
			ms = append(ms, u.roll.At(sel, d))
		}
		for _, in := range u.m.havoc {
			ms = append(ms, u.roll.At(in, d))
		}
	}
	s.Encode(ms...)
	return s
}

// ReadState reads the variables at depth from the last sat Check of s.
func (u *Unroller) ReadState(s *smt.Solver, depth int) (smt.Model, error) {
	return smt.ReadNamed(s, u.m.sys.Vars, func(name string) z.Lit {
		return u.roll.At(u.m.latch[name], depth)
	})
}

// ReadInputs reads the havoc inputs at depth.
func (u *Unroller) ReadInputs(s *smt.Solver, depth int) (smt.Model, error) {
	names := make([]string, 0, len(u.m.havoc))
	for n := range u.m.havoc {
		names = append(names, n)
	}
	sort.Strings(names)
	return smt.ReadNamed(s, names, func(name string) z.Lit {
		return u.roll.At(u.m.havoc[name], depth)
	})
}

// Fired returns the action selected at depth in the last sat Check of s.
func (u *Unroller) Fired(s *smt.Solver, depth int) (string, error) {
	for i, sel := range u.m.sel {
		v, err := s.Value(u.roll.At(sel, depth))
		if err != nil {
			return "", errors.Wrap(err, "Value")
		}
		if v {
			return u.m.sys.Actions[i].Name, nil
		}
	}
	return "", errors.New("no action selected")
}
