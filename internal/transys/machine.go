package transys

import (
	"invsynth/internal/smt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Machine is a System compiled to a sequential circuit. Every variable is
// a latch with unknown initial value; Init is a constraint at depth 0.
// Each action has a selector input, and the next state of a latch is the
// value the selected action gives it.
type Machine struct {
	sys    *System
	s      *logic.S
	latch  map[string]z.Lit
	sel    []z.Lit
	guard  []z.Lit
	havoc  map[string]z.Lit
	init   z.Lit
	axioms z.Lit
}

func Compile(sys *System) (*Machine, error) {
	s := logic.NewS()
	m := &Machine{
		sys:   sys,
		s:     s,
		latch: make(map[string]z.Lit, len(sys.Vars)),
		sel:   make([]z.Lit, len(sys.Actions)),
		guard: make([]z.Lit, len(sys.Actions)),
		havoc: make(map[string]z.Lit),
	}
	for _, v := range sys.Vars {
		m.latch[v] = s.Latch(z.LitNull)
	}

	var err error
	if m.init, err = smt.Build(&s.C, sys.Init, m.resolve); err != nil {
		return nil, errors.Wrap(err, "Build init")
	}
	if m.axioms, err = smt.Build(&s.C, sys.Axioms, m.resolve); err != nil {
		return nil, errors.Wrap(err, "Build axioms")
	}

	next := make(map[string]z.Lit, len(sys.Vars))
	for _, v := range sys.Vars {
		next[v] = m.latch[v]
	}
	// the first action is the outermost choice
	for i := len(sys.Actions) - 1; i >= 0; i-- {
		a := sys.Actions[i]
		m.sel[i] = s.Lit()
		if m.guard[i], err = smt.Build(&s.C, a.Requires, m.resolve); err != nil {
			return nil, errors.Wrapf(err, "Build %s guard", a.Name)
		}
		havocked := make(map[string]bool, len(a.Havoc))
		for _, v := range a.Havoc {
			havocked[v] = true
		}
		for _, v := range sys.Vars {
			val := m.latch[v]
			if f, ok := a.Assign[v]; ok {
				if val, err = smt.Build(&s.C, f, m.resolve); err != nil {
					return nil, errors.Wrapf(err, "Build %s.%s", a.Name, v)
				}
			} else if havocked[v] {
				val = s.Lit()
				m.havoc[sys.symbols.Fresh("havoc_"+a.Name+"_"+v+"_")] = val
			}
			next[v] = s.Choice(m.sel[i], val, next[v])
		}
	}
	for _, v := range sys.Vars {
		s.SetNext(m.latch[v], next[v])
	}
	return m, nil
}

func (m *Machine) resolve(name string) (z.Lit, error) {
	l, ok := m.latch[name]
	if !ok {
		return z.LitNull, &UnknownSymbolError{Name: name, Context: "circuit"}
	}
	return l, nil
}

func (m *Machine) System() *System {
	return m.sys
}

// Unroll starts a fresh unrolling. The machine must not change afterwards.
func (m *Machine) Unroll() *Unroller {
	return &Unroller{
		m:    m,
		roll: logic.NewRoll(m.s),
	}
}
