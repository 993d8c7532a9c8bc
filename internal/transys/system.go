// Package transys describes finite boolean transition systems and answers
// the symbolic queries the synthesizer needs: initial states, one-step
// images, bounded unrolling and explicit reachability.
package transys

import (
	"fmt"
	"sort"

	"invsynth/internal/formula"

	"github.com/pkg/errors"
)

// DuplicateSymbolError reports a name declared twice.
type DuplicateSymbolError string

func (e DuplicateSymbolError) Error() string {
	return fmt.Sprintf("duplicate symbol %q", string(e))
}

// UnknownSymbolError reports a formula mentioning an undeclared variable.
type UnknownSymbolError struct {
	Name    string
	Context string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q in %s", e.Name, e.Context)
}

// Action is one guarded parallel assignment. Variables neither assigned nor
// havocked keep their value.
type Action struct {
	Name     string
	Requires formula.Formula
	Assign   map[string]formula.Formula
	Havoc    []string
}

// System is a finite transition system over boolean variables. Step is the
// nondeterministic choice of one enabled action.
type System struct {
	Vars        []string
	Init        formula.Formula
	Axioms      formula.Formula
	Actions     []*Action
	Conjectures []formula.Formula
	Safety      formula.Formula

	symbols *Symbols
	index   map[string]int
}

// NewSystem validates the pieces of a system. Axioms hold in every state.
func NewSystem(vars []string, init, axioms formula.Formula, actions ...*Action) (*System, error) {
	sys := &System{
		Vars:    append([]string(nil), vars...),
		Init:    init,
		Axioms:  axioms,
		Actions: actions,
		Safety:  formula.True(),
		symbols: NewSymbols(),
		index:   make(map[string]int, len(vars)),
	}
	for i, v := range sys.Vars {
		if err := sys.symbols.Declare(v); err != nil {
			return nil, err
		}
		sys.index[v] = i
	}
	for _, a := range actions {
		if err := sys.symbols.Declare(a.Name); err != nil {
			return nil, err
		}
	}
	if len(actions) == 0 {
		return nil, errors.New("system has no actions")
	}
	if err := sys.checkAtoms(init, "init"); err != nil {
		return nil, err
	}
	if err := sys.checkAtoms(axioms, "axioms"); err != nil {
		return nil, err
	}
	for _, a := range actions {
		if err := sys.checkAction(a); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

// AddConjecture registers a candidate invariant.
func (sys *System) AddConjecture(f formula.Formula) error {
	if err := sys.checkAtoms(f, "conjecture"); err != nil {
		return err
	}
	sys.Conjectures = append(sys.Conjectures, f)
	return nil
}

// SetSafety sets the property an invariant must imply.
func (sys *System) SetSafety(f formula.Formula) error {
	if err := sys.checkAtoms(f, "safety"); err != nil {
		return err
	}
	sys.Safety = f
	return nil
}

func (sys *System) HasVar(name string) bool {
	_, ok := sys.index[name]
	return ok
}

// Symbols is the symbol table of the system.
func (sys *System) Symbols() *Symbols {
	return sys.symbols
}

// CheckFormula reports atoms of f that are not variables.
func (sys *System) CheckFormula(f formula.Formula) error {
	return sys.checkAtoms(f, "formula")
}

func (sys *System) checkAtoms(f formula.Formula, context string) error {
	for _, name := range formula.Atoms(f) {
		if !sys.HasVar(name) {
			return &UnknownSymbolError{Name: name, Context: context}
		}
	}
	return nil
}

func (sys *System) checkAction(a *Action) error {
	ctx := "action " + a.Name
	if err := sys.checkAtoms(a.Requires, ctx); err != nil {
		return err
	}
	for v, f := range a.Assign {
		if !sys.HasVar(v) {
			return &UnknownSymbolError{Name: v, Context: ctx}
		}
		if err := sys.checkAtoms(f, ctx); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(a.Havoc))
	for _, v := range a.Havoc {
		if !sys.HasVar(v) {
			return &UnknownSymbolError{Name: v, Context: ctx}
		}
		if _, ok := a.Assign[v]; ok || seen[v] {
			return errors.Errorf("%s: %q both assigned and havocked", ctx, v)
		}
		seen[v] = true
	}
	return nil
}

// Symbols hands out names that never collide with declared ones.
type Symbols struct {
	names map[string]bool
	next  int
}

func NewSymbols() *Symbols {
	return &Symbols{names: make(map[string]bool)}
}

func (s *Symbols) Declare(name string) error {
	if s.names[name] {
		return DuplicateSymbolError(name)
	}
	s.names[name] = true
	return nil
}

// Fresh declares and returns a new name starting with prefix.
func (s *Symbols) Fresh(prefix string) string {
	for {
		name := fmt.Sprintf("%s%d", prefix, s.next)
		s.next++
		if !s.names[name] {
			s.names[name] = true
			return name
		}
	}
}

// Names lists every declared name, sorted.
func (s *Symbols) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
