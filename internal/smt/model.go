package smt

import (
	"invsynth/internal/formula"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Model is a truth assignment to named atoms read back from a sat query.
type Model map[string]bool

// ReadModel reads the value of every name in env from the last sat Check.
func ReadModel(s *Solver, env *Env) (Model, error) {
	return ReadNamed(s, env.Names(), func(name string) z.Lit {
		m, _ := env.Lookup(name)
		return m
	})
}

// ReadNamed reads names through lit from the last sat Check.
func ReadNamed(s *Solver, names []string, lit func(string) z.Lit) (Model, error) {
	model := make(Model, len(names))
	for _, name := range names {
		v, err := s.Value(lit(name))
		if err != nil {
			return nil, errors.Wrapf(err, "Value %s", name)
		}
		model[name] = v
	}
	return model, nil
}

// Cube lists the model as sorted literals.
func (m Model) Cube() formula.Cube {
	lits := make([]formula.Literal, 0, len(m))
	for name, v := range m {
		lits = append(lits, formula.Literal{Atom: name, Negated: !v})
	}
	return formula.NewCube(lits...)
}

func (m Model) Eval(f formula.Formula) bool {
	return formula.Eval(f, func(name string) bool { return m[name] })
}
