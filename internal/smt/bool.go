package smt

import (
	"sort"

	"invsynth/internal/formula"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Resolver maps an atom name to its circuit literal.
type Resolver func(name string) (z.Lit, error)

type built struct {
	m   z.Lit
	err error
}

// Build translates f into a literal of c.
func Build(c *logic.C, f formula.Formula, resolve Resolver) (z.Lit, error) {
	firstErr := func(bs []built) ([]z.Lit, error) {
		ms := make([]z.Lit, len(bs))
		for i, b := range bs {
			if b.err != nil {
				return nil, b.err
			}
			ms[i] = b.m
		}
		return ms, nil
	}
	res := formula.Fold(f, formula.Folder[built]{
		Const: func(v bool) built {
			if v {
				return built{m: c.T}
			}
			return built{m: c.F}
		},
		Atom: func(name string) built {
			m, err := resolve(name)
			return built{m: m, err: err}
		},
		Not: func(b built) built {
			return built{m: b.m.Not(), err: b.err}
		},
		And: func(bs []built) built {
			ms, err := firstErr(bs)
			if err != nil {
				return built{err: err}
			}
			return built{m: c.Ands(ms...)}
		},
		Or: func(bs []built) built {
			ms, err := firstErr(bs)
			if err != nil {
				return built{err: err}
			}
			return built{m: c.Ors(ms...)}
		},
	})
	return res.m, res.err
}

// Env binds atom names to literals of one circuit. Unknown atoms are
// allocated as free literals on first use unless the Env is closed.
type Env struct {
	c      *logic.C
	lits   map[string]z.Lit
	closed bool
}

func NewEnv(c *logic.C) *Env {
	return &Env{
		c:    c,
		lits: make(map[string]z.Lit),
	}
}

// Close makes later lookups of unbound names fail.
func (e *Env) Close() {
	e.closed = true
}

func (e *Env) Bind(name string, m z.Lit) {
	e.lits[name] = m
}

func (e *Env) Lookup(name string) (z.Lit, bool) {
	m, ok := e.lits[name]
	return m, ok
}

func (e *Env) Resolve(name string) (z.Lit, error) {
	if m, ok := e.lits[name]; ok {
		return m, nil
	}
	if e.closed {
		return z.LitNull, errors.Errorf("unbound atom %q", name)
	}
	m := e.c.Lit()
	e.lits[name] = m
	return m, nil
}

// Names returns the bound names, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.lits))
	for n := range e.lits {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (e *Env) Lit(f formula.Formula) (z.Lit, error) {
	return Build(e.c, f, e.Resolve)
}
