package synth

import (
	"context"
	"sort"

	"invsynth/internal/formula"
	"invsynth/internal/lattice"
	"invsynth/internal/smt"
	"invsynth/internal/trace"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// MaxFacts is the largest cube Generalize accepts.
const MaxFacts = 100

var ErrTooManyFacts = errors.New("too many facts")

// Generalize looks for a sub-cube of facts whose negation holds in every
// state reached within BMCBound steps and is inductive relative to the
// conjectures of the system. The conjectures found are sorted by size; an
// empty result means none was found.
func (s *Synthesizer) Generalize(ctx context.Context, facts formula.Cube) ([]formula.Clause, error) {
	n := len(facts)
	if n > MaxFacts {
		return nil, errors.Wrapf(ErrTooManyFacts, "%d > %d", n, MaxFacts)
	}

	// alits[i] forces fact i; guards[i] drops fact i from the pre conjecture
	alits := s.guards(n)
	guards := s.guards(n)

	reach, err := s.reachOracle(facts, alits)
	if err != nil {
		return nil, err
	}
	step, err := s.stepOracle(facts, alits, guards)
	if err != nil {
		return nil, err
	}

	reachable := func(pre []int) (bool, error) {
		res, err := reach.Check(selectLits(alits, pre)...)
		return res == smt.StatusSat, errors.Wrap(err, "Check")
	}
	escapes := func(pre, post []int) (bool, error) {
		in := toSet(pre)
		var as []z.Lit
		for i := 0; i < n; i++ {
			if !in[i] {
				as = append(as, guards[i])
			}
		}
		as = append(as, selectLits(alits, post)...)
		res, err := step.Check(as...)
		return res == smt.StatusSat, errors.Wrap(err, "Check")
	}

	var found []formula.Clause
	lm := lattice.New(n)
	for preAtMost := 1; preAtMost <= s.cfg.MaxPreSize; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := lm.Sample(preAtMost, lattice.Unbounded)
		if err != nil {
			return nil, errors.Wrap(err, "Sample")
		}
		if p == nil {
			preAtMost++
			continue
		}
		pre, post := p.PreSet(), p.PostSet()
		s.tracer.Trace(trace.Event{Kind: trace.Sample, Phase: "generalize", Pre: pre, Post: post})

		// the pre conjecture fails in a reachable state: so does every
		// stronger one
		ok, err := reachable(pre)
		if err != nil {
			return nil, err
		}
		if ok {
			for i := 0; i < n; i++ {
				if contains(pre, i) {
					continue
				}
				if ok, err = reachable(with(pre, i)); err != nil {
					return nil, err
				} else if ok {
					pre = with(pre, i)
				}
			}
			lm.BlockPreDown(pre)
			continue
		}

		ok, err = escapes(pre, post)
		if err != nil {
			return nil, err
		}
		if ok {
			for i := 0; i < n; i++ {
				if contains(post, i) {
					continue
				}
				if ok, err = escapes(pre, with(post, i)); err != nil {
					return nil, err
				} else if ok {
					post = with(post, i)
				}
			}
			for i := 0; i < n; i++ {
				if !contains(pre, i) {
					continue
				}
				if ok, err = escapes(without(pre, i), post); err != nil {
					return nil, err
				} else if ok {
					pre = without(pre, i)
				}
			}
			s.tracer.Trace(trace.Event{Kind: trace.NotImplied, Phase: "generalize", Pre: pre, Post: post})
			lm.BlockNonImplication(pre, post)
			continue
		}

		// pre implies post: weaken post, then pre
		for i := 0; i < n; i++ {
			if !contains(post, i) {
				continue
			}
			if ok, err = escapes(pre, without(post, i)); err != nil {
				return nil, err
			} else if !ok {
				post = without(post, i)
			}
		}
		for i := 0; i < n; i++ {
			if contains(pre, i) {
				continue
			}
			if ok, err = escapes(with(pre, i), post); err != nil {
				return nil, err
			} else if !ok {
				pre = with(pre, i)
			}
		}
		inductive := subset(post, pre)
		if inductive {
			// it must also hold in the reachable region
			reached, err := reachable(post)
			if err != nil {
				return nil, err
			}
			inductive = !reached
		}
		if inductive {
			c := selectLiterals(facts, post).Negate()
			s.tracer.Trace(trace.Event{Kind: trace.Conjecture, Phase: "generalize", Pre: pre, Post: post, Detail: c.String()})
			found = append(found, c)
			lm.BlockImplication(all(n), post)
			break
		}
		lm.BlockImplication(pre, post)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return len(found[i]) < len(found[j])
	})
	return found, nil
}

// stepOracle holds one step from a state satisfying the conjectures and the
// negation of the guarded facts, with fact i forced at the post state by
// alits[i].
func (s *Synthesizer) stepOracle(facts formula.Cube, alits, guards []z.Lit) (*smt.Solver, error) {
	c := s.u.Circuit()
	st, err := s.u.FromFormula(formula.And(s.sys.Conjectures...))
	if err != nil {
		return nil, errors.Wrap(err, "FromFormula")
	}
	guarded := make([]z.Lit, len(facts))
	for i, f := range facts {
		m, err := s.u.Lit(f.Formula(), st.Depth)
		if err != nil {
			return nil, errors.Wrapf(err, "Lit %s", f)
		}
		guarded[i] = c.Or(guards[i], m)
	}
	st.Append(c.Ands(guarded...).Not())
	next := s.u.Step(st)

	solver := s.u.Solver(next, s.cfg.solverOptions()...)
	for i, f := range facts {
		m, err := s.u.Lit(f.Formula(), next.Depth)
		if err != nil {
			return nil, errors.Wrapf(err, "Lit %s", f)
		}
		solver.AddClause(alits[i].Not(), m)
	}
	return solver, nil
}

func selectLits(ms []z.Lit, idx []int) []z.Lit {
	out := make([]z.Lit, len(idx))
	for k, i := range idx {
		out[k] = ms[i]
	}
	return out
}

func selectLiterals(facts formula.Cube, idx []int) formula.Cube {
	lits := make([]formula.Literal, len(idx))
	for k, i := range idx {
		lits[k] = facts[i]
	}
	return formula.NewCube(lits...)
}

func toSet(idx []int) map[int]bool {
	in := make(map[int]bool, len(idx))
	for _, i := range idx {
		in[i] = true
	}
	return in
}

func contains(idx []int, i int) bool {
	for _, j := range idx {
		if j == i {
			return true
		}
	}
	return false
}

func with(idx []int, i int) []int {
	out := append(append([]int(nil), idx...), i)
	sort.Ints(out)
	return out
}

func without(idx []int, i int) []int {
	out := make([]int, 0, len(idx))
	for _, j := range idx {
		if j != i {
			out = append(out, j)
		}
	}
	return out
}

func subset(a, b []int) bool {
	in := toSet(b)
	for _, i := range a {
		if !in[i] {
			return false
		}
	}
	return true
}

func all(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
