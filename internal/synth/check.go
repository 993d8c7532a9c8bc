package synth

import (
	"context"
	"fmt"

	"invsynth/internal/formula"
	"invsynth/internal/mus"
	"invsynth/internal/smt"
	"invsynth/internal/transys"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Counterexample witnesses a failed check. Post and Action are empty when
// the failure is in a single state.
type Counterexample struct {
	Check  string
	Pre    smt.Model
	Action string
	Post   smt.Model
}

func (c *Counterexample) String() string {
	if c.Post == nil {
		return fmt.Sprintf("%s: %s", c.Check, c.Pre.Cube())
	}
	return fmt.Sprintf("%s: %s --%s--> %s", c.Check, c.Pre.Cube(), c.Action, c.Post.Cube())
}

// CheckInductive checks that conj holds initially and is preserved by every
// step. It returns nil when it is inductive.
func (s *Synthesizer) CheckInductive(ctx context.Context, conj formula.Formula) (*Counterexample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bad, err := s.u.Lit(conj, 0)
	if err != nil {
		return nil, errors.Wrap(err, "Lit")
	}
	solver := s.u.Solver(s.u.Initial(0), s.cfg.solverOptions()...)
	res, err := solver.Check(bad.Not())
	if err != nil {
		return nil, errors.Wrap(err, "Check")
	}
	if res == smt.StatusSat {
		pre, err := s.u.ReadState(solver, 0)
		if err != nil {
			return nil, errors.Wrap(err, "ReadState")
		}
		return &Counterexample{Check: "initiation", Pre: pre}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := s.u.FromFormula(conj)
	if err != nil {
		return nil, errors.Wrap(err, "FromFormula")
	}
	next := s.u.Step(st)
	if bad, err = s.u.Lit(conj, next.Depth); err != nil {
		return nil, errors.Wrap(err, "Lit")
	}
	solver = s.u.Solver(next, s.cfg.solverOptions()...)
	if res, err = solver.Check(bad.Not()); err != nil {
		return nil, errors.Wrap(err, "Check")
	}
	if res != smt.StatusSat {
		return nil, nil
	}
	t, err := s.u.ReadTrace(solver, next.Depth)
	if err != nil {
		return nil, errors.Wrap(err, "ReadTrace")
	}
	return &Counterexample{
		Check:  "consecution",
		Pre:    t.States[0],
		Action: t.Actions[0],
		Post:   t.States[1],
	}, nil
}

// CheckSufficient checks that every state satisfying inv and the axioms
// satisfies safety. It returns nil when it does.
func (s *Synthesizer) CheckSufficient(ctx context.Context, inv, safety formula.Formula) (*Counterexample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := s.u.FromFormula(inv)
	if err != nil {
		return nil, errors.Wrap(err, "FromFormula")
	}
	good, err := s.u.Lit(safety, 0)
	if err != nil {
		return nil, errors.Wrap(err, "Lit")
	}
	solver := s.u.Solver(st, s.cfg.solverOptions()...)
	res, err := solver.Check(good.Not())
	if err != nil {
		return nil, errors.Wrap(err, "Check")
	}
	if res != smt.StatusSat {
		return nil, nil
	}
	pre, err := s.u.ReadState(solver, 0)
	if err != nil {
		return nil, errors.Wrap(err, "ReadState")
	}
	return &Counterexample{Check: "sufficiency", Pre: pre}, nil
}

// BMC searches the first BMCBound steps for a state violating conj.
func (s *Synthesizer) BMC(ctx context.Context, conj formula.Formula) (*transys.Trace, error) {
	return s.u.BMC(ctx, conj, s.cfg.BMCBound, s.cfg.solverOptions()...)
}

// MinimizeConjecture shrinks a cube of facts that no run of at most
// BMCBound steps reaches to a minimal sub-cube that is still unreached. If
// a run does reach the cube it is returned instead.
func (s *Synthesizer) MinimizeConjecture(ctx context.Context, facts formula.Cube) (formula.Cube, *transys.Trace, error) {
	t, err := s.BMC(ctx, facts.Negate().Formula())
	if err != nil {
		return nil, nil, errors.Wrap(err, "BMC")
	}
	if t != nil {
		return nil, t, nil
	}

	guards := s.guards(len(facts))
	reach, err := s.reachOracle(facts, guards)
	if err != nil {
		return nil, nil, err
	}
	res, err := reach.Check(guards...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Check")
	}
	if res != smt.StatusUnsat {
		return nil, nil, errors.Errorf("facts %s reachable after bounded search found none", facts)
	}
	core, err := mus.Extract(reach, guards, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Extract")
	}
	idx := make(map[z.Lit]int, len(guards))
	for i, g := range guards {
		idx[g] = i
	}
	lits := make([]formula.Literal, len(core))
	for k, g := range core {
		lits[k] = facts[idx[g]]
	}
	return formula.NewCube(lits...), nil, nil
}

func (s *Synthesizer) guards(n int) []z.Lit {
	c := s.u.Circuit()
	ms := make([]z.Lit, n)
	for i := range ms {
		ms[i] = c.Lit()
	}
	return ms
}

// reachOracle holds one solver per depth up to BMCBound; each has fact i
// forced by guards[i] at its last frame. A query is satisfiable when it is
// at some depth, and its core is the union of the per-depth cores.
type reachOracle struct {
	solvers []*smt.Solver
	last    smt.Status
	core    []z.Lit
}

func (s *Synthesizer) reachOracle(facts formula.Cube, guards []z.Lit) (*reachOracle, error) {
	r := &reachOracle{}
	st := s.u.Initial(0)
	for d := 0; d <= s.cfg.BMCBound; d++ {
		solver := s.u.Solver(st, s.cfg.solverOptions()...)
		for i, f := range facts {
			m, err := s.u.Lit(f.Formula(), st.Depth)
			if err != nil {
				return nil, errors.Wrapf(err, "Lit %s", f)
			}
			solver.AddClause(guards[i].Not(), m)
		}
		r.solvers = append(r.solvers, solver)
		st = s.u.Step(st)
	}
	return r, nil
}

func (r *reachOracle) Check(assumptions ...z.Lit) (smt.Status, error) {
	r.last = smt.StatusUnknown
	r.core = r.core[:0]
	seen := make(map[z.Lit]bool)
	for _, solver := range r.solvers {
		res, err := solver.Check(assumptions...)
		if err != nil {
			return res, err
		}
		if res == smt.StatusSat {
			r.last = res
			return res, nil
		}
		core, err := solver.Core()
		if err != nil {
			return smt.StatusUnknown, errors.Wrap(err, "Core")
		}
		for _, m := range core {
			if !seen[m] {
				seen[m] = true
				r.core = append(r.core, m)
			}
		}
	}
	r.last = smt.StatusUnsat
	return r.last, nil
}

func (r *reachOracle) Core() ([]z.Lit, error) {
	if r.last != smt.StatusUnsat {
		return nil, smt.ErrNoCore
	}
	return append([]z.Lit(nil), r.core...), nil
}
