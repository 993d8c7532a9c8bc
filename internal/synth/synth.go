// Package synth searches for inductive invariants by counterexample guided
// abstraction refinement over a family of candidate clauses.
package synth

import (
	"context"
	"fmt"

	"invsynth/internal/abstract"
	"invsynth/internal/formula"
	"invsynth/internal/metrics"
	"invsynth/internal/smt"
	"invsynth/internal/trace"
	"invsynth/internal/transys"

	"github.com/pkg/errors"
)

var (
	// ErrNoWitness means a frame went to top but no concrete step explains
	// it. It contradicts the soundness of the transformer and is fatal.
	ErrNoWitness = errors.New("no counterexample witness for top clause")

	ErrBudgetExceeded = abstract.ErrBudgetExceeded
)

// Result is the outcome of Run. When Success is false the candidate family
// was refuted at the initial states and Family names the culprits.
type Result struct {
	Success   bool
	Invariant formula.Formula
	// Refuted is the index in Family of the clause refuted at the initial
	// states, or -1.
	Refuted int

	Family abstract.Family
	// History maps each family size to the frames computed for it.
	History     map[int][]abstract.Frame
	Refinements int
}

type Synthesizer struct {
	sys    *transys.System
	u      *transys.Unroller
	cfg    Config
	tracer trace.Tracer
}

func New(sys *transys.System, opts ...Option) (*Synthesizer, error) {
	o := defaultOptions()
	o.apply(opts)
	if err := o.config.Validate(); err != nil {
		return nil, errors.Wrap(err, "Validate")
	}
	m, err := transys.Compile(sys)
	if err != nil {
		return nil, errors.Wrap(err, "Compile")
	}
	return &Synthesizer{
		sys:    sys,
		u:      m.Unroll(),
		cfg:    o.config,
		tracer: o.tracer,
	}, nil
}

func (s *Synthesizer) System() *transys.System {
	return s.sys
}

func (s *Synthesizer) Unroller() *transys.Unroller {
	return s.u
}

// InitialFamily decomposes the conjectures of the system into clauses,
// dropping duplicates.
func (s *Synthesizer) InitialFamily() (abstract.Family, error) {
	var family abstract.Family
	for _, f := range s.sys.Conjectures {
		c, err := formula.ToClause(f)
		if err != nil {
			return nil, errors.Wrapf(err, "conjecture %s", f)
		}
		if !family.Contains(c) {
			family = append(family, c)
		}
	}
	return family, nil
}

func (s *Synthesizer) transformer() *abstract.Transformer {
	return abstract.NewTransformer(s.u, abstract.Config{
		PostBound:     s.cfg.PostBound,
		InitSteps:     s.cfg.InitSteps,
		MaxSamples:    s.cfg.MaxSamples,
		Workers:       s.cfg.Workers,
		DumpDir:       s.cfg.DumpDir,
		SolverOptions: s.cfg.solverOptions(),
	}, s.tracer)
}

// Run looks for an inductive invariant built from the conjectures of the
// system, refining the family with the negation of every counterexample
// pre-state it meets.
func (s *Synthesizer) Run(ctx context.Context) (*Result, error) {
	family, err := s.InitialFamily()
	if err != nil {
		return nil, err
	}
	return s.RunFamily(ctx, family)
}

// RunFamily is Run over an explicit candidate family.
func (s *Synthesizer) RunFamily(ctx context.Context, family abstract.Family) (*Result, error) {
	res := &Result{
		Refuted: -1,
		History: make(map[int][]abstract.Frame),
	}
	tr := s.transformer()

outer:
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		metrics.SetFamilySize(len(family))

		f0, err := tr.AlphaInit(ctx, family)
		if err != nil {
			return nil, errors.Wrap(err, "AlphaInit")
		}
		frames := []abstract.Frame{f0}
		res.History[len(family)] = frames
		s.tracer.Trace(trace.Event{Kind: trace.Frame, Phase: "init", Detail: fmt.Sprint(f0)})

		if v := f0.TopIndex(); v >= 0 {
			s.tracer.Trace(trace.Event{Kind: trace.Refuted, Clause: v, Detail: family[v].String()})
			res.Family = family
			res.Refuted = v
			return res, nil
		}

		prev, cur := abstract.BottomFrame(len(family)), f0
		for i := 0; !cur.Le(prev); {
			if s.cfg.MaxFrames > 0 && i >= s.cfg.MaxFrames {
				return nil, errors.Wrapf(ErrBudgetExceeded, "%d frames", i)
			}
			i++
			next, err := tr.AlphaStep(ctx, family, cur)
			if err != nil {
				return nil, errors.Wrapf(err, "AlphaStep %d", i)
			}
			frames = append(frames, next)
			res.History[len(family)] = frames
			s.tracer.Trace(trace.Event{Kind: trace.Frame, Phase: "step", Frame: i, Detail: fmt.Sprint(next)})

			if v := next.TopIndex(); v >= 0 {
				cube, err := s.stepModel(cur.Formula(family), family[v])
				if err != nil {
					return nil, errors.Wrapf(err, "frame %d clause %d", i, v)
				}
				if s.cfg.MaxRefinements > 0 && res.Refinements >= s.cfg.MaxRefinements {
					return nil, errors.Wrapf(ErrBudgetExceeded, "%d refinements", res.Refinements)
				}
				clause := cube.Negate()
				family = append(family[:len(family):len(family)], clause)
				res.Refinements++
				metrics.CountRefinement()
				s.tracer.Trace(trace.Event{Kind: trace.Refinement, Frame: i, Clause: v, Detail: clause.String()})
				continue outer
			}
			prev, cur = cur, next
		}

		res.Success = true
		res.Family = family
		res.Invariant = prev.Formula(family)
		s.tracer.Trace(trace.Event{Kind: trace.Fixpoint, Frame: len(frames) - 1, Detail: res.Invariant.String()})
		return res, nil
	}
}

// stepModel returns a state satisfying pre with a successor violating v.
func (s *Synthesizer) stepModel(pre formula.Formula, v formula.Clause) (formula.Cube, error) {
	st, err := s.u.FromFormula(pre)
	if err != nil {
		return nil, errors.Wrap(err, "FromFormula")
	}
	next := s.u.Step(st)
	post, err := s.u.Lit(v.Formula(), next.Depth)
	if err != nil {
		return nil, errors.Wrap(err, "Lit")
	}
	solver := s.u.Solver(next, s.cfg.solverOptions()...)
	res, err := solver.Check(post.Not())
	if err != nil {
		return nil, errors.Wrap(err, "Check")
	}
	if res != smt.StatusSat {
		return nil, errors.Wrapf(ErrNoWitness, "clause %s", v)
	}
	model, err := s.u.ReadState(solver, st.Depth)
	if err != nil {
		return nil, errors.Wrap(err, "ReadState")
	}
	return model.Cube(), nil
}
