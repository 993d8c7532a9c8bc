package abstract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"invsynth/internal/formula"
	"invsynth/internal/lattice"
	"invsynth/internal/metrics"
	"invsynth/internal/mus"
	"invsynth/internal/smt"
	"invsynth/internal/trace"
	"invsynth/internal/transys"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrBudgetExceeded reports that a configured sampling or iteration budget
// ran out before the computation finished.
var ErrBudgetExceeded = errors.New("budget exceeded")

// TransitionOracle is the symbolic view of the transition system the
// transformer needs. *transys.Unroller implements it.
type TransitionOracle interface {
	Circuit() *logic.C
	Initial(steps int) *transys.State
	FromFormula(f formula.Formula) (*transys.State, error)
	Step(st *transys.State) *transys.State
	Lit(f formula.Formula, depth int) (z.Lit, error)
}

type Config struct {
	// PostBound caps the post sets sampled per clause.
	PostBound int
	// InitSteps extends the initial region by this many steps.
	InitSteps int
	// MaxSamples caps lattice samples per clause; 0 means unlimited.
	MaxSamples int
	// Workers is the number of clauses abstracted concurrently.
	Workers int
	// DumpDir receives every context in DIMACS when set.
	DumpDir string

	SolverOptions []smt.Option
}

// Transformer computes best abstract values of clause families.
type Transformer struct {
	oracle TransitionOracle
	cfg    Config
	tracer trace.Tracer
	dumps  int
}

func NewTransformer(oracle TransitionOracle, cfg Config, tracer trace.Tracer) *Transformer {
	if tracer == nil {
		tracer = trace.DefaultTracer{}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Transformer{
		oracle: oracle,
		cfg:    cfg,
		tracer: tracer,
	}
}

// AlphaInit abstracts the initial region.
func (t *Transformer) AlphaInit(ctx context.Context, family Family) (Frame, error) {
	return t.alpha(ctx, "init", family, t.oracle.Initial(t.cfg.InitSteps))
}

// AlphaStep abstracts the one-step image of the states described by prev.
func (t *Transformer) AlphaStep(ctx context.Context, family Family, prev Frame) (Frame, error) {
	pre, err := t.oracle.FromFormula(prev.Formula(family))
	if err != nil {
		return nil, errors.Wrap(err, "FromFormula")
	}
	return t.alpha(ctx, "step", family, t.oracle.Step(pre))
}

// query holds the guarded context shared by every clause of one frame.
// Assuming the guards of all other clauses switches their disjuncts off;
// assuming the guard of literal j of the remaining clause forces the
// literal false in the context.
type query struct {
	solver       *smt.Solver
	clauseGuards []z.Lit
	litGuards    [][]z.Lit
}

func (t *Transformer) build(family Family, st *transys.State) (*query, error) {
	c := t.oracle.Circuit()
	q := &query{
		clauseGuards: make([]z.Lit, len(family)),
		litGuards:    make([][]z.Lit, len(family)),
	}
	disjuncts := make([]z.Lit, len(family))
	for i, cl := range family {
		q.clauseGuards[i] = c.Lit()
		q.litGuards[i] = make([]z.Lit, len(cl))
		parts := []z.Lit{q.clauseGuards[i].Not()}
		for j, l := range cl {
			q.litGuards[i][j] = c.Lit()
			m, err := t.oracle.Lit(l.Negate().Formula(), st.Depth)
			if err != nil {
				return nil, errors.Wrapf(err, "Lit %s", l)
			}
			parts = append(parts, c.Implies(q.litGuards[i][j], m))
		}
		disjuncts[i] = c.Ands(parts...)
	}
	q.solver = smt.NewSolver(c, t.cfg.SolverOptions...)
	q.solver.Assert(st.Constraints()...)
	q.solver.Assert(c.Ors(disjuncts...))
	return q, nil
}

func (t *Transformer) alpha(ctx context.Context, phase string, family Family, st *transys.State) (Frame, error) {
	q, err := t.build(family, st)
	if err != nil {
		return nil, err
	}
	if err := t.dump(phase, q.solver); err != nil {
		return nil, err
	}
	metrics.CountFrame(phase)

	frame := make(Frame, len(family))
	if t.cfg.Workers == 1 || len(family) < 2 {
		for i := range family {
			if frame[i], err = t.clause(ctx, phase, q, q.solver, family, i); err != nil {
				return nil, err
			}
		}
		return frame, nil
	}

	// every worker gets its own copy; the circuit is no longer extended
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.Workers)
	for i := range family {
		i, s := i, q.solver.Copy()
		g.Go(func() error {
			v, err := t.clause(gctx, phase, q, s, family, i)
			if err != nil {
				return err
			}
			frame[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frame, nil
}

func (t *Transformer) clause(ctx context.Context, phase string, q *query, s *smt.Solver, family Family, ci int) (Value, error) {
	cl := family[ci]
	n := len(cl)
	guards := q.litGuards[ci]
	others := make([]z.Lit, 0, len(family)-1)
	for i, g := range q.clauseGuards {
		if i != ci {
			others = append(others, g)
		}
	}
	check := func(idx []int) (smt.Status, error) {
		assumptions := make([]z.Lit, 0, len(others)+len(idx))
		assumptions = append(assumptions, others...)
		for _, j := range idx {
			assumptions = append(assumptions, guards[j])
		}
		return s.Check(assumptions...)
	}

	idx := make(map[z.Lit]int, n)
	for j, g := range guards {
		idx[g] = j
	}

	t.tracer.Trace(trace.Event{Kind: trace.ClauseStart, Phase: phase, Clause: ci, Detail: cl.String()})
	result := Top()
	lm := lattice.New(n)
	for samples := 0; ; samples++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.cfg.MaxSamples > 0 && samples >= t.cfg.MaxSamples {
			return nil, errors.Wrapf(ErrBudgetExceeded, "clause %d: %d samples", ci, samples)
		}
		// the transformer never uses pre flags
		p, err := lm.Sample(0, t.cfg.PostBound)
		if err != nil {
			return nil, errors.Wrap(err, "Sample")
		}
		if p == nil {
			break
		}
		post := p.PostSet()
		t.tracer.Trace(trace.Event{Kind: trace.Sample, Phase: phase, Clause: ci, Post: post})

		st, err := check(post)
		if err != nil {
			return nil, errors.Wrap(err, "Check")
		}
		if st == smt.StatusSat {
			current := append([]int(nil), post...)
			in := make([]bool, n)
			for _, j := range current {
				in[j] = true
			}
			for j := 0; j < n; j++ {
				if in[j] {
					continue
				}
				grown := append(append([]int(nil), current...), j)
				st, err := check(grown)
				if err != nil {
					return nil, errors.Wrap(err, "Check")
				}
				if st == smt.StatusSat {
					current = grown
					in[j] = true
				}
			}
			t.tracer.Trace(trace.Event{Kind: trace.NotImplied, Phase: phase, Clause: ci, Post: current})
			lm.BlockNonImplication(nil, current)
			continue
		}

		args := make([]z.Lit, len(post))
		for k, j := range post {
			args[k] = guards[j]
		}
		core, err := mus.Extract(s, args, others)
		if err != nil {
			return nil, errors.Wrap(err, "Extract")
		}
		gen := make([]int, len(core))
		for k, m := range core {
			gen[k] = idx[m]
		}
		g := NewGenerator(gen...)
		t.tracer.Trace(trace.Event{Kind: trace.Generator, Phase: phase, Clause: ci, Post: g, Detail: cl.Select(g).String()})
		lm.BlockImplication(nil, g)
		result = result.Add(g)
	}
	return result, nil
}

func (t *Transformer) dump(phase string, s *smt.Solver) error {
	if t.cfg.DumpDir == "" {
		return nil
	}
	t.dumps++
	path := filepath.Join(t.cfg.DumpDir, fmt.Sprintf("%03d-%s.cnf", t.dumps, phase))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Create")
	}
	defer f.Close()
	return errors.Wrapf(s.WriteDimacs(f), "WriteDimacs %s", path)
}
