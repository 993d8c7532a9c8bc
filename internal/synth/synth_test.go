package synth

import (
	"context"
	"fmt"
	"testing"

	"invsynth/internal/abstract"
	"invsynth/internal/formula"
	"invsynth/internal/trace"
	"invsynth/internal/transys"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const growProblem = `
vars: [p, q]
init: p & !q
actions:
  - name: grow
    assign:
      q: q | p
conjectures: ["p | q"]
safety: p | q
`

const flipProblem = `
vars: [p, q]
init: p & !q
actions:
  - name: flip
    assign:
      p: "!q"
conjectures: [p]
`

const refutedProblem = `
vars: [p]
init: "!p"
actions:
  - name: skip
conjectures: [p]
`

func newSynth(t *testing.T, src string, opts ...Option) *Synthesizer {
	sys, err := transys.Parse([]byte(src))
	require.NoError(t, err)
	s, err := New(sys, opts...)
	require.NoError(t, err)
	return s
}

func TestRunConverges(t *testing.T) {
	rec := &trace.Recorder{}
	s := newSynth(t, growProblem, WithTracer(rec))

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, -1, res.Refuted)
	assert.Equal(t, 0, res.Refinements)
	assert.Len(t, res.Family, 1)
	assert.Equal(t, "p", res.Invariant.String())
	assert.Len(t, res.History[1], 2)
	assert.Equal(t, 1, rec.Count(trace.Fixpoint))

	// the invariant implies the candidate and is inductive
	for _, p := range []bool{false, true} {
		for _, q := range []bool{false, true} {
			val := func(name string) bool { return map[string]bool{"p": p, "q": q}[name] }
			if formula.Eval(res.Invariant, val) {
				assert.True(t, formula.Eval(formula.MustParse("p | q"), val))
			}
		}
	}
	cex, err := s.CheckInductive(context.Background(), res.Invariant)
	require.NoError(t, err)
	assert.Nil(t, cex)
}

func TestRunRefines(t *testing.T) {
	rec := &trace.Recorder{}
	s := newSynth(t, flipProblem, WithTracer(rec))

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Refinements)
	require.Len(t, res.Family, 2)
	assert.Equal(t, "!p | !q", res.Family[1].String())
	assert.Equal(t, "(p & !q)", res.Invariant.String())
	assert.Len(t, res.History[1], 2)
	assert.Len(t, res.History[2], 2)
	assert.True(t, res.History[1][1][0].IsTop())
	assert.Equal(t, 1, rec.Count(trace.Refinement))

	cex, err := s.CheckInductive(context.Background(), res.Invariant)
	require.NoError(t, err)
	assert.Nil(t, cex)
}

func TestStepModel(t *testing.T) {
	s := newSynth(t, flipProblem)
	v := formula.NewClause(formula.Pos("p"))

	cube, err := s.stepModel(formula.MustParse("p"), v)
	require.NoError(t, err)
	assert.Equal(t, "p & q", cube.String())

	// the refined clause excludes the witness
	m := make(map[string]bool)
	for _, l := range cube {
		m[l.Atom] = !l.Negated
	}
	val := func(name string) bool { return m[name] }
	assert.False(t, formula.Eval(cube.Negate().Formula(), val))

	_, err = s.stepModel(formula.MustParse("p & !q"), v)
	assert.True(t, errors.Is(err, ErrNoWitness), "%v", err)
}

func TestRunRefuted(t *testing.T) {
	s := newSynth(t, refutedProblem)
	family, err := s.InitialFamily()
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Refuted)
	assert.Equal(t, family, res.Family)
	assert.Equal(t, 0, res.Refinements)
}

func TestRunBudgets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSamples = 1
	s := newSynth(t, growProblem, WithConfig(cfg))
	_, err := s.Run(context.Background())
	assert.True(t, errors.Is(err, ErrBudgetExceeded), "%v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newSynth(t, growProblem).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsNonClause(t *testing.T) {
	src := `
vars: [p, q]
actions: [{name: skip}]
conjectures: ["p & (q | !p)"]
`
	_, err := newSynth(t, src).Run(context.Background())
	assert.Error(t, err)
}

func TestInitialFamilyDedup(t *testing.T) {
	src := `
vars: [p, q]
actions: [{name: skip}]
conjectures: ["p | q", "q | p", "!(!p & !q)", "!p"]
`
	family, err := newSynth(t, src).InitialFamily()
	require.NoError(t, err)
	assert.Equal(t, abstract.Family{
		formula.NewClause(formula.Pos("p"), formula.Pos("q")),
		formula.NewClause(formula.Neg("p")),
	}, family)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.BMCBound = -1
	assert.Error(t, cfg.Validate())

	sys, err := transys.Parse([]byte(growProblem))
	require.NoError(t, err)
	_, err = New(sys, WithConfig(cfg))
	assert.Error(t, err)
}

func TestCheckInductive(t *testing.T) {
	s := newSynth(t, growProblem)
	ctx := context.Background()

	testCases := []struct {
		conj   string
		check  string
		action string
	}{
		{conj: "p"},
		{conj: "p | q"},
		{conj: "q", check: "initiation"},
		{conj: "!q", check: "consecution", action: "grow"},
	}
	for _, tc := range testCases {
		t.Run(tc.conj, func(t *testing.T) {
			cex, err := s.CheckInductive(ctx, formula.MustParse(tc.conj))
			require.NoError(t, err)
			if tc.check == "" {
				assert.Nil(t, cex)
				return
			}
			require.NotNil(t, cex)
			assert.Equal(t, tc.check, cex.Check)
			assert.Equal(t, tc.action, cex.Action)
			conj := formula.MustParse(tc.conj)
			if cex.Post == nil {
				assert.False(t, cex.Pre.Eval(conj))
				return
			}
			assert.True(t, cex.Pre.Eval(conj))
			assert.False(t, cex.Post.Eval(conj))
		})
	}

	_, err := s.CheckInductive(ctx, formula.MustParse("r"))
	var unk *transys.UnknownSymbolError
	assert.True(t, errors.As(err, &unk), "%v", err)
}

func TestCheckSufficient(t *testing.T) {
	s := newSynth(t, growProblem)
	ctx := context.Background()

	cex, err := s.CheckSufficient(ctx, formula.MustParse("p"), s.System().Safety)
	require.NoError(t, err)
	assert.Nil(t, cex)

	cex, err = s.CheckSufficient(ctx, formula.MustParse("q"), formula.MustParse("p"))
	require.NoError(t, err)
	require.NotNil(t, cex)
	assert.Equal(t, "sufficiency", cex.Check)
	assert.True(t, cex.Pre["q"])
	assert.False(t, cex.Pre["p"])
}

func TestMinimizeConjecture(t *testing.T) {
	s := newSynth(t, growProblem)
	ctx := context.Background()

	minimized, tr, err := s.MinimizeConjecture(ctx, formula.NewCube(formula.Neg("p"), formula.Neg("q")))
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.Equal(t, "!p", minimized.String())

	minimized, tr, err = s.MinimizeConjecture(ctx, formula.NewCube(formula.Pos("p"), formula.Pos("q")))
	require.NoError(t, err)
	assert.Nil(t, minimized)
	require.NotNil(t, tr)
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, "grow", tr.Actions[0])
}

func TestGeneralize(t *testing.T) {
	rec := &trace.Recorder{}
	s := newSynth(t, growProblem, WithTracer(rec))

	found, err := s.Generalize(context.Background(), formula.NewCube(formula.Neg("p"), formula.Neg("q")))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p", found[0].String())
	assert.Equal(t, 1, rec.Count(trace.Conjecture))

	// p holds in every reachable state, so no generalization of it exists
	found, err = s.Generalize(context.Background(), formula.NewCube(formula.Pos("p")))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGeneralizeTooManyFacts(t *testing.T) {
	lits := make([]formula.Literal, MaxFacts+1)
	for i := range lits {
		lits[i] = formula.Pos(fmt.Sprintf("x%d", i))
	}
	_, err := newSynth(t, growProblem).Generalize(context.Background(), formula.NewCube(lits...))
	assert.True(t, errors.Is(err, ErrTooManyFacts), "%v", err)
}
