package transys

import (
	"context"
	"testing"

	"invsynth/internal/formula"
	"invsynth/internal/smt"

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
conjectures:
  - p | q
safety: q | p
`

const counterProblem = `
vars: [a, b]
init: "!a & !b"
actions:
  - name: inc
    assign:
      a: "!a"
      b: (b & !a) | (!b & a)
`

func mustParse(t *testing.T, src string) *System {
	sys, err := Parse([]byte(src))
	require.NoError(t, err)
	return sys
}

func unroll(t *testing.T, sys *System) *Unroller {
	m, err := Compile(sys)
	require.NoError(t, err)
	return m.Unroll()
}

func check(t *testing.T, s *smt.Solver) smt.Status {
	t.Helper()
	st, err := s.Check()
	require.NoError(t, err)
	return st
}

func TestParseProblem(t *testing.T) {
	sys := mustParse(t, growProblem)
	assert.Equal(t, []string{"p", "q"}, sys.Vars)
	require.Len(t, sys.Actions, 1)
	assert.Equal(t, "grow", sys.Actions[0].Name)
	assert.Equal(t, "true", sys.Actions[0].Requires.String())
	require.Len(t, sys.Conjectures, 1)
	assert.Equal(t, "(p | q)", sys.Conjectures[0].String())
	assert.Equal(t, "(q | p)", sys.Safety.String())
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		dup  bool
		unk  bool
	}{
		{"duplicate var", "vars: [p, p]\nactions: [{name: a}]\n", true, false},
		{"var named like action", "vars: [p]\nactions: [{name: p}]\n", true, false},
		{"unknown atom", "vars: [p]\ninit: q\nactions: [{name: a}]\n", false, true},
		{"unknown assigned var", "vars: [p]\nactions: [{name: a, assign: {r: p}}]\n", false, true},
		{"unknown conjecture atom", "vars: [p]\nactions: [{name: a}]\nconjectures: [p | z]\n", false, true},
		{"unknown field", "vars: [p]\nactions: [{name: a}]\nextra: 1\n", false, false},
		{"syntax", "vars: [p]\ninit: p &\nactions: [{name: a}]\n", false, false},
		{"no actions", "vars: [p]\n", false, false},
		{"assign and havoc", "vars: [p]\nactions: [{name: a, assign: {p: p}, havoc: [p]}]\n", false, false},
	}
	for _, tc := range testCases {
		_, err := Parse([]byte(tc.src))
		require.Error(t, err, tc.name)
		var dup DuplicateSymbolError
		assert.Equal(t, tc.dup, errors.As(err, &dup), tc.name)
		var unk *UnknownSymbolError
		assert.Equal(t, tc.unk, errors.As(err, &unk), tc.name)
	}
}

func TestSymbolsFresh(t *testing.T) {
	s := NewSymbols()
	require.NoError(t, s.Declare("sk0"))
	assert.Equal(t, "sk1", s.Fresh("sk"))
	assert.Equal(t, "sk2", s.Fresh("sk"))
	assert.Error(t, s.Declare("sk2"))
	assert.Equal(t, []string{"sk0", "sk1", "sk2"}, s.Names())
}

func TestImage(t *testing.T) {
	sys := mustParse(t, growProblem)
	u := unroll(t, sys)

	post, err := u.Image(u.Initial(0), "grow")
	require.NoError(t, err)
	assert.Equal(t, 1, post.Depth)

	q1, err := u.Var("q", 1)
	require.NoError(t, err)
	s := u.Solver(post)
	st, err := s.Check(q1.Not())
	require.NoError(t, err)
	assert.Equal(t, smt.StatusUnsat, st)

	st, err = s.Check(q1)
	require.NoError(t, err)
	require.Equal(t, smt.StatusSat, st)
	m, err := u.ReadState(s, 1)
	require.NoError(t, err)
	assert.Equal(t, "p & q", m.Cube().String())

	_, err = u.Image(post, "shrink")
	assert.Error(t, err)
}

func TestFromFormulaAndAxioms(t *testing.T) {
	sys := mustParse(t, "vars: [p, q]\naxioms: [\"!(p & q)\"]\nactions: [{name: skip}]\n")
	u := unroll(t, sys)

	st, err := u.FromFormula(formula.MustParse("p"))
	require.NoError(t, err)
	q0, err := u.Var("q", 0)
	require.NoError(t, err)
	res, err := u.Solver(st).Check(q0)
	require.NoError(t, err)
	assert.Equal(t, smt.StatusUnsat, res)

	_, err = u.FromFormula(formula.MustParse("r"))
	assert.Error(t, err)
}

func TestDeadlockWhenNoActionEnabled(t *testing.T) {
	sys := mustParse(t, "vars: [p]\ninit: p\nactions: [{name: a, requires: \"!p\"}]\n")
	u := unroll(t, sys)
	assert.Equal(t, smt.StatusSat, check(t, u.Solver(u.Initial(0))))
	assert.Equal(t, smt.StatusUnsat, check(t, u.Solver(u.Initial(1))))
}

func TestBMC(t *testing.T) {
	sys := mustParse(t, counterProblem)
	u := unroll(t, sys)
	ctx := context.Background()
	notBoth := formula.MustParse("!(a & b)")

	tr, err := u.BMC(ctx, notBoth, 2)
	require.NoError(t, err)
	assert.Nil(t, tr)

	tr, err = u.BMC(ctx, notBoth, 5)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, []string{"inc", "inc", "inc"}, tr.Actions)
	assert.Equal(t, "!a & !b", tr.States[0].Cube().String())
	assert.Equal(t, "a & b", tr.Last().Cube().String())
	assert.Contains(t, tr.String(), "--inc-->")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = u.BMC(cancelled, notBoth, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBMCHavoc(t *testing.T) {
	sys := mustParse(t, "vars: [p]\ninit: p\nactions: [{name: flip, havoc: [p]}]\n")
	u := unroll(t, sys)
	tr, err := u.BMC(context.Background(), formula.MustParse("p"), 3)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, 1, tr.Len())
	require.Len(t, tr.Inputs, 1)
	assert.Len(t, tr.Inputs[0], 1)
	assert.False(t, tr.Last()["p"])
}

func TestExploreMatchesBMC(t *testing.T) {
	sys := mustParse(t, counterProblem)
	for _, order := range []string{"bfs", "dfs"} {
		r, err := Explore(context.Background(), sys, order)
		require.NoError(t, err, order)
		assert.Equal(t, 4, r.Count(), order)

		tr := r.Violation(formula.MustParse("!(a & b)"))
		require.NotNil(t, tr, order)
		assert.Equal(t, 3, tr.Len(), order)
		assert.Equal(t, "a & b", tr.Last().Cube().String(), order)

		assert.Nil(t, r.Violation(formula.MustParse("a | !a")), order)
	}

	grow := mustParse(t, growProblem)
	r, err := Explore(context.Background(), grow, "bfs")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())
	assert.Nil(t, r.Violation(formula.MustParse("p")))
}
