package mus

import (
	"testing"

	"invsynth/internal/smt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsatUnder(t *testing.T, s *smt.Solver, ms ...z.Lit) {
	st, err := s.Check(ms...)
	require.NoError(t, err)
	require.Equal(t, smt.StatusUnsat, st)
}

func TestExtractAllNeeded(t *testing.T) {
	c := logic.NewC()
	a, b, d := c.Lit(), c.Lit(), c.Lit()
	s := smt.NewSolver(c)
	// only all three together conflict
	s.AddClause(a.Not(), b.Not(), d.Not())

	args := []z.Lit{a, b, d}
	unsatUnder(t, s, args...)
	got, err := Extract(s, args, nil)
	require.NoError(t, err)
	assert.Equal(t, args, got)
}

func TestExtractDropsIrrelevant(t *testing.T) {
	c := logic.NewC()
	a, b, d := c.Lit(), c.Lit(), c.Lit()
	s := smt.NewSolver(c)
	s.AddClause(a.Not(), b.Not())

	args := []z.Lit{a, b, d}
	unsatUnder(t, s, args...)
	got, err := Extract(s, args, nil)
	require.NoError(t, err)
	assert.NotContains(t, got, d)
	assert.LessOrEqual(t, len(got), 2)
	assert.Subset(t, []z.Lit{a, b}, got)
}

func TestExtractWithFixed(t *testing.T) {
	c := logic.NewC()
	g, a, b, d := c.Lit(), c.Lit(), c.Lit(), c.Lit()
	s := smt.NewSolver(c)
	// g enables the conflict between a and d
	s.AddClause(g.Not(), a.Not(), d.Not())

	args := []z.Lit{a, b, d}
	unsatUnder(t, s, append([]z.Lit{g}, args...)...)
	got, err := Extract(s, args, []z.Lit{g})
	require.NoError(t, err)
	assert.Equal(t, []z.Lit{a, d}, got)
}

func TestExtractContractViolation(t *testing.T) {
	c := logic.NewC()
	a := c.Lit()
	s := smt.NewSolver(c)
	st, err := s.Check(a)
	require.NoError(t, err)
	require.Equal(t, smt.StatusSat, st)

	_, err = Extract(s, []z.Lit{a}, nil)
	assert.ErrorIs(t, err, smt.ErrNoCore)
}

type unknownOracle struct {
	core []z.Lit
}

func (o *unknownOracle) Check(...z.Lit) (smt.Status, error) {
	return smt.StatusUnknown, nil
}

func (o *unknownOracle) Core() ([]z.Lit, error) {
	return o.core, nil
}

func TestExtractUnknownIsFatal(t *testing.T) {
	c := logic.NewC()
	a, b := c.Lit(), c.Lit()
	_, err := Extract(&unknownOracle{core: []z.Lit{a, b}}, []z.Lit{a, b}, nil)
	assert.ErrorIs(t, err, smt.ErrUnknown)
}
