package abstract

import (
	"testing"

	"invsynth/internal/formula"

	"github.com/stretchr/testify/assert"
)

func TestGenerator(t *testing.T) {
	g := NewGenerator(3, 1, 3)
	assert.Equal(t, Generator{1, 3}, g)
	assert.True(t, NewGenerator(1).SubsetOf(g))
	assert.True(t, Generator{}.SubsetOf(g))
	assert.False(t, NewGenerator(2).SubsetOf(g))
	assert.True(t, g.Equal(NewGenerator(1, 3)))
}

func TestLe(t *testing.T) {
	values := []Value{
		Top(),
		Bottom(),
		{{0}},
		{{1}},
		{{0}, {1}},
		{{0, 1}},
		{{}, {0}},
		{{0, 2}, {1}},
	}
	testCases := []struct {
		name   string
		a1, a2 Value
		want   bool
	}{
		{"bottom below bottom and {0}", Bottom(), Value{{}, {0}}, true},
		{"{0} below {0 1}", Value{{0}}, Value{{0, 1}}, true},
		{"{0 1} not below {0}", Value{{0, 1}}, Value{{0}}, false},
		{"anything below top", Value{{0}}, Top(), true},
		{"top below nothing else", Top(), Value{{0}}, false},
		{"more generators is stronger", Value{{0}, {1}}, Value{{1}}, true},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Le(tc.a1, tc.a2), tc.name)
	}

	for _, a := range values {
		assert.True(t, Le(a, a), "reflexive %s", a)
		for _, b := range values {
			for _, c := range values {
				if Le(a, b) && Le(b, c) {
					assert.True(t, Le(a, c), "transitive %s %s %s", a, b, c)
				}
			}
		}
	}
}

func TestValueAdd(t *testing.T) {
	v := Top()
	assert.True(t, v.IsTop())
	v = v.Add(NewGenerator(1))
	v = v.Add(NewGenerator(1))
	v = v.Add(NewGenerator(0, 2))
	assert.Len(t, v, 2)
	assert.False(t, v.IsTop())
	assert.Equal(t, "{[1] [0 2]}", v.String())
	assert.Equal(t, "top", Top().String())
}

func TestFrameFormula(t *testing.T) {
	family := Family{
		formula.NewClause(formula.Pos("p"), formula.Pos("q")),
		formula.NewClause(formula.Neg("p"), formula.Neg("r")),
	}
	f := Frame{{{0}, {1}}, Top()}
	assert.Equal(t, "(p & q)", f.Formula(family).String())
	assert.Equal(t, 1, f.TopIndex())
	assert.Len(t, f.Clauses(family), 2)

	f = Frame{{{0, 1}}, {{1}}}
	assert.Equal(t, "((p | q) & !r)", f.Formula(family).String())
	assert.Equal(t, -1, f.TopIndex())

	assert.True(t, f.Le(f))
	assert.False(t, f.Le(BottomFrame(2)))
	assert.True(t, BottomFrame(2).Le(f))
	assert.False(t, f.Le(Frame{{{0, 1}}}))

	assert.True(t, family.Contains(formula.NewClause(formula.Pos("q"), formula.Pos("p"))))
	assert.False(t, family.Contains(formula.NewClause(formula.Pos("q"))))
}
