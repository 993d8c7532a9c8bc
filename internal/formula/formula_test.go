package formula

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSimplify(t *testing.T) {
	p, q := Atom("p"), Atom("q")
	testCases := []struct {
		name string
		got  Formula
		want string
	}{
		{"double negation", Not(Not(p)), "p"},
		{"negated constant", Not(True()), "false"},
		{"empty and", And(), "true"},
		{"empty or", Or(), "false"},
		{"single and", And(p), "p"},
		{"and absorbs false", And(p, False(), q), "false"},
		{"or drops false", Or(False(), p), "p"},
		{"flatten", And(p, And(q, Not(p))), "(p & q & !p)"},
		{"implies", Implies(p, q), "(!p | q)"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.got.String(), tc.name)
	}
}

func TestAtomsAndEval(t *testing.T) {
	f := MustParse("(b | !a) & (c -> a) & b")
	assert.Empty(t, cmp.Diff([]string{"a", "b", "c"}, Atoms(f)))

	val := map[string]bool{"a": true, "b": true, "c": false}
	assert.True(t, Eval(f, func(n string) bool { return val[n] }))
	val["b"] = false
	assert.False(t, Eval(f, func(n string) bool { return val[n] }))
}

func TestParse(t *testing.T) {
	testCases := []struct {
		src  string
		want string
	}{
		{"p", "p"},
		{"!p", "!p"},
		{"~~p", "p"},
		{"p & q | r", "((p & q) | r)"},
		{"p | q & r", "(p | (q & r))"},
		{"p -> q -> r", "(!p | !q | r)"},
		{"(p | q)", "(p | q)"},
		{"true & p", "p"},
		{"p <-> q", "((!p | q) & (!q | p))"},
		{"p = q", "((!p | q) & (!q | p))"},
		{"  x_1 &\n y2 ", "(x_1 & y2)"},
	}
	for _, tc := range testCases {
		f, err := Parse(tc.src)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.want, f.String(), tc.src)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"", "p &", "(p | q", "p q", "& p", "p -", "1"} {
		_, err := Parse(src)
		require.Error(t, err, src)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, src)
	}
}

func TestToClause(t *testing.T) {
	testCases := []struct {
		src  string
		want Clause
	}{
		{"p | !q", NewClause(Pos("p"), Neg("q"))},
		{"!(!p & q)", NewClause(Pos("p"), Neg("q"))},
		{"q", NewClause(Pos("q"))},
		{"!q", NewClause(Neg("q"))},
		{"q | p | q", NewClause(Pos("p"), Pos("q"))},
	}
	for _, tc := range testCases {
		c, err := ToClause(MustParse(tc.src))
		require.NoError(t, err, tc.src)
		assert.Empty(t, cmp.Diff(tc.want, c), tc.src)
	}

	_, err := ToClause(MustParse("p & q"))
	assert.Error(t, err)
	_, err = ToClause(MustParse("p | (q & r)"))
	assert.Error(t, err)
}

func TestClauseCubeDuality(t *testing.T) {
	c := NewClause(Pos("b"), Neg("a"), Pos("b"))
	assert.Equal(t, "!a | b", c.String())
	assert.Equal(t, "a & !b", c.Negate().String())
	assert.Empty(t, cmp.Diff(c, c.Negate().Negate()))
	assert.Equal(t, "b", c.Select([]int{1}).String())
	assert.Equal(t, "false", Clause{}.String())
	assert.Equal(t, "true", Cube{}.String())
}
