// Package abstract holds the abstract domain of candidate clauses and the
// best abstract transformer computing it.
package abstract

import (
	"fmt"
	"sort"
	"strings"

	"invsynth/internal/formula"
)

// Generator is a set of literal indices of one clause whose disjunction is
// valid in the context it was computed in.
type Generator []int

func NewGenerator(idx ...int) Generator {
	g := make(Generator, len(idx))
	copy(g, idx)
	sort.Ints(g)
	out := g[:0]
	for i, x := range g {
		if i == 0 || x != g[i-1] {
			out = append(out, x)
		}
	}
	return out
}

// SubsetOf reports whether every index of g is in o. Both are sorted.
func (g Generator) SubsetOf(o Generator) bool {
	j := 0
	for _, x := range g {
		for j < len(o) && o[j] < x {
			j++
		}
		if j == len(o) || o[j] != x {
			return false
		}
	}
	return true
}

func (g Generator) Equal(o Generator) bool {
	return len(g) == len(o) && g.SubsetOf(o)
}

// Value is the abstract value of one clause: a set of generators.
type Value []Generator

// Top is the empty generator set: no sub-clause is valid.
func Top() Value {
	return Value{}
}

// Bottom holds only the empty generator: the vacuous placeholder that every
// value is compared against first.
func Bottom() Value {
	return Value{Generator{}}
}

func (v Value) IsTop() bool {
	return len(v) == 0
}

func (v Value) Contains(g Generator) bool {
	for _, h := range v {
		if h.Equal(g) {
			return true
		}
	}
	return false
}

// Add returns v with g added.
func (v Value) Add(g Generator) Value {
	if v.Contains(g) {
		return v
	}
	out := make(Value, len(v), len(v)+1)
	copy(out, v)
	return append(out, g)
}

// Le is the subsumption order: a1 ≤ a2 when every generator of a2 contains
// some generator of a1, so a1 is at least as strong.
func Le(a1, a2 Value) bool {
	for _, c2 := range a2 {
		found := false
		for _, c1 := range a1 {
			if c1.SubsetOf(c2) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Formula is the conjunction over generators of their sub-clauses of c.
func (v Value) Formula(c formula.Clause) formula.Formula {
	fs := make([]formula.Formula, len(v))
	for i, g := range v {
		fs[i] = c.Select(g).Formula()
	}
	return formula.And(fs...)
}

func (v Value) String() string {
	if v.IsTop() {
		return "top"
	}
	ss := make([]string, len(v))
	for i, g := range v {
		ss[i] = fmt.Sprint([]int(g))
	}
	return "{" + strings.Join(ss, " ") + "}"
}

// Family is the ordered candidate clause family.
type Family []formula.Clause

// Contains reports whether the family already has a clause with c's literals.
func (f Family) Contains(c formula.Clause) bool {
	for _, d := range f {
		if d.Key() == c.Key() {
			return true
		}
	}
	return false
}

// Frame maps every clause of a family, by index, to its abstract value.
type Frame []Value

// BottomFrame is the all-bottom frame for n clauses.
func BottomFrame(n int) Frame {
	f := make(Frame, n)
	for i := range f {
		f[i] = Bottom()
	}
	return f
}

// Le compares clause by clause.
func (f Frame) Le(g Frame) bool {
	if len(f) != len(g) {
		return false
	}
	for i := range f {
		if !Le(f[i], g[i]) {
			return false
		}
	}
	return true
}

// TopIndex returns the first clause whose value is top, or -1.
func (f Frame) TopIndex() int {
	for i, v := range f {
		if v.IsTop() {
			return i
		}
	}
	return -1
}

// Formula reconstructs the state formula the frame describes over family.
func (f Frame) Formula(family Family) formula.Formula {
	fs := make([]formula.Formula, 0, len(f))
	for i, v := range f {
		fs = append(fs, v.Formula(family[i]))
	}
	return formula.And(fs...)
}

// Clauses lists the sub-clauses of every generator, in frame order.
func (f Frame) Clauses(family Family) []formula.Clause {
	var out []formula.Clause
	for i, v := range f {
		for _, g := range v {
			out = append(out, family[i].Select(g))
		}
	}
	return out
}
