package formula

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Literal is a possibly negated atom.
type Literal struct {
	Atom    string
	Negated bool
}

func Pos(atom string) Literal { return Literal{Atom: atom} }
func Neg(atom string) Literal { return Literal{Atom: atom, Negated: true} }

func (l Literal) Negate() Literal {
	return Literal{Atom: l.Atom, Negated: !l.Negated}
}

func (l Literal) Formula() Formula {
	if l.Negated {
		return Not(Atom(l.Atom))
	}
	return Atom(l.Atom)
}

func (l Literal) String() string {
	if l.Negated {
		return "!" + l.Atom
	}
	return l.Atom
}

func (l Literal) less(o Literal) bool {
	if l.Atom != o.Atom {
		return l.Atom < o.Atom
	}
	return !l.Negated && o.Negated
}

// AsLiteral recognises an atom or a negated atom.
func AsLiteral(f Formula) (Literal, bool) {
	switch f.kind {
	case KindAtom:
		return Pos(f.name), true
	case KindNot:
		if f.args[0].kind == KindAtom {
			return Neg(f.args[0].name), true
		}
	}
	return Literal{}, false
}

func normalize(lits []Literal) []Literal {
	out := make([]Literal, len(lits))
	copy(out, lits)
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	uniq := out[:0]
	for i, l := range out {
		if i == 0 || l != out[i-1] {
			uniq = append(uniq, l)
		}
	}
	return uniq
}

// Clause is a sorted duplicate-free set of literals read as a disjunction.
type Clause []Literal

func NewClause(lits ...Literal) Clause { return Clause(normalize(lits)) }

func (c Clause) Formula() Formula {
	fs := make([]Formula, len(c))
	for i, l := range c {
		fs[i] = l.Formula()
	}
	return Or(fs...)
}

// Negate returns the cube falsifying c.
func (c Clause) Negate() Cube {
	out := make([]Literal, len(c))
	for i, l := range c {
		out[i] = l.Negate()
	}
	return NewCube(out...)
}

// Select returns the sub-clause made of the literals at idx.
func (c Clause) Select(idx []int) Clause {
	out := make([]Literal, 0, len(idx))
	for _, i := range idx {
		out = append(out, c[i])
	}
	return NewClause(out...)
}

// Key identifies c by its literals.
func (c Clause) Key() string {
	return joinLits(c, " | ")
}

func (c Clause) String() string {
	if len(c) == 0 {
		return "false"
	}
	return joinLits(c, " | ")
}

// Cube is a sorted duplicate-free set of literals read as a conjunction.
type Cube []Literal

func NewCube(lits ...Literal) Cube { return Cube(normalize(lits)) }

func (c Cube) Formula() Formula {
	fs := make([]Formula, len(c))
	for i, l := range c {
		fs[i] = l.Formula()
	}
	return And(fs...)
}

// Negate returns the clause blocking c.
func (c Cube) Negate() Clause {
	out := make([]Literal, len(c))
	for i, l := range c {
		out[i] = l.Negate()
	}
	return NewClause(out...)
}

func (c Cube) String() string {
	if len(c) == 0 {
		return "true"
	}
	return joinLits(c, " & ")
}

func joinLits(lits []Literal, sep string) string {
	ss := make([]string, len(lits))
	for i, l := range lits {
		ss[i] = l.String()
	}
	return strings.Join(ss, sep)
}

// ToClause decomposes a conjecture into its literal set. Both the
// disjunction of literals and the negated conjunction of their negations
// are accepted.
func ToClause(f Formula) (Clause, error) {
	if l, ok := AsLiteral(f); ok {
		return NewClause(l), nil
	}
	switch f.kind {
	case KindOr:
		lits := make([]Literal, 0, len(f.args))
		for _, a := range f.args {
			l, ok := AsLiteral(a)
			if !ok {
				return nil, errors.Errorf("not a literal: %s", a)
			}
			lits = append(lits, l)
		}
		return NewClause(lits...), nil
	case KindNot:
		cube, err := ToCube(f.args[0])
		if err != nil {
			return nil, errors.Wrap(err, "ToCube")
		}
		return cube.Negate(), nil
	}
	return nil, errors.Errorf("not a clause: %s", f)
}

// ToCube decomposes a conjunction of literals.
func ToCube(f Formula) (Cube, error) {
	if f.kind == KindConst && f.value {
		return Cube{}, nil
	}
	if l, ok := AsLiteral(f); ok {
		return NewCube(l), nil
	}
	if f.kind != KindAnd {
		return nil, errors.Errorf("not a cube: %s", f)
	}
	lits := make([]Literal, 0, len(f.args))
	for _, a := range f.args {
		l, ok := AsLiteral(a)
		if !ok {
			return nil, errors.Errorf("not a literal: %s", a)
		}
		lits = append(lits, l)
	}
	return NewCube(lits...), nil
}
