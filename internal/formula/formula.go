// Package formula implements propositional formulas over named atoms.
//
// A Formula is a closed tagged variant: a constant, an atom, a negation,
// a conjunction or a disjunction. Consumers walk formulas with Fold instead
// of inspecting the node kind themselves.
package formula

import (
	"sort"
	"strings"
)

// Kind is the node kind of a Formula.
type Kind uint8

const (
	KindConst Kind = iota
	KindAtom
	KindNot
	KindAnd
	KindOr
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindAtom:
		return "atom"
	case KindNot:
		return "not"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	}
	return "unknown"
}

// Formula is an immutable propositional formula. The zero value is false.
type Formula struct {
	kind  Kind
	value bool
	name  string
	args  []Formula
}

func True() Formula  { return Formula{kind: KindConst, value: true} }
func False() Formula { return Formula{kind: KindConst} }

func Const(v bool) Formula { return Formula{kind: KindConst, value: v} }

func Atom(name string) Formula { return Formula{kind: KindAtom, name: name} }

// Not negates f, folding constants and double negations.
func Not(f Formula) Formula {
	switch f.kind {
	case KindConst:
		return Const(!f.value)
	case KindNot:
		return f.args[0]
	}
	return Formula{kind: KindNot, args: []Formula{f}}
}

// And returns the conjunction of fs. The empty conjunction is true.
func And(fs ...Formula) Formula {
	return nary(KindAnd, true, fs)
}

// Or returns the disjunction of fs. The empty disjunction is false.
func Or(fs ...Formula) Formula {
	return nary(KindOr, false, fs)
}

func Implies(a, b Formula) Formula { return Or(Not(a), b) }

func Iff(a, b Formula) Formula { return And(Implies(a, b), Implies(b, a)) }

// nary flattens nested nodes of the same kind and drops the neutral element.
// The absorbing constant short-circuits to itself.
func nary(kind Kind, neutral bool, fs []Formula) Formula {
	args := make([]Formula, 0, len(fs))
	for _, f := range fs {
		switch {
		case f.kind == KindConst && f.value == neutral:
			continue
		case f.kind == KindConst:
			return f
		case f.kind == kind:
			args = append(args, f.args...)
		default:
			args = append(args, f)
		}
	}
	switch len(args) {
	case 0:
		return Const(neutral)
	case 1:
		return args[0]
	}
	return Formula{kind: kind, args: args}
}

func (f Formula) Kind() Kind { return f.kind }

// Value is the truth value of a constant.
func (f Formula) Value() bool { return f.value }

// Name is the name of an atom.
func (f Formula) Name() string { return f.name }

func (f Formula) Args() []Formula {
	args := make([]Formula, len(f.args))
	copy(args, f.args)
	return args
}

// Folder holds one callback per node kind. Every field must be set.
type Folder[T any] struct {
	Const func(bool) T
	Atom  func(string) T
	Not   func(T) T
	And   func([]T) T
	Or    func([]T) T
}

// Fold reduces f bottom-up with v.
func Fold[T any](f Formula, v Folder[T]) T {
	switch f.kind {
	case KindAtom:
		return v.Atom(f.name)
	case KindNot:
		return v.Not(Fold(f.args[0], v))
	case KindAnd, KindOr:
		ts := make([]T, len(f.args))
		for i, a := range f.args {
			ts[i] = Fold(a, v)
		}
		if f.kind == KindAnd {
			return v.And(ts)
		}
		return v.Or(ts)
	}
	return v.Const(f.value)
}

// Atoms returns the sorted set of atom names occurring in f.
func Atoms(f Formula) []string {
	union := func(ts [][]string) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t...)
		}
		return out
	}
	names := Fold(f, Folder[[]string]{
		Const: func(bool) []string { return nil },
		Atom:  func(n string) []string { return []string{n} },
		Not:   func(t []string) []string { return t },
		And:   union,
		Or:    union,
	})
	sort.Strings(names)
	out := names[:0]
	for i, n := range names {
		if i == 0 || n != names[i-1] {
			out = append(out, n)
		}
	}
	return out
}

// Eval evaluates f under the assignment val.
func Eval(f Formula, val func(string) bool) bool {
	return Fold(f, Folder[bool]{
		Const: func(b bool) bool { return b },
		Atom:  val,
		Not:   func(b bool) bool { return !b },
		And: func(bs []bool) bool {
			for _, b := range bs {
				if !b {
					return false
				}
			}
			return true
		},
		Or: func(bs []bool) bool {
			for _, b := range bs {
				if b {
					return true
				}
			}
			return false
		},
	})
}

// String prints f in the syntax accepted by Parse.
func (f Formula) String() string {
	join := func(op string) func([]string) string {
		return func(ss []string) string {
			return "(" + strings.Join(ss, " "+op+" ") + ")"
		}
	}
	return Fold(f, Folder[string]{
		Const: func(b bool) string {
			if b {
				return "true"
			}
			return "false"
		},
		Atom: func(n string) string { return n },
		Not:  func(s string) string { return "!" + s },
		And:  join("&"),
		Or:   join("|"),
	})
}
