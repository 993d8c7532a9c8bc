// Package mus computes minimal unsatisfiable subsets of assumption sets.
//
// A MUS is an unsatisfiable subset such that, if any of its members is
// removed, the query becomes satisfiable. Extract uses deletion with core
// trimming: it is locally minimal, not guaranteed to be the smallest.
package mus

import (
	"invsynth/internal/metrics"
	"invsynth/internal/smt"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Oracle is the part of a decision oracle Extract needs.
type Oracle interface {
	Check(assumptions ...z.Lit) (smt.Status, error)
	Core() ([]z.Lit, error)
}

// Extract returns a minimal subset mus of args such that fixed and mus
// together are unsatisfiable. The last call on o must have been an unsat
// Check of fixed and args. The result keeps the order of args.
func Extract(o Oracle, args, fixed []z.Lit) ([]z.Lit, error) {
	remaining := make(map[z.Lit]bool, len(args))
	for _, m := range args {
		remaining[m] = true
	}
	core, err := o.Core()
	if err != nil {
		return nil, errors.Wrap(err, "Core")
	}
	cand := restrict(args, core, remaining)

	mus := make([]z.Lit, 0, len(cand))
	assumptions := make([]z.Lit, 0, len(fixed)+len(args))
	for len(cand) > 0 {
		assumptions = append(assumptions[:0], fixed...)
		assumptions = append(assumptions, mus...)
		assumptions = append(assumptions, cand[1:]...)
		st, err := o.Check(assumptions...)
		if err != nil {
			return nil, errors.Wrap(err, "Check")
		}
		switch st {
		case smt.StatusSat:
			// the head is necessary
			mus = append(mus, cand[0])
			delete(remaining, cand[0])
			cand = cand[1:]
		case smt.StatusUnsat:
			core, err := o.Core()
			if err != nil {
				return nil, errors.Wrap(err, "Core")
			}
			cand = restrict(args, core, remaining)
		default:
			return nil, smt.ErrUnknown
		}
	}
	metrics.CountMUS()
	return order(args, mus), nil
}

// restrict keeps the members of core still in remaining, in args order.
func restrict(args, core []z.Lit, remaining map[z.Lit]bool) []z.Lit {
	in := make(map[z.Lit]bool, len(core))
	for _, m := range core {
		in[m] = true
	}
	out := make([]z.Lit, 0, len(core))
	for _, m := range args {
		if in[m] && remaining[m] {
			out = append(out, m)
			delete(in, m)
		}
	}
	return out
}

func order(args, ms []z.Lit) []z.Lit {
	in := make(map[z.Lit]bool, len(ms))
	for _, m := range ms {
		in[m] = true
	}
	out := make([]z.Lit, 0, len(ms))
	for _, m := range args {
		if in[m] {
			out = append(out, m)
			delete(in, m)
		}
	}
	return out
}
