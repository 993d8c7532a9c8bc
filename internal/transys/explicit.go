package transys

import (
	"context"

	"invsynth/internal/formula"
	"invsynth/internal/smt"
	"invsynth/internal/strategy"

	"github.com/pkg/errors"
)

// MaxExplicitVars bounds the systems Explore accepts.
const MaxExplicitVars = 20

type point uint64

type edge struct {
	from   point
	action string
	inputs smt.Model
	root   bool
}

// Reachability is the explicit reachable state space of a System.
type Reachability struct {
	sys    *System
	parent map[point]edge
	order  []point
}

func (r *Reachability) Count() int {
	return len(r.order)
}

// Explore enumerates every reachable state, visiting the frontier with the
// named strategy.
func Explore(ctx context.Context, sys *System, order string) (*Reachability, error) {
	if len(sys.Vars) > MaxExplicitVars {
		return nil, errors.Errorf("%d variables exceed the explicit limit of %d", len(sys.Vars), MaxExplicitVars)
	}
	work, err := strategy.New[point](order)
	if err != nil {
		return nil, errors.Wrap(err, "strategy.New")
	}
	r := &Reachability{
		sys:    sys,
		parent: make(map[point]edge),
	}
	for p := point(0); p < point(1)<<len(sys.Vars); p++ {
		if r.holds(sys.Init, p) && r.holds(sys.Axioms, p) {
			r.visit(p, edge{root: true})
			_ = work.Push(p)
		}
	}
	for work.HasNext() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := work.Pop()
		if err != nil {
			return nil, errors.Wrap(err, "Pop")
		}
		for _, a := range sys.Actions {
			if !r.holds(a.Requires, p) {
				continue
			}
			for h := 0; h < 1<<len(a.Havoc); h++ {
				q, in := r.successor(a, p, h)
				if !r.holds(sys.Axioms, q) {
					continue
				}
				if _, ok := r.parent[q]; ok {
					continue
				}
				r.visit(q, edge{from: p, action: a.Name, inputs: in})
				_ = work.Push(q)
			}
		}
	}
	return r, nil
}

func (r *Reachability) visit(p point, e edge) {
	r.parent[p] = e
	r.order = append(r.order, p)
}

func (r *Reachability) value(p point, name string) bool {
	return p&(1<<r.sys.index[name]) != 0
}

func (r *Reachability) holds(f formula.Formula, p point) bool {
	return formula.Eval(f, func(name string) bool { return r.value(p, name) })
}

func (r *Reachability) successor(a *Action, p point, h int) (point, smt.Model) {
	var q point
	in := make(smt.Model, len(a.Havoc))
	bits := make(map[string]bool, len(a.Havoc))
	for j, v := range a.Havoc {
		bits[v] = h&(1<<j) != 0
		in[v] = bits[v]
	}
	for i, v := range r.sys.Vars {
		var val bool
		if f, ok := a.Assign[v]; ok {
			val = r.holds(f, p)
		} else if b, ok := bits[v]; ok {
			val = b
		} else {
			val = r.value(p, v)
		}
		if val {
			q |= 1 << i
		}
	}
	return q, in
}

func (r *Reachability) model(p point) smt.Model {
	m := make(smt.Model, len(r.sys.Vars))
	for _, v := range r.sys.Vars {
		m[v] = r.value(p, v)
	}
	return m
}

// Violation returns a run to the first visited state violating f, or nil.
func (r *Reachability) Violation(f formula.Formula) *Trace {
	for _, p := range r.order {
		if !r.holds(f, p) {
			return r.trace(p)
		}
	}
	return nil
}

func (r *Reachability) trace(p point) *Trace {
	var rev []point
	var edges []edge
	for {
		rev = append(rev, p)
		e := r.parent[p]
		if e.root {
			break
		}
		edges = append(edges, e)
		p = e.from
	}
	t := &Trace{}
	for i := len(rev) - 1; i >= 0; i-- {
		t.States = append(t.States, r.model(rev[i]))
	}
	for i := len(edges) - 1; i >= 0; i-- {
		t.Actions = append(t.Actions, edges[i].action)
		t.Inputs = append(t.Inputs, edges[i].inputs)
	}
	return t
}
