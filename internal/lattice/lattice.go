// Package lattice explores the implication lattice of n paired indicators.
//
// A point assigns every index i a pre flag and a post flag with pre_i
// implying post_i. The pre set is a hypothesis, the post set a conclusion
// tested against it. Blocking operations remove whole dominated regions so
// that repeated sampling eventually runs dry.
package lattice

import (
	"invsynth/internal/metrics"
	"invsynth/internal/smt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Unbounded disables a cardinality bound in Sample.
const Unbounded = -1

// Point is one sample. Pre[i] implies Post[i].
type Point struct {
	Pre  []bool
	Post []bool
}

func (p *Point) PreSet() []int  { return members(p.Pre) }
func (p *Point) PostSet() []int { return members(p.Post) }

func members(bs []bool) []int {
	out := make([]int, 0, len(bs))
	for i, b := range bs {
		if b {
			out = append(out, i)
		}
	}
	return out
}

// Map is the sampler state. It is not safe for concurrent use.
type Map struct {
	n          int
	s          *smt.Solver
	pres       []z.Lit
	posts      []z.Lit
	preAtMost  []z.Lit
	postAtMost []z.Lit
	exhausted  bool
}

func New(n int) *Map {
	c := logic.NewCCap(16 * (n + 1))
	lm := &Map{
		n:          n,
		s:          smt.NewSolver(c),
		pres:       make([]z.Lit, n),
		posts:      make([]z.Lit, n),
		preAtMost:  make([]z.Lit, n),
		postAtMost: make([]z.Lit, n),
	}
	for i := 0; i < n; i++ {
		lm.pres[i] = c.Lit()
		lm.posts[i] = c.Lit()
		lm.s.AddClause(lm.pres[i].Not(), lm.posts[i])
	}
	preCard := c.CardSort(lm.pres)
	postCard := c.CardSort(lm.posts)
	for k := 0; k < n; k++ {
		lm.preAtMost[k] = c.Lit()
		lm.s.AddClause(lm.preAtMost[k].Not(), preCard.Leq(k))
		lm.postAtMost[k] = c.Lit()
		lm.s.AddClause(lm.postAtMost[k].Not(), postCard.Leq(k))
	}
	return lm
}

// N is the number of indices.
func (lm *Map) N() int {
	return lm.n
}

// Sample returns an unexplored point with at most preAtMost pre flags and
// postAtMost post flags, or nil once no such point is left. Bounds that are
// negative or not below N are ignored.
func (lm *Map) Sample(preAtMost, postAtMost int) (*Point, error) {
	if lm.exhausted {
		return nil, nil
	}
	var assumptions []z.Lit
	if preAtMost >= 0 && preAtMost < lm.n {
		assumptions = append(assumptions, lm.preAtMost[preAtMost])
	}
	if postAtMost >= 0 && postAtMost < lm.n {
		assumptions = append(assumptions, lm.postAtMost[postAtMost])
	}
	st, err := lm.s.Check(assumptions...)
	if err != nil {
		return nil, errors.Wrap(err, "Check")
	}
	if st == smt.StatusUnsat {
		if len(assumptions) == 0 {
			lm.exhausted = true
		}
		return nil, nil
	}
	metrics.CountSample()

	p := &Point{
		Pre:  make([]bool, lm.n),
		Post: make([]bool, lm.n),
	}
	for i := 0; i < lm.n; i++ {
		post, err := lm.s.Value(lm.posts[i])
		if err != nil {
			return nil, errors.Wrap(err, "Value")
		}
		pre, err := lm.s.Value(lm.pres[i])
		if err != nil {
			return nil, errors.Wrap(err, "Value")
		}
		p.Post[i] = post
		p.Pre[i] = pre
	}
	return p, nil
}

// BlockPreDown excludes every point whose pre set lies below pre.
func (lm *Map) BlockPreDown(pre []int) {
	in := set(pre)
	var ms []z.Lit
	for i := 0; i < lm.n; i++ {
		if !in[i] {
			ms = append(ms, lm.pres[i])
		}
	}
	lm.block("pre_down", ms)
}

// BlockNonImplication excludes every point whose pre set contains pre and
// whose post set is contained in post.
func (lm *Map) BlockNonImplication(pre, post []int) {
	inPre, inPost := set(pre), set(post)
	var ms []z.Lit
	for i := 0; i < lm.n; i++ {
		if !inPost[i] {
			ms = append(ms, lm.posts[i])
		}
		if inPre[i] {
			ms = append(ms, lm.pres[i].Not())
		}
	}
	lm.block("non_implication", ms)
}

// BlockImplication excludes every point whose pre set is contained in pre
// and whose post set contains post.
func (lm *Map) BlockImplication(pre, post []int) {
	inPre, inPost := set(pre), set(post)
	var ms []z.Lit
	for i := 0; i < lm.n; i++ {
		if inPost[i] {
			ms = append(ms, lm.posts[i].Not())
		}
		if !inPre[i] {
			ms = append(ms, lm.pres[i])
		}
	}
	lm.block("implication", ms)
}

func (lm *Map) block(kind string, ms []z.Lit) {
	metrics.CountBlock(kind)
	if len(ms) == 0 {
		lm.exhausted = true
		return
	}
	lm.s.AddClause(ms...)
}

func set(idx []int) map[int]bool {
	m := make(map[int]bool, len(idx))
	for _, i := range idx {
		m[i] = true
	}
	return m
}

