// Package report renders command outcomes for a terminal.
package report

import (
	"fmt"
	"strings"

	"invsynth/internal/abstract"
	"invsynth/internal/formula"
	"invsynth/internal/synth"
	"invsynth/internal/transys"
)

const (
	Red    = 31
	Green  = 32
	Yellow = 33
)

// Report is one outcome: a coloured headline and an optional body.
type Report struct {
	OK          bool
	Title       string
	Description string
	Body        string
}

func (r *Report) String() string {
	color := Red
	if r.OK {
		color = Green
	}
	head := fmt.Sprintf("%s\n", r.Title)
	if r.Description != "" {
		head += fmt.Sprintf("%s\n", r.Description)
	}
	head = Colour(color, head)
	if r.Body == "" {
		return head
	}
	return fmt.Sprintf("%s\n%s", head, Colour(Yellow, r.Body))
}

func Colour(color int, str string) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, str)
}

// Synthesis reports the result of a synthesis run.
func Synthesis(res *synth.Result) *Report {
	if !res.Success {
		return &Report{
			Title:       "Candidate family refuted at the initial states",
			Description: fmt.Sprintf("Clause %d fails initially: %s", res.Refuted, res.Family[res.Refuted]),
			Body:        family(res.Family),
		}
	}
	return &Report{
		OK:          true,
		Title:       "Inductive invariant found",
		Description: fmt.Sprintf("%d clauses, %d refinements", len(res.Family), res.Refinements),
		Body:        fmt.Sprintf("%s\n", res.Invariant),
	}
}

func family(f abstract.Family) string {
	var b strings.Builder
	for i, c := range f {
		fmt.Fprintf(&b, "%3d: %s\n", i, c)
	}
	return b.String()
}

// Inductive reports a check of conj; cex is nil when it passed.
func Inductive(conj formula.Formula, cex *synth.Counterexample) *Report {
	if cex == nil {
		return &Report{OK: true, Title: "Inductive", Description: conj.String()}
	}
	return &Report{
		Title:       "Not inductive",
		Description: conj.String(),
		Body:        cex.String() + "\n",
	}
}

// Sufficient reports whether inv implies safety; cex is nil when it does.
func Sufficient(inv, safety formula.Formula, cex *synth.Counterexample) *Report {
	desc := fmt.Sprintf("%s => %s", inv, safety)
	if cex == nil {
		return &Report{OK: true, Title: "Sufficient", Description: desc}
	}
	return &Report{Title: "Not sufficient", Description: desc, Body: cex.String() + "\n"}
}

// Trace reports a bounded search for a violation of conj.
func Trace(conj formula.Formula, bound int, t *transys.Trace) *Report {
	if t == nil {
		return &Report{
			OK:          true,
			Title:       fmt.Sprintf("No violation within %d steps", bound),
			Description: conj.String(),
		}
	}
	return &Report{
		Title:       fmt.Sprintf("Violated after %d steps", t.Len()),
		Description: conj.String(),
		Body:        t.String(),
	}
}

// Reachable reports an explicit-state check of conj over count states.
func Reachable(conj formula.Formula, count int, t *transys.Trace) *Report {
	if t == nil {
		return &Report{
			OK:          true,
			Title:       fmt.Sprintf("Holds on all %d reachable states", count),
			Description: conj.String(),
		}
	}
	return &Report{
		Title:       fmt.Sprintf("Violated in a reachable state (%d explored)", count),
		Description: conj.String(),
		Body:        t.String(),
	}
}

// Conjectures reports the result of a generalization.
func Conjectures(cs []formula.Clause) *Report {
	if len(cs) == 0 {
		return &Report{Title: "No relative inductive generalization found"}
	}
	var b strings.Builder
	for _, c := range cs {
		fmt.Fprintf(&b, "%s\n", c)
	}
	return &Report{
		OK:    true,
		Title: "Found relative inductive conjectures",
		Body:  b.String(),
	}
}

// Minimized reports a minimized cube as the conjecture blocking it.
func Minimized(facts formula.Cube) *Report {
	return &Report{
		OK:          true,
		Title:       "Bounded search suggests the conjecture",
		Description: facts.Negate().String(),
	}
}
