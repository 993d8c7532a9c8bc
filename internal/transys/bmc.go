package transys

import (
	"context"
	"fmt"
	"strings"

	"invsynth/internal/formula"
	"invsynth/internal/smt"

	"github.com/pkg/errors"
)

// Trace is a run: States[i+1] follows States[i] by Actions[i] with havoc
// choices Inputs[i].
type Trace struct {
	States  []smt.Model
	Actions []string
	Inputs  []smt.Model
}

func (t *Trace) Len() int {
	return len(t.Actions)
}

func (t *Trace) Last() smt.Model {
	return t.States[len(t.States)-1]
}

func (t *Trace) String() string {
	var b strings.Builder
	for i, st := range t.States {
		fmt.Fprintf(&b, "state %d: %s\n", i, st.Cube())
		if i < len(t.Actions) {
			fmt.Fprintf(&b, "  --%s-->", t.Actions[i])
			if len(t.Inputs[i]) > 0 {
				fmt.Fprintf(&b, " [%s]", t.Inputs[i].Cube())
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ReadTrace reads the run ending at depth from the last sat Check of s.
func (u *Unroller) ReadTrace(s *smt.Solver, depth int) (*Trace, error) {
	t := &Trace{}
	for d := 0; d <= depth; d++ {
		st, err := u.ReadState(s, d)
		if err != nil {
			return nil, errors.Wrap(err, "ReadState")
		}
		t.States = append(t.States, st)
		if d == depth {
			break
		}
		a, err := u.Fired(s, d)
		if err != nil {
			return nil, errors.Wrap(err, "Fired")
		}
		in, err := u.ReadInputs(s, d)
		if err != nil {
			return nil, errors.Wrap(err, "ReadInputs")
		}
		t.Actions = append(t.Actions, a)
		t.Inputs = append(t.Inputs, in)
	}
	return t, nil
}

// BMC looks for a run of at most bound steps from the initial states that
// ends in a state violating f. It returns nil if there is none.
func (u *Unroller) BMC(ctx context.Context, f formula.Formula, bound int, opts ...smt.Option) (*Trace, error) {
	st := u.Initial(0)
	for k := 0; k <= bound; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bad, err := u.Lit(f, k)
		if err != nil {
			return nil, errors.Wrap(err, "Lit")
		}
		s := u.Solver(st, opts...)
		res, err := s.Check(bad.Not())
		if err != nil {
			return nil, errors.Wrapf(err, "Check depth %d", k)
		}
		if res == smt.StatusSat {
			return u.ReadTrace(s, k)
		}
		st = u.Step(st)
	}
	return nil, nil
}
