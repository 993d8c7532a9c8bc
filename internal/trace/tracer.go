// Package trace carries diagnostics of a synthesis run to an observer.
package trace

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

type Kind int

const (
	ClauseStart Kind = iota
	Sample
	NotImplied
	Generator
	Frame
	Refuted
	Refinement
	Fixpoint
	Conjecture
)

func (k Kind) String() string {
	switch k {
	case ClauseStart:
		return "clause"
	case Sample:
		return "sample"
	case NotImplied:
		return "not-implied"
	case Generator:
		return "generator"
	case Frame:
		return "frame"
	case Refuted:
		return "refuted"
	case Refinement:
		return "refinement"
	case Fixpoint:
		return "fixpoint"
	case Conjecture:
		return "conjecture"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event describes one step. Fields that do not apply to a Kind are zero.
type Event struct {
	Kind   Kind
	Phase  string
	Frame  int
	Clause int
	Pre    []int
	Post   []int
	Detail string
}

type Tracer interface {
	Trace(e Event)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(Event) {
}

// LoggingTracer reports events at debug level, and frames, refinements and
// terminal outcomes at info level.
type LoggingTracer struct {
	Logger logrus.FieldLogger
}

func (t LoggingTracer) Trace(e Event) {
	entry := t.Logger.WithFields(logrus.Fields{
		"event": e.Kind.String(),
	})
	if e.Phase != "" {
		entry = entry.WithField("phase", e.Phase)
	}
	switch e.Kind {
	case ClauseStart, Generator, NotImplied, Refuted:
		entry = entry.WithField("clause", e.Clause)
	case Frame, Fixpoint:
		entry = entry.WithField("frame", e.Frame)
	}
	if e.Pre != nil {
		entry = entry.WithField("pre", e.Pre)
	}
	if e.Post != nil {
		entry = entry.WithField("post", e.Post)
	}
	switch e.Kind {
	case Frame, Refuted, Refinement, Fixpoint, Conjecture:
		entry.Info(e.Detail)
	default:
		entry.Debug(e.Detail)
	}
}

// Recorder keeps every event.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Trace(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
