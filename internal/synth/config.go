package synth

import (
	"time"

	"invsynth/internal/smt"
	"invsynth/internal/trace"

	"github.com/pkg/errors"
)

// Config holds the tunable heuristics of a run. None of them change what a
// successful result means; they trade completeness for tractability.
type Config struct {
	// PostBound caps the post sets sampled by the transformer.
	PostBound int
	// MaxPreSize is the largest pre set tried by Generalize.
	MaxPreSize int
	// BMCBound is the depth of the reachable region used by the checks
	// and by Generalize.
	BMCBound int
	// InitSteps extends the initial region of alpha_init.
	InitSteps int

	// MaxSamples caps lattice samples per clause and frame; 0 means unlimited.
	MaxSamples int
	// MaxRefinements caps clauses added to the family; 0 means unlimited.
	MaxRefinements int
	// MaxFrames caps the frames of one outer iteration; 0 means unlimited.
	MaxFrames int

	Workers      int
	QueryTimeout time.Duration
	DumpDir      string
}

func DefaultConfig() Config {
	return Config{
		PostBound:  6,
		MaxPreSize: 5,
		BMCBound:   5,
		Workers:    1,
	}
}

// Validate rejects negative bounds and budgets.
func (c Config) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"post bound", c.PostBound},
		{"max pre size", c.MaxPreSize},
		{"bmc bound", c.BMCBound},
		{"init steps", c.InitSteps},
		{"max samples", c.MaxSamples},
		{"max refinements", c.MaxRefinements},
		{"max frames", c.MaxFrames},
		{"workers", c.Workers},
	}
	for _, f := range fields {
		if f.value < 0 {
			return errors.Errorf("negative %s: %d", f.name, f.value)
		}
	}
	if c.QueryTimeout < 0 {
		return errors.Errorf("negative query timeout: %s", c.QueryTimeout)
	}
	return nil
}

func (c Config) solverOptions() []smt.Option {
	if c.QueryTimeout > 0 {
		return []smt.Option{smt.WithTimeout(c.QueryTimeout)}
	}
	return nil
}

// Option applies a setting to a Synthesizer.
type Option func(o *options)

type options struct {
	config Config
	tracer trace.Tracer
}

func defaultOptions() options {
	return options{
		config: DefaultConfig(),
		tracer: trace.DefaultTracer{},
	}
}

func (o *options) apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

func WithConfig(c Config) Option {
	return func(o *options) {
		o.config = c
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}
