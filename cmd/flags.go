package main

import (
	"context"
	"os"
	"os/signal"

	"invsynth/internal/formula"
	"invsynth/internal/synth"
	"invsynth/internal/trace"
	"invsynth/internal/transys"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	ProblemFile string
	Config      = synth.DefaultConfig()
)

// addProblemFlags registers the problem file and every tunable of a run.
func addProblemFlags(fs *flag.FlagSet) {
	fs.StringVarP(&ProblemFile, "file", "f", "", "problem file or http(s) URL")
	fs.IntVar(&Config.PostBound, "post-bound", Config.PostBound, "largest post set sampled per clause")
	fs.IntVar(&Config.MaxPreSize, "max-pre-size", Config.MaxPreSize, "largest pre set tried when generalizing")
	fs.IntVar(&Config.BMCBound, "bound", Config.BMCBound, "depth of bounded searches")
	fs.IntVar(&Config.InitSteps, "init-steps", Config.InitSteps, "steps taken from the initial states before abstracting")
	fs.IntVar(&Config.MaxSamples, "max-samples", Config.MaxSamples, "lattice samples per clause and frame, 0 for no limit")
	fs.IntVar(&Config.MaxRefinements, "max-refinements", Config.MaxRefinements, "clauses added by refinement, 0 for no limit")
	fs.IntVar(&Config.MaxFrames, "max-frames", Config.MaxFrames, "frames per refinement round, 0 for no limit")
	fs.IntVar(&Config.Workers, "workers", Config.Workers, "clauses abstracted concurrently")
	fs.DurationVar(&Config.QueryTimeout, "timeout", Config.QueryTimeout, "per query solver timeout, 0 for none")
	fs.StringVar(&Config.DumpDir, "dump-cnf", Config.DumpDir, "write every transformer context to this directory in DIMACS")
}

func loadSynthesizer() (*synth.Synthesizer, error) {
	if ProblemFile == "" {
		return nil, errors.New("no problem file, use --file")
	}
	sys, err := transys.LoadFile(ProblemFile)
	if err != nil {
		return nil, errors.Wrap(err, "LoadFile")
	}
	log.Debugf("loaded %s: %d vars, %d actions, %d conjectures",
		ProblemFile, len(sys.Vars), len(sys.Actions), len(sys.Conjectures))
	return synth.New(sys,
		synth.WithConfig(Config),
		synth.WithTracer(trace.LoggingTracer{Logger: log.StandardLogger()}),
	)
}

// parseCube reads a conjunction of literals.
func parseCube(src string) (formula.Cube, error) {
	f, err := formula.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "Parse")
	}
	return formula.ToCube(f)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
