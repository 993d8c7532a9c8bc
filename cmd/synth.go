package main

import (
	"fmt"
	"os"

	"invsynth/internal/report"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var synthCommand = &cobra.Command{
	Use:   "synth",
	Short: "synthesize an inductive invariant from the conjectures",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		if err := synthExec(); err != nil {
			log.Errorf("synth err: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	addProblemFlags(synthCommand.Flags())
}

func synthExec() error {
	s, err := loadSynthesizer()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	res, err := s.Run(ctx)
	if err != nil {
		return errors.Wrap(err, "Run")
	}
	fmt.Print(report.Synthesis(res))
	if !res.Success {
		return nil
	}

	safety := s.System().Safety
	cex, err := s.CheckSufficient(ctx, res.Invariant, safety)
	if err != nil {
		return errors.Wrap(err, "CheckSufficient")
	}
	fmt.Print(report.Sufficient(res.Invariant, safety, cex))
	return nil
}
