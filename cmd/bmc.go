package main

import (
	"fmt"
	"os"

	"invsynth/internal/report"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	Facts    string
	Minimize bool
)

var bmcCommand = &cobra.Command{
	Use:   "bmc",
	Short: "search bounded runs for conjecture violations",
	Long: `Every conjecture is checked on the runs of at most --bound steps.
With --facts and --minimize the cube of facts is shrunk to a minimal cube
no such run reaches, and its negation is suggested as a conjecture.`,
	Run: func(*cobra.Command, []string) {
		if err := bmcExec(); err != nil {
			log.Errorf("bmc err: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	addProblemFlags(bmcCommand.Flags())
	bmcCommand.Flags().StringVar(&Facts, "facts", "", "cube of facts, e.g. \"p & !q\"")
	bmcCommand.Flags().BoolVar(&Minimize, "minimize", false, "minimize the cube given by --facts")
}

func bmcExec() error {
	s, err := loadSynthesizer()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	if Minimize {
		if Facts == "" {
			return errors.New("--minimize needs --facts")
		}
		facts, err := parseCube(Facts)
		if err != nil {
			return errors.Wrap(err, "parseCube")
		}
		minimized, t, err := s.MinimizeConjecture(ctx, facts)
		if err != nil {
			return errors.Wrap(err, "MinimizeConjecture")
		}
		if t != nil {
			fmt.Print(report.Trace(facts.Negate().Formula(), Config.BMCBound, t))
			return nil
		}
		fmt.Print(report.Minimized(minimized))
		return nil
	}

	for _, conj := range s.System().Conjectures {
		t, err := s.BMC(ctx, conj)
		if err != nil {
			return errors.Wrapf(err, "BMC %s", conj)
		}
		fmt.Print(report.Trace(conj, Config.BMCBound, t))
	}
	return nil
}
