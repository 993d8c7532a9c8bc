package main

import (
	"fmt"
	"os"

	"invsynth/internal/formula"
	"invsynth/internal/report"
	"invsynth/internal/transys"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	Invariant string
	Explicit  bool
	Strategy  string
)

var checkCommand = &cobra.Command{
	Use:   "check",
	Short: "check that an invariant is inductive and implies safety",
	Long:  `Without --invariant the conjunction of the conjectures is checked.`,
	Run: func(*cobra.Command, []string) {
		if err := checkExec(); err != nil {
			log.Errorf("check err: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	addProblemFlags(checkCommand.Flags())
	checkCommand.Flags().StringVar(&Invariant, "invariant", "", "formula to check")
	checkCommand.Flags().BoolVar(&Explicit, "explicit", false, "also check every reachable state explicitly")
	checkCommand.Flags().StringVar(&Strategy, "strategy", "dfs", "explicit search order: dfs or bfs")
}

func checkExec() error {
	s, err := loadSynthesizer()
	if err != nil {
		return err
	}
	sys := s.System()
	inv := formula.And(sys.Conjectures...)
	if Invariant != "" {
		if inv, err = formula.Parse(Invariant); err != nil {
			return errors.Wrap(err, "Parse")
		}
		if err := sys.CheckFormula(inv); err != nil {
			return errors.Wrap(err, "CheckFormula")
		}
	}
	ctx, cancel := signalContext()
	defer cancel()

	cex, err := s.CheckInductive(ctx, inv)
	if err != nil {
		return errors.Wrap(err, "CheckInductive")
	}
	fmt.Print(report.Inductive(inv, cex))

	if cex, err = s.CheckSufficient(ctx, inv, sys.Safety); err != nil {
		return errors.Wrap(err, "CheckSufficient")
	}
	fmt.Print(report.Sufficient(inv, sys.Safety, cex))

	if !Explicit {
		return nil
	}
	r, err := transys.Explore(ctx, sys, Strategy)
	if err != nil {
		return errors.Wrap(err, "Explore")
	}
	fmt.Print(report.Reachable(inv, r.Count(), r.Violation(inv)))
	return nil
}
