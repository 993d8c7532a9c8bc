package main

import (
	"fmt"
	"os"

	"invsynth/internal/report"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var generalizeCommand = &cobra.Command{
	Use:   "generalize",
	Short: "find a relative inductive conjecture excluding a cube of facts",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		if err := generalizeExec(); err != nil {
			log.Errorf("generalize err: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	addProblemFlags(generalizeCommand.Flags())
	generalizeCommand.Flags().StringVar(&Facts, "facts", "", "cube of facts, e.g. \"p & !q\"")
}

func generalizeExec() error {
	if Facts == "" {
		return errors.New("no facts, use --facts")
	}
	facts, err := parseCube(Facts)
	if err != nil {
		return errors.Wrap(err, "parseCube")
	}
	s, err := loadSynthesizer()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	found, err := s.Generalize(ctx, facts)
	if err != nil {
		return errors.Wrap(err, "Generalize")
	}
	fmt.Print(report.Conjectures(found))
	return nil
}
