package main

import (
	goflag "flag"
	"fmt"
	"net/http"
	"os"

	"invsynth/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	Verbose     bool
	MetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "invsynth",
	Short: "invsynth, inductive invariant synthesis by abstraction refinement",
	Long:  "",
	PersistentPreRun: func(*cobra.Command, []string) {
		if Verbose {
			log.SetLevel(log.DebugLevel)
		}
		if MetricsAddr != "" {
			serveMetrics(MetricsAddr)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "log every sample and generator")
	rootCmd.PersistentFlags().StringVar(&MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
}

func serveMetrics(addr string) {
	metrics.Register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Infof("serving metrics on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("metrics server: %v", err)
		}
	}()
}

func main() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	rootCmd.AddCommand(versionCommand)
	rootCmd.AddCommand(synthCommand)
	rootCmd.AddCommand(checkCommand)
	rootCmd.AddCommand(bmcCommand)
	rootCmd.AddCommand(generalizeCommand)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
