// Package main provides the satwatch CLI, a terminal client for the Satscan API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/satscan/cmd/satwatch/commands"
	"github.com/RMahshie/satscan/internal/config"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := &commands.Options{
		APIURL: cfg.Watch.APIURL,
		Watch:  cfg.Watch,
	}

	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "satwatch",
		Short: "Watch satscan acquisitions from the terminal",
		Long: `satwatch talks to the Satscan API.

Commands:
  watch     Wait for a scan's spectrum to appear
  status    Show a scan's result folder status
  spectrum  Summarize a scan's parsed spectrum
  table     Print a scan's parsed .tmptxt table`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.APIURL, "api", opts.APIURL, "Satscan API base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(commands.NewWatchCommand(opts))
	rootCmd.AddCommand(commands.NewStatusCommand(opts))
	rootCmd.AddCommand(commands.NewSpectrumCommand(opts))
	rootCmd.AddCommand(commands.NewTableCommand(opts))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
