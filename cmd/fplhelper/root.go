package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	envFile string
	verbose bool
)

// errSilent fails a command whose error was already shown to the user.
var errSilent = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "fplhelper",
	Short: "Ask Fantasy Premier League questions in plain English",
	Long: `fplhelper keeps a local table of FPL player statistics, turns questions into
SQL with an LLM, runs them read-only and explains the results as advice.

Run "fplhelper refresh" once to load player data, then "fplhelper chat".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI application. Ctrl+C or SIGTERM cancels the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show pipeline logs in interactive commands")

	rootCmd.AddCommand(askCmd, chatCmd, refreshCmd, serveCmd, schemaCmd, watchCmd)
}
