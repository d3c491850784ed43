package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var askShowSQL bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question and exit",
	Example: `  fplhelper ask "Who are the best value defenders?"
  fplhelper ask --sql "Top 5 midfielders by form"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator(ctx)
		if err != nil {
			return err
		}
		a.warnIfEmpty(ctx)

		stop := startSpinner("Thinking...")
		out := orch.Handle(ctx, nil, strings.Join(args, " "))
		stop()

		renderOutcome(cmd.OutOrStdout(), newMarkdownRenderer(), out, askShowSQL)
		if out.Err != nil {
			return errSilent
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askShowSQL, "sql", false, "print the generated SQL")
}
