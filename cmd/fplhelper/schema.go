package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var schemaPrompt bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the players table as the query generator sees it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		schema, err := a.store.Describe(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if schemaPrompt {
			fmt.Fprint(w, schema.Prompt())
			return nil
		}

		data := pterm.TableData{{"column", "type", "meaning"}}
		for _, c := range schema.Columns {
			data = append(data, []string{c.Name, c.Type, c.Note})
		}
		out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)

		if n, err := a.store.Count(ctx); err == nil {
			fmt.Fprintf(w, "\n%d players stored (%s)\n", n, a.cfg.StoreDriver)
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaPrompt, "prompt", false, "print the exact schema text sent to the LLM")
}
