package main

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch current player statistics from the FPL API",
	Long: `refresh downloads the full player roster from the official FPL API and upserts
it into the local players table by player id. Nothing is written unless the whole
roster was fetched. When REDIS_ADDR is set the run is recorded and announced.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ing, err := a.ingestor()
		if err != nil {
			return err
		}

		stop := startSpinner("Fetching players from the FPL API...")
		run, err := ing.Refresh(ctx)
		stop()
		if err != nil {
			pterm.Error.Println(err.Error())
			return errSilent
		}

		pterm.Success.Println(fmt.Sprintf("Stored %d players in %s (run %s)",
			run.Players, run.Duration().Round(time.Millisecond), run.ID))
		return nil
	},
}
