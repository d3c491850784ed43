package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/aman-zulfiqar/fpl-advisor/internal/events"
	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow refresh runs as they happen",
	Long: `watch subscribes to refresh announcements on Redis and prints each run as it
finishes, whichever process ran it. Requires REDIS_ADDR.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.redis == nil {
			return errors.New("watch needs a reachable Redis, set REDIS_ADDR")
		}

		if rs := a.runStore(); rs != nil {
			if last, err := rs.Latest(ctx); err == nil {
				pterm.Info.Println("Last run: " + describeRun(last))
			}
		}
		pterm.Info.Println("Waiting for refresh runs, Ctrl+C to stop.")

		ps := events.NewPubSub(a.redis, a.logger)
		err = ps.PSubscribe(ctx, events.RefreshStatusPattern, func(run *models.RefreshRun) {
			if run.Status == models.RefreshOK {
				pterm.Success.Println(describeRun(run))
			} else {
				pterm.Error.Println(describeRun(run))
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func describeRun(run *models.RefreshRun) string {
	s := fmt.Sprintf("%s %s  %d players  %s",
		run.FinishedAt.Local().Format(time.DateTime), run.Status, run.Players, run.Duration().Round(time.Millisecond))
	if run.Error != "" {
		s += "  " + run.Error
	}
	return s
}
