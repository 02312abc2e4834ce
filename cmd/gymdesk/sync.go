package main

import (
	"fmt"
	"time"

	"gymdesk/pkg/config"

	"github.com/spf13/cobra"
)

func newSyncCmd(flags *rootFlags) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the remote snapshot and refresh the local mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(flags, config.ToolCLI)
			if err != nil {
				return err
			}
			ctx, cancel := c.shutdownContext()
			defer cancel()
			defer c.close(ctx)

			if wait > 0 {
				if err := c.remote.WaitReady(cmd.Context(), wait); err != nil {
					return err
				}
			}

			source, err := c.store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync failed, mirror left untouched: %w", err)
			}

			snap := c.store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "synced from %s: %d bookings, %d items, %d requests\n",
				source, len(snap.WeeklySchedule), len(snap.Inventory), len(snap.AdminRequests))
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for the remote store to become ready")
	return cmd
}
