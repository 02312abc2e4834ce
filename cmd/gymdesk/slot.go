package main

import (
	"encoding/json"
	"fmt"

	scheduleservice "gymdesk/internal/schedule/service"
	"gymdesk/pkg/config"
	"gymdesk/pkg/dates"
	"gymdesk/pkg/model"
	"gymdesk/pkg/validation"

	"github.com/spf13/cobra"
)

type slotFlags struct {
	date     string
	period   string
	location string
}

func newSlotCmd(flags *rootFlags) *cobra.Command {
	sf := &slotFlags{}

	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Show who holds a slot, or a whole day when --period is omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dates.Parse(sf.date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			c, err := openCore(flags, config.ToolCLI)
			if err != nil {
				return err
			}
			ctx, cancel := c.shutdownContext()
			defer cancel()
			defer c.close(ctx)

			if source, err := c.store.Load(cmd.Context()); err != nil {
				c.cfg.Log.Warn("Resolving from fallback snapshot", "source", source.String(), "error", err)
			}

			svc := scheduleservice.NewScheduleService(c.store, validation.New(c.cfg.Log), c.cfg)
			var out any
			if sf.period == "" {
				out, err = svc.ResolveDay(date, model.Facility(sf.location))
			} else {
				out, err = svc.ResolveSlot(date, model.Period(sf.period), model.Facility(sf.location))
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&sf.date, "date", dates.Today().String(), "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sf.period, "period", "", "period, e.g. 1교시")
	cmd.Flags().StringVar(&sf.location, "location", string(model.Gymnasium), "facility")
	return cmd
}
