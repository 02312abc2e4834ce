package main

import (
	"fmt"
	"io"
	"os"

	"gymdesk/internal/permission"
	scheduleservice "gymdesk/internal/schedule/service"
	"gymdesk/pkg/config"
	"gymdesk/pkg/model"
	"gymdesk/pkg/validation"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cliActor performs imports; the operator running the binary is trusted.
var cliActor = permission.Actor{ID: "cli", Name: "gymdesk", Role: model.RoleMaster}

type baseScheduleFile struct {
	Schedule []model.BaseScheduleEntry `yaml:"schedule"`
}

func parseBaseSchedule(r io.Reader) ([]model.BaseScheduleEntry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file baseScheduleFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("schedule file is empty")
		}
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}
	return file.Schedule, nil
}

func newImportBaseCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import-base FILE.yaml",
		Short: "Replace the recurring base schedule from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := parseBaseSchedule(f)
			if err != nil {
				return err
			}

			c, err := openCore(flags, config.ToolCLI)
			if err != nil {
				return err
			}
			ctx, cancel := c.shutdownContext()
			defer cancel()
			defer c.close(ctx)

			// The replacement must start from the store's state, not a
			// fallback copy.
			if _, err := c.store.Load(cmd.Context()); err != nil {
				return fmt.Errorf("remote store unavailable: %w", err)
			}

			svc := scheduleservice.NewScheduleService(c.store, validation.New(c.cfg.Log), c.cfg)
			receipt, err := svc.ReplaceBaseSchedule(cmd.Context(), cliActor, entries)
			if err != nil {
				return err
			}
			if err := receipt.Wait(cmd.Context()); err != nil {
				return fmt.Errorf("base schedule applied locally but not persisted: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d base schedule entries\n", len(entries))
			return nil
		},
	}
}
