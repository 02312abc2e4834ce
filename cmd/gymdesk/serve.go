package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	accounthandler "gymdesk/internal/accounts/handler"
	accountservice "gymdesk/internal/accounts/service"
	"gymdesk/internal/auth"
	dashboardhandler "gymdesk/internal/dashboard/handler"
	dashboardservice "gymdesk/internal/dashboard/service"
	inventoryhandler "gymdesk/internal/inventory/handler"
	inventoryservice "gymdesk/internal/inventory/service"
	schedulehandler "gymdesk/internal/schedule/handler"
	scheduleservice "gymdesk/internal/schedule/service"
	"gymdesk/internal/state"
	workflowhandler "gymdesk/internal/workflow/handler"
	workflowservice "gymdesk/internal/workflow/service"
	"gymdesk/pkg/app"
	"gymdesk/pkg/config"
	"gymdesk/pkg/contracts"
	"gymdesk/pkg/validation"

	"github.com/spf13/cobra"
)

var errNoSnapshot = errors.New("no snapshot loaded")

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the snapshot and serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(flags, config.ServiceCore)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c)
		},
	}
}

func serve(ctx context.Context, c *core) error {
	log := c.cfg.Log
	log.Info("Starting gymdesk")

	source, err := c.store.Load(ctx)
	if err != nil {
		log.Warn("Serving without the remote store", "source", source.String(), "error", err)
	}

	issuer := auth.NewIssuer(c.cfg.JWTSecret, c.cfg.TokenTTL)
	validator := validation.New(log)

	scheduleSvc := scheduleservice.NewScheduleService(c.store, validator, c.cfg)
	inventorySvc := inventoryservice.NewInventoryService(c.store, validator, c.cfg)
	requestSvc := workflowservice.NewRequestService(c.store, validator, c.cfg)
	accountSvc := accountservice.NewAccountService(c.store, c.remote, issuer, validator, c.cfg)
	dashboardSvc := dashboardservice.NewDashboardService(c.store, c.cfg)
	log.Info("Services initialized")

	handlers := contracts.Handlers{
		schedulehandler.NewScheduleHandler(scheduleSvc, log),
		inventoryhandler.NewInventoryHandler(inventorySvc, log),
		workflowhandler.NewRequestHandler(requestSvc, log),
		accounthandler.NewAccountHandler(accountSvc, log),
		dashboardhandler.NewDashboardHandler(dashboardSvc, log),
	}

	application := app.NewApplication(c.cfg)
	application.SetApp(handlers, issuer, &app.ReadyCheck{
		Name: "snapshot",
		Check: func(ctx context.Context) (string, error) {
			source := c.store.Source()
			if source == state.SourceNone {
				return "", errNoSnapshot
			}
			return source.String(), nil
		},
	})
	application.OnShutdown(func(ctx context.Context) {
		c.close(ctx)
	})

	return application.Serve(ctx)
}
