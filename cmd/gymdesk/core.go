package main

import (
	"context"
	"fmt"
	"os"

	"gymdesk/internal/mirror"
	"gymdesk/internal/remote"
	"gymdesk/internal/state"
	"gymdesk/pkg/config"
)

// core is the state store with its two backends, shared by every
// subcommand.
type core struct {
	cfg    *config.Config
	remote *remote.Client
	mirror *mirror.Mirror
	store  *state.Store
}

// applyFlags lets CLI flags win over the environment.
func applyFlags(flags *rootFlags) {
	overrides := map[string]string{
		config.EnvRemoteStoreURL: flags.remoteURL,
		config.EnvMirrorPath:     flags.mirrorPath,
		config.EnvLogLevel:       flags.logLevel,
	}
	for key, value := range overrides {
		if value != "" {
			os.Setenv(key, value)
		}
	}
}

func openCore(flags *rootFlags, service string) (*core, error) {
	applyFlags(flags)
	cfg, err := config.New(service)
	if err != nil {
		return nil, err
	}
	cfg.LogConfiguration()

	client := remote.NewClient(remote.Options{
		Endpoint:      cfg.RemoteStoreURL,
		LoginTimeout:  cfg.RemoteLoginTimeout,
		DataTimeout:   cfg.RemoteDataTimeout,
		ActionTimeout: cfg.RemoteActionTimeout,
	}, cfg.Log)

	m, err := mirror.Open(mirror.DefaultConfig(cfg.MirrorPath), cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}

	store := state.New(client, m, state.Options{ActivityLimit: cfg.ActivityLogLimit}, cfg.Log)
	return &core{cfg: cfg, remote: client, mirror: m, store: store}, nil
}

// close drains pending actions before the mirror goes away.
func (c *core) close(ctx context.Context) {
	if err := c.store.Close(ctx); err != nil {
		c.cfg.Log.Error("Pending actions were not all sent", "error", err)
	}
	if err := c.mirror.Close(); err != nil {
		c.cfg.Log.Error("Failed to close mirror", "error", err)
	}
}

func (c *core) shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
}
