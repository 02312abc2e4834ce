package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	remoteURL  string
	mirrorPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "gymdesk",
		Short:         "Facility booking and equipment inventory for the school gym",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.remoteURL, "remote-url", "", "remote store endpoint (overrides REMOTE_STORE_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.mirrorPath, "mirror", "", "local mirror directory (overrides MIRROR_PATH)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newServeCmd(flags),
		newSlotCmd(flags),
		newImportBaseCmd(flags),
		newSyncCmd(flags),
	)
	return rootCmd
}
