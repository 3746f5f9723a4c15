package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevel string

	ctx := newCommandContext(&configFlag, &logLevel)
	return buildRootCommand(ctx, &configFlag, &logLevel)
}

func buildRootCommand(ctx *commandContext, configFlag, logLevel *string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bcctl",
		Short:         "Back content administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(configFlag, "config", "c", "", "Configuration file path (default: ./config.toml)")
	rootCmd.PersistentFlags().StringVar(logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newJournalCommand(ctx))
	rootCmd.AddCommand(newAccountCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newEventsCommand(ctx))

	return rootCmd
}
