package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const version = "3.0.0"

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "prx",
		Short:         "Podcast feed synchronizer",
		Long:          "prx keeps local directories in sync with podcast feeds, re-downloading only episodes that are missing or damaged.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", defaultConfigPath(), "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&ctx.quiet, "quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(newUpdateCommand(ctx))
	rootCmd.AddCommand(newDownloadCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

func defaultConfigPath() string {
	if env := os.Getenv("PRX_CONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "prx.yaml"
	}
	return filepath.Join(home, ".config", "prx", "prx.yaml")
}
