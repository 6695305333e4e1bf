package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sohfix/prx/internal/domain"
	"github.com/sohfix/prx/internal/service/sync"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var (
		feedURL     string
		outputDir   string
		searchTerm  string
		maxEpisodes int
		oldestFirst bool
		format      string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "One-off download from a feed URL with optional filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := ctx.engine()
			if err != nil {
				return err
			}
			defer cleanup()

			source := domain.PodcastSource{
				Name:           "one-off",
				FeedURL:        feedURL,
				OutputDir:      outputDir,
				FilenameFormat: format,
			}

			runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report := orch.Run(runCtx, sync.Options{
				Sources:     []domain.PodcastSource{source},
				OldestFirst: oldestFirst,
				MaxEpisodes: maxEpisodes,
				SearchTerm:  searchTerm,
			})
			return reportError(report)
		},
	}

	cmd.Flags().StringVarP(&feedURL, "url", "u", "", "RSS/Atom feed URL")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory")
	cmd.Flags().StringVarP(&searchTerm, "search", "s", "", "Case-insensitive title substring filter")
	cmd.Flags().IntVarP(&maxEpisodes, "count", "n", 0, "Limit number of episodes (0 = no limit)")
	cmd.Flags().BoolVar(&oldestFirst, "oldest", false, "Download oldest episodes first")
	cmd.Flags().StringVar(&format, "format", domain.FormatDefault, "Filename format (default or daily)")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
