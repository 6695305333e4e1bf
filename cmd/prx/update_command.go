package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sohfix/prx/internal/domain"
	"github.com/sohfix/prx/internal/service/sync"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var oldestFirst bool
	var maxEpisodes int

	cmd := &cobra.Command{
		Use:   "update [source...]",
		Short: "Sync configured sources, downloading missing or damaged episodes",
		Long:  "Without arguments every configured source is synced; naming sources restricts the run to those feeds.",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := ctx.engine()
			if err != nil {
				return err
			}
			defer cleanup()

			var sources []domain.PodcastSource
			if len(args) == 0 {
				sources = ctx.cfg.AllSources()
				if len(sources) == 0 {
					return fmt.Errorf("no sources configured in %s", *ctx.configPath)
				}
			} else {
				for _, name := range args {
					source, ok := ctx.cfg.FindSource(name)
					if !ok {
						return fmt.Errorf("unknown source: %s", name)
					}
					sources = append(sources, source)
				}
			}

			runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report := orch.Run(runCtx, sync.Options{
				Sources:     sources,
				OldestFirst: oldestFirst,
				MaxEpisodes: maxEpisodes,
			})
			return reportError(report)
		},
	}

	cmd.Flags().BoolVar(&oldestFirst, "oldest", false, "Download oldest episodes first")
	cmd.Flags().IntVarP(&maxEpisodes, "count", "n", 0, "Limit episodes per source (0 = no limit)")
	return cmd
}

// reportError maps a finished report onto the process exit status
func reportError(report *domain.SessionReport) error {
	if report.Cancelled {
		return domain.ErrCancelled
	}
	if failed := report.Count(domain.OutcomeFailed); failed > 0 {
		return fmt.Errorf("%d episode(s) failed", failed)
	}
	if len(report.SourceFailures) > 0 {
		return fmt.Errorf("%d source(s) failed", len(report.SourceFailures))
	}
	return nil
}
