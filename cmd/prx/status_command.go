package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sohfix/prx/internal/domain"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <source>",
		Short: "Classify every episode of a source without downloading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feeds, classifier, err := ctx.inspector()
			if err != nil {
				return err
			}
			source, ok := ctx.cfg.FindSource(args[0])
			if !ok {
				return fmt.Errorf("unknown source: %s", args[0])
			}

			runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			episodes, err := feeds.Fetch(runCtx, source.FeedURL)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(episodes))
			var missing, complete, damaged int
			for i := range episodes {
				episode := &episodes[i]
				path := filepath.Join(source.OutputDir, domain.EpisodeFilename(episode, source.Format()))
				state := classifier.Classify(runCtx, episode, path)
				switch state {
				case domain.StateMissing:
					missing++
				case domain.StateComplete:
					complete++
				case domain.StateDamaged:
					damaged++
				}
				size := "unknown"
				if episode.HasDeclaredSize() {
					size = humanize.Bytes(uint64(episode.DeclaredSize))
				}
				published := ""
				if episode.PublishedAt != nil {
					published = episode.PublishedAt.Format("2006-01-02")
				}
				rows = append(rows, []string{episode.Title, published, size, state.String()})
			}

			fmt.Println(renderTable(
				[]string{"Episode", "Published", "Size", "State"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Printf("%d complete, %d missing, %d damaged\n", complete, missing, damaged)
			return nil
		},
	}
	return cmd
}
