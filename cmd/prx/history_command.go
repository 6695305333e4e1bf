package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync sessions from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer journal.Close()

			sessions, err := journal.RecentSessions(limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				state := "ok"
				if s.Cancelled {
					state = "cancelled"
				} else if s.Failed > 0 {
					state = "failed"
				}
				rows = append(rows, []string{
					s.StartedAt,
					strconv.Itoa(s.Sources),
					strconv.Itoa(s.Skipped),
					strconv.Itoa(s.Downloaded),
					strconv.Itoa(s.Redownloaded),
					strconv.Itoa(s.Failed),
					state,
				})
			}

			fmt.Println(renderTable(
				[]string{"Started", "Sources", "Skipped", "Downloaded", "Re-downloaded", "Failed", "State"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of sessions to show")
	return cmd
}
