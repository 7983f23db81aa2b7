package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"subdub/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show recent dubbing runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Jobs.Enabled {
				return fmt.Errorf("run history is disabled; set jobs.enabled = true in the configuration")
			}

			store, err := jobs.Open(cfg)
			if err != nil {
				return fmt.Errorf("open jobs store: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No dubbing runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.RunID),
					run.Status,
					run.Strategy,
					run.Engine,
					strconv.Itoa(run.EntryCount),
					strconv.Itoa(run.WarningCount),
					formatSeconds(run.DurationSeconds),
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					run.OutputPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Status", "Strategy", "Engine", "Entries", "Warnings", "Length", "Started", "Output"},
				rows,
				5, 6, 7,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(100 * time.Millisecond).String()
}
