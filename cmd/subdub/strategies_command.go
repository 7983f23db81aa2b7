package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"subdub/internal/strategy"
)

func newStrategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "strategies",
		Short:       "List the available time-synchronization strategies",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			caser := cases.Title(language.English)
			rows := make([][]string, 0, len(strategy.Catalog()))
			for _, info := range strategy.Catalog() {
				display := caser.String(strings.ReplaceAll(info.Name, "-", " "))
				rows = append(rows, []string{
					info.Name,
					display,
					info.Summary,
					info.Timing,
					info.Synthesis,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Display", "Summary", "Timing", "Synthesis"},
				rows,
			))
			return nil
		},
	}
}
