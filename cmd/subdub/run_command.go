package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"subdub/internal/dubbing"
	"subdub/internal/jobs"
	"subdub/internal/strategy"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		voiceRef     string
		outputPath   string
		strategyName string
		engineName   string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "run <subtitles.srt>",
		Short: "Dub a subtitle file into an audio track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if name := strings.TrimSpace(strategyName); name != "" {
				if !validStrategy(name) {
					return fmt.Errorf("unknown strategy %q (available: %s)", name, strings.Join(strategy.Names(), ", "))
				}
				strategyName = name
			}
			if engine := strings.TrimSpace(engineName); engine != "" {
				cfg.TTS.Engine = engine
			}

			ctx.verbose = verbose
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := []dubbing.Option{}
			if cfg.Jobs.Enabled {
				store, err := jobs.Open(cfg)
				if err != nil {
					return fmt.Errorf("open jobs store: %w", err)
				}
				defer store.Close()
				opts = append(opts, dubbing.WithStore(store))
			}
			if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
				opts = append(opts, dubbing.WithProgress(os.Stderr))
			}

			pipeline, err := dubbing.NewPipeline(cfg, logger, opts...)
			if err != nil {
				return err
			}

			outcome, err := pipeline.Run(cmd.Context(), dubbing.Request{
				SubtitlePath: args[0],
				VoiceRef:     voiceRef,
				OutputPath:   outputPath,
				Strategy:     strategyName,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%s, strategy %s)\n", outcome.OutputPath, outcome.Duration.Round(0), outcome.Strategy)
			fmt.Fprintf(out, "Entries: %d", outcome.EntryCount)
			if outcome.FailedCount > 0 {
				fmt.Fprintf(out, ", failed: %d (silence inserted)", outcome.FailedCount)
			}
			if outcome.WarningCount > 0 {
				fmt.Fprintf(out, ", warnings: %d", outcome.WarningCount)
			}
			fmt.Fprintln(out)
			if outcome.Normalized {
				fmt.Fprintf(out, "Track peak exceeded full scale; normalized by %.3f\n", outcome.PeakScale)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&voiceRef, "voice", "", "Reference voice for synthesis (engine specific)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output WAV path (default: output_dir/<name>.wav)")
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "Sync strategy: "+strings.Join(strategy.Names(), ", "))
	cmd.Flags().StringVar(&engineName, "engine", "", "TTS backend override (command, http)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func validStrategy(name string) bool {
	for _, known := range strategy.Names() {
		if known == name {
			return true
		}
	}
	return false
}
