package dubbing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"subdub/internal/audio"
	"subdub/internal/config"
	"subdub/internal/jobs"
	"subdub/internal/logging"
	"subdub/internal/strategy"
	"subdub/internal/stretch"
	"subdub/internal/subtitles"
	"subdub/internal/timeline"
	"subdub/internal/tts"
)

// Request describes one dubbing invocation.
type Request struct {
	SubtitlePath string
	VoiceRef     string
	// OutputPath defaults to the configured output directory with the
	// subtitle file's name and a .wav extension.
	OutputPath string
	// Strategy defaults to the configured sync strategy.
	Strategy string
}

// Outcome summarizes a finished run.
type Outcome struct {
	RunID        string
	OutputPath   string
	Strategy     string
	EntryCount   int
	WarningCount int
	FailedCount  int
	Overlaps     int
	Duration     time.Duration
	Normalized   bool
	PeakScale    float64
}

// Pipeline wires the stages of a dubbing run together.
type Pipeline struct {
	cfg       *config.Config
	engine    tts.Engine
	stretcher stretch.Stretcher
	store     *jobs.Store
	logger    *slog.Logger
	progress  io.Writer
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithEngine overrides the synthesis engine, bypassing configuration.
func WithEngine(engine tts.Engine) Option {
	return func(p *Pipeline) { p.engine = engine }
}

// WithStretcher overrides the time stretcher.
func WithStretcher(s stretch.Stretcher) Option {
	return func(p *Pipeline) { p.stretcher = s }
}

// WithStore attaches a run-history store.
func WithStore(store *jobs.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithProgress renders a progress bar to the writer during rendering.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) { p.progress = w }
}

// NewPipeline builds a pipeline from configuration.
func NewPipeline(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.engine == nil {
		engine, err := tts.New(cfg.TTS)
		if err != nil {
			return nil, Wrap(ErrConfiguration, "setup", "engine", "", err)
		}
		if cmd, ok := engine.(*tts.CommandEngine); ok && cfg.Paths.WorkDir != "" {
			cmd.WithWorkDir(cfg.Paths.WorkDir)
		}
		p.engine = engine
	}
	if p.stretcher == nil {
		ffmpeg := stretch.NewFFmpegStretcher(cfg.FFmpegBinary())
		if cfg.Paths.WorkDir != "" {
			ffmpeg.WithWorkDir(cfg.Paths.WorkDir)
		}
		p.stretcher = ffmpeg
	}
	return p, nil
}

// Run executes one dubbing invocation end to end. Per-entry synthesis
// failures degrade to silence placeholders; only setup, cancellation, and
// export problems abort the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = p.cfg.Sync.Strategy
	}
	outputPath, err := p.resolveOutputPath(req)
	if err != nil {
		return nil, err
	}

	entries, err := subtitles.ParseFile(req.SubtitlePath)
	if err != nil {
		return nil, Wrap(ErrValidation, "parse", req.SubtitlePath, "", err)
	}

	runID := uuid.NewString()
	logger := p.logger.With(
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldStrategy, strategyName))

	// The strategy is built before any tool probes so an unknown name fails
	// as a configuration error, not a tool failure.
	params := strategy.ParamsFrom(p.cfg.Sync, p.cfg.Audio.SampleRate)
	strat, err := strategy.New(strategyName, p.engine, p.stretcher, params, req.VoiceRef, logger)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "setup", "strategy", "", err)
	}

	if err := p.checkTools(ctx, strat.Name()); err != nil {
		return nil, err
	}

	logger.Info("starting dubbing run",
		logging.String("subtitles", req.SubtitlePath),
		logging.String("output", outputPath),
		logging.Int("entries", len(entries)))

	if p.store != nil {
		if _, err := p.store.RecordStart(ctx, jobs.Run{
			RunID:        runID,
			SubtitlePath: req.SubtitlePath,
			VoiceRef:     req.VoiceRef,
			OutputPath:   outputPath,
			Strategy:     strategyName,
			Engine:       p.engine.Name(),
		}); err != nil {
			return nil, Wrap(nil, "jobs", "record start", "", err)
		}
	}

	outcome, err := p.render(ctx, logger, runID, strat, outputPath, entries)
	if err != nil {
		if p.store != nil {
			if failErr := p.store.Fail(context.WithoutCancel(ctx), runID, err.Error()); failErr != nil {
				logger.Warn("recording run failure", logging.Error(failErr))
			}
		}
		return nil, err
	}

	if p.store != nil {
		if err := p.store.Complete(ctx, runID, jobs.Summary{
			EntryCount:      outcome.EntryCount,
			WarningCount:    outcome.WarningCount,
			FailedCount:     outcome.FailedCount,
			DurationSeconds: outcome.Duration.Seconds(),
			PeakScale:       outcome.PeakScale,
		}); err != nil {
			logger.Warn("recording run completion", logging.Error(err))
		}
	}
	return outcome, nil
}

func (p *Pipeline) render(
	ctx context.Context,
	logger *slog.Logger,
	runID string,
	strat strategy.Strategy,
	outputPath string,
	entries subtitles.List,
) (*Outcome, error) {
	var tick func()
	if p.progress != nil {
		bar := progressbar.NewOptions(len(entries),
			progressbar.OptionSetWriter(p.progress),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		tick = func() { _ = bar.Add(1) }
	}

	results, err := strategy.Produce(ctx, strat, entries, p.cfg.Workers.Synthesis, logger, tick)
	if err != nil {
		return nil, Wrap(nil, "render", strat.Name(), "", err)
	}

	segments := make([]timeline.Segment, len(results))
	warnings, failed := 0, 0
	for i, r := range results {
		segments[i] = timeline.Segment{EntryIndex: r.Entry.Index, Start: r.Start, Clip: r.Clip}
		warnings += r.Warnings()
		if r.Failed {
			failed++
		}
	}

	var minSpan time.Duration
	if !strat.SequentialPlacement() {
		minSpan = entries.TotalSpan()
	}
	assembler := timeline.New(p.cfg.Audio.SampleRate, logger)
	mixed, report, err := assembler.Assemble(segments, minSpan)
	if err != nil {
		return nil, Wrap(nil, "assemble", "", "", err)
	}
	warnings += len(report.Overlaps)
	if report.Normalized {
		warnings++
	}

	if err := audio.WriteWAVFile(outputPath, mixed); err != nil {
		return nil, Wrap(ErrExport, "export", outputPath, "", err)
	}

	logger.Info("dubbing run complete",
		logging.String("output", outputPath),
		logging.Duration("track", report.Duration),
		logging.Int("warnings", warnings),
		logging.Int("failed_entries", failed))

	return &Outcome{
		RunID:        runID,
		OutputPath:   outputPath,
		Strategy:     strat.Name(),
		EntryCount:   len(entries),
		WarningCount: warnings,
		FailedCount:  failed,
		Overlaps:     len(report.Overlaps),
		Duration:     report.Duration,
		Normalized:   report.Normalized,
		PeakScale:    report.PeakScale,
	}, nil
}

// checkTools probes the external dependencies a run needs before any audio
// is synthesized. An unavailable engine is fatal; so is a missing ffmpeg
// when the strategy stretches.
func (p *Pipeline) checkTools(ctx context.Context, strategyName string) error {
	if checker, ok := p.engine.(tts.HealthChecker); ok {
		if err := checker.Check(ctx); err != nil {
			return Wrap(ErrExternalTool, "setup", "tts engine", "", err)
		}
	}
	if !strategyStretches(strategyName) {
		return nil
	}
	if checker, ok := p.stretcher.(interface{ Check(context.Context) error }); ok {
		if err := checker.Check(ctx); err != nil {
			return Wrap(ErrExternalTool, "setup", "ffmpeg", "", err)
		}
	}
	return nil
}

func strategyStretches(name string) bool {
	switch name {
	case strategy.NameStretch, strategy.NameHQStretch, strategy.NameAdaptive:
		return true
	default:
		return false
	}
}

func (p *Pipeline) resolveOutputPath(req Request) (string, error) {
	if strings.TrimSpace(req.SubtitlePath) == "" {
		return "", Wrap(ErrValidation, "setup", "subtitles", "path is required", nil)
	}
	if req.OutputPath != "" {
		if dir := filepath.Dir(req.OutputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", Wrap(ErrExport, "setup", "output directory", "", err)
			}
		}
		return req.OutputPath, nil
	}
	if p.cfg.Paths.OutputDir == "" {
		return "", Wrap(ErrConfiguration, "setup", "output", "no output path or output_dir configured", nil)
	}
	if err := os.MkdirAll(p.cfg.Paths.OutputDir, 0o755); err != nil {
		return "", Wrap(ErrExport, "setup", "output directory", "", err)
	}
	base := strings.TrimSuffix(filepath.Base(req.SubtitlePath), filepath.Ext(req.SubtitlePath))
	if base == "" {
		return "", Wrap(ErrValidation, "setup", "subtitles", fmt.Sprintf("cannot derive output name from %q", req.SubtitlePath), nil)
	}
	return filepath.Join(p.cfg.Paths.OutputDir, base+".wav"), nil
}
