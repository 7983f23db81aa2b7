package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"subdub/internal/audio"
	"subdub/internal/config"
	"subdub/internal/logging"
	"subdub/internal/stretch"
	"subdub/internal/subtitles"
	"subdub/internal/tts"
)

// Strategy names accepted on the command line and in configuration.
const (
	NameBasic     = "basic"
	NameStretch   = "stretch"
	NameHQStretch = "hq-stretch"
	NameAdaptive  = "adaptive"
	NameIterative = "iterative"
)

// Event types attached to per-entry warnings.
const (
	eventSynthesisFailed = "synthesis_failed"
	eventRatioClamped    = "ratio_clamped"
	eventStretchFallback = "stretch_fallback"
	eventAttemptFailed   = "synthesis_attempt_failed"
)

// Rendered is one entry's finished clip plus the flags the pipeline folds
// into its run report.
type Rendered struct {
	Entry subtitles.Entry
	Clip  audio.Clip
	// Start is the placement offset on the output track; filled by Produce.
	Start time.Duration
	// Failed reports that synthesis failed and Clip is a silence placeholder.
	Failed bool
	// Clamped reports that the speed ratio was pulled into the safe range.
	Clamped bool
	// StretchFallback reports that stretching failed and the clip was kept
	// at its natural pace.
	StretchFallback bool
	// AttemptFailed reports that a synthesis attempt failed mid-search and
	// the search stopped early on the best take so far.
	AttemptFailed bool
	// Attempts counts synthesis calls spent on this entry.
	Attempts int
}

// Warnings counts the report-worthy events on this entry.
func (r Rendered) Warnings() int {
	n := 0
	if r.Failed {
		n++
	}
	if r.Clamped {
		n++
	}
	if r.StretchFallback {
		n++
	}
	if r.AttemptFailed {
		n++
	}
	return n
}

// Strategy renders one subtitle entry into a timed clip. Implementations
// degrade instead of failing: a broken synthesis call yields a silence
// placeholder with Failed set, and only context cancellation returns an
// error.
type Strategy interface {
	Name() string
	Description() string
	Render(ctx context.Context, entry subtitles.Entry) (Rendered, error)

	// SequentialPlacement reports that clips are concatenated back to back
	// instead of anchored at their cue start offsets.
	SequentialPlacement() bool
}

// Params carries the tuning knobs shared across policies.
type Params struct {
	SampleRate           int
	Threshold            float64
	Wide                 SafeRange
	HQ                   SafeRange
	Tight                SafeRange
	AdaptiveTolerance    float64
	IterativeMaxAttempts int
	IterativeTolerance   float64
	BiasAdjustmentFactor float64
	MaxLengthBias        float64
}

// ParamsFrom maps configuration onto strategy parameters.
func ParamsFrom(sync config.Sync, sampleRate int) Params {
	return Params{
		SampleRate:           sampleRate,
		Threshold:            sync.StretchThreshold,
		Wide:                 SafeRange{Min: sync.MinSpeedRatio, Max: sync.MaxSpeedRatio},
		HQ:                   SafeRange{Min: sync.HQMinSpeedRatio, Max: sync.HQMaxSpeedRatio},
		Tight:                SafeRange{Min: sync.AdaptiveMinSpeedRatio, Max: sync.AdaptiveMaxSpeedRatio},
		AdaptiveTolerance:    sync.AdaptiveTolerance,
		IterativeMaxAttempts: sync.IterativeMaxAttempts,
		IterativeTolerance:   sync.IterativeTolerance,
		BiasAdjustmentFactor: sync.BiasAdjustmentFactor,
		MaxLengthBias:        sync.MaxLengthBias,
	}
}

// New constructs the named strategy.
func New(name string, engine tts.Engine, stretcher stretch.Stretcher, params Params, voiceRef string, logger *slog.Logger) (Strategy, error) {
	logger = logging.NewComponentLogger(logger, "strategy")
	base := base{
		engine:   engine,
		params:   params,
		voiceRef: voiceRef,
		logger:   logger,
	}
	switch name {
	case NameBasic:
		return &basicStrategy{base: base}, nil
	case NameStretch:
		return &stretchStrategy{
			base:        base,
			name:        NameStretch,
			description: "stretch speech into each cue window inside a wide safe range",
			stretcher:   stretcher,
			bounds:      params.Wide,
		}, nil
	case NameHQStretch:
		return &stretchStrategy{
			base:        base,
			name:        NameHQStretch,
			description: "stretch speech into each cue window inside a narrow range for cleaner audio",
			stretcher:   stretcher,
			bounds:      params.HQ,
		}, nil
	case NameAdaptive:
		return &adaptiveStrategy{base: base, stretcher: stretcher}, nil
	case NameIterative:
		return &iterativeStrategy{base: base}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Names())
	}
}

// Names lists the strategy names in catalog order.
func Names() []string {
	return []string{NameBasic, NameStretch, NameHQStretch, NameAdaptive, NameIterative}
}

// Info describes one strategy for human-facing listings.
type Info struct {
	Name      string
	Summary   string
	Timing    string
	Synthesis string
}

// Catalog returns the strategy listing shown by `subdub strategies`.
func Catalog() []Info {
	return []Info{
		{
			Name:      NameBasic,
			Summary:   "concatenate clips at natural pace, ignoring cue timing",
			Timing:    "drifts with speech length",
			Synthesis: "one call per entry",
		},
		{
			Name:      NameStretch,
			Summary:   "stretch speech into each cue window inside a wide safe range",
			Timing:    "anchored to cue starts",
			Synthesis: "one call per entry",
		},
		{
			Name:      NameHQStretch,
			Summary:   "stretch speech into each cue window inside a narrow range for cleaner audio",
			Timing:    "anchored to cue starts",
			Synthesis: "one call per entry",
		},
		{
			Name:      NameAdaptive,
			Summary:   "regenerate with a length bias, then fine-stretch inside a tight range",
			Timing:    "anchored to cue starts",
			Synthesis: "up to two calls per entry",
		},
		{
			Name:      NameIterative,
			Summary:   "search length biases across attempts and keep the closest take, never stretching",
			Timing:    "anchored to cue starts",
			Synthesis: "bounded attempts per entry",
		},
	}
}

// base bundles the dependencies every strategy shares.
type base struct {
	engine   tts.Engine
	params   Params
	voiceRef string
	logger   *slog.Logger
}

func (b *base) synthesize(ctx context.Context, entry subtitles.Entry, bias *float64) (*tts.Result, error) {
	return b.engine.Synthesize(ctx, tts.Request{
		Text:       entry.Text,
		VoiceRef:   b.voiceRef,
		LengthBias: bias,
	})
}

// silencePlaceholder fills the cue window with silence after a failed
// synthesis so the run can continue.
func (b *base) silencePlaceholder(entry subtitles.Entry, attempts int, err error) Rendered {
	b.logger.Warn("synthesis failed, inserting silence placeholder",
		logging.Int(logging.FieldEntry, entry.Index),
		logging.String(logging.FieldEventType, eventSynthesisFailed),
		logging.Error(err))
	return Rendered{
		Entry:    entry,
		Clip:     audio.Silence(entry.TargetDuration(), b.params.SampleRate),
		Failed:   true,
		Attempts: attempts,
	}
}

func (b *base) warnClamped(entry subtitles.Entry, d Decision) {
	b.logger.Warn("speed ratio clamped to safe range",
		logging.Int(logging.FieldEntry, entry.Index),
		logging.String(logging.FieldEventType, eventRatioClamped),
		logging.Float64("requested_ratio", d.Requested),
		logging.Float64("applied_ratio", d.Applied))
}

func (b *base) warnStretchFallback(entry subtitles.Entry, ratio float64, err error) {
	b.logger.Warn("stretch failed, keeping natural pace",
		logging.Int(logging.FieldEntry, entry.Index),
		logging.String(logging.FieldEventType, eventStretchFallback),
		logging.Float64("applied_ratio", ratio),
		logging.Error(err))
}
