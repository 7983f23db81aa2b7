package tts

import (
	"context"
	"fmt"
	"time"

	"subdub/internal/audio"
	"subdub/internal/config"
)

// Request carries one synthesis call.
type Request struct {
	// Text is the sentence to speak.
	Text string
	// VoiceRef is the path to the reference voice WAV.
	VoiceRef string
	// LengthBias optionally shapes generated duration: positive lengthens,
	// negative shortens. Nil leaves the engine at its natural pace.
	LengthBias *float64
}

// Result is the waveform a synthesis call produced.
type Result struct {
	Clip audio.Clip
}

// NaturalDuration returns the duration of the synthesized waveform before
// any stretching.
func (r *Result) NaturalDuration() time.Duration {
	return r.Clip.Duration()
}

// Engine converts text to speech.
type Engine interface {
	Name() string
	Synthesize(ctx context.Context, req Request) (*Result, error)
}

// DurationTargeter is an optional engine capability: synthesize audio whose
// duration matches the target without post-hoc stretching. Engines without
// native support simply do not implement it.
type DurationTargeter interface {
	SynthesizeToDuration(ctx context.Context, req Request, target time.Duration) (*Result, error)
}

// HealthChecker is an optional capability probed before a run starts.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// New constructs the engine selected by the configuration.
func New(cfg config.TTS) (Engine, error) {
	switch cfg.Engine {
	case "command":
		return NewCommandEngine(cfg), nil
	case "http":
		return NewHTTPEngine(cfg), nil
	default:
		return nil, fmt.Errorf("tts engine: unknown backend %q", cfg.Engine)
	}
}

// Names lists the available engine backends.
func Names() []string {
	return []string{"command", "http"}
}

// Bias is a convenience for building a length-bias pointer.
func Bias(value float64) *float64 {
	return &value
}
