package strategy

import (
	"context"
	"math"
	"time"

	"subdub/internal/logging"
	"subdub/internal/stretch"
	"subdub/internal/subtitles"
	"subdub/internal/tts"
)

// adaptiveStrategy matches cue windows in two phases. Engines with native
// duration targeting get asked for the window outright; otherwise the first
// take's miss is converted into a length bias for a second take, and a fine
// stretch inside a tight range closes whatever gap remains.
type adaptiveStrategy struct {
	base
	stretcher stretch.Stretcher
}

func (s *adaptiveStrategy) Name() string { return NameAdaptive }

func (s *adaptiveStrategy) Description() string {
	return "regenerate with a length bias, then fine-stretch inside a tight range"
}

func (s *adaptiveStrategy) SequentialPlacement() bool { return false }

func (s *adaptiveStrategy) Render(ctx context.Context, entry subtitles.Entry) (Rendered, error) {
	target := entry.TargetDuration()

	if targeter, ok := s.engine.(tts.DurationTargeter); ok {
		result, err := targeter.SynthesizeToDuration(ctx, tts.Request{Text: entry.Text, VoiceRef: s.voiceRef}, target)
		if err == nil {
			return Rendered{Entry: entry, Clip: result.Clip, Attempts: 1}, nil
		}
		if ctx.Err() != nil {
			return Rendered{}, ctx.Err()
		}
		s.logger.Debug("native duration targeting unavailable, using two-phase fallback",
			logging.Int(logging.FieldEntry, entry.Index),
			logging.Error(err))
	}

	result, err := s.synthesize(ctx, entry, nil)
	if err != nil {
		if ctx.Err() != nil {
			return Rendered{}, ctx.Err()
		}
		return s.silencePlaceholder(entry, 1, err), nil
	}

	rendered := Rendered{Entry: entry, Clip: result.Clip, Attempts: 1}
	if target > 0 && relativeError(result.NaturalDuration(), target) > s.params.AdaptiveTolerance {
		ratio := result.NaturalDuration().Seconds() / target.Seconds()
		bias := clampBias(-(ratio-1.0)*s.params.BiasAdjustmentFactor, s.params.MaxLengthBias)

		second, err := s.synthesize(ctx, entry, tts.Bias(bias))
		rendered.Attempts++
		if err != nil {
			if ctx.Err() != nil {
				return Rendered{}, ctx.Err()
			}
			s.logger.Debug("biased regeneration failed, keeping first take",
				logging.Int(logging.FieldEntry, entry.Index),
				logging.Float64("length_bias", bias),
				logging.Error(err))
		} else if betterFit(second.NaturalDuration(), result.NaturalDuration(), target) {
			rendered.Clip = second.Clip
		}
	}

	decision := Decide(rendered.Clip.Duration(), target, s.params.Tight, s.params.Threshold)
	if decision.Clamped {
		s.warnClamped(entry, decision)
		rendered.Clamped = true
	}
	if decision.Applied == 1.0 {
		return rendered, nil
	}

	stretched, err := s.stretcher.Stretch(ctx, rendered.Clip, decision.Applied)
	if err != nil {
		if ctx.Err() != nil {
			return Rendered{}, ctx.Err()
		}
		s.warnStretchFallback(entry, decision.Applied, err)
		rendered.StretchFallback = true
		return rendered, nil
	}
	rendered.Clip = stretched
	return rendered, nil
}

func betterFit(candidate, incumbent, target time.Duration) bool {
	return math.Abs(candidate.Seconds()-target.Seconds()) < math.Abs(incumbent.Seconds()-target.Seconds())
}
