package strategy

import (
	"context"

	"subdub/internal/stretch"
	"subdub/internal/subtitles"
)

// stretchStrategy synthesizes once per entry and retimes the clip into its
// cue window. The wide and high-quality variants differ only in the safe
// range handed to the ratio decision.
type stretchStrategy struct {
	base
	name        string
	description string
	stretcher   stretch.Stretcher
	bounds      SafeRange
}

func (s *stretchStrategy) Name() string { return s.name }

func (s *stretchStrategy) Description() string { return s.description }

func (s *stretchStrategy) SequentialPlacement() bool { return false }

func (s *stretchStrategy) Render(ctx context.Context, entry subtitles.Entry) (Rendered, error) {
	result, err := s.synthesize(ctx, entry, nil)
	if err != nil {
		if ctx.Err() != nil {
			return Rendered{}, ctx.Err()
		}
		return s.silencePlaceholder(entry, 1, err), nil
	}

	rendered := Rendered{Entry: entry, Clip: result.Clip, Attempts: 1}
	decision := Decide(result.NaturalDuration(), entry.TargetDuration(), s.bounds, s.params.Threshold)
	if decision.Clamped {
		s.warnClamped(entry, decision)
		rendered.Clamped = true
	}
	if decision.Applied == 1.0 {
		return rendered, nil
	}

	stretched, err := s.stretcher.Stretch(ctx, result.Clip, decision.Applied)
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
