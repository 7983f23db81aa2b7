package strategy

import (
	"context"

	"subdub/internal/subtitles"
)

// basicStrategy synthesizes every entry at natural pace and lets the
// placement pass concatenate the clips back to back. The output track
// drifts from the cue timeline but contains no processing artifacts.
type basicStrategy struct {
	base
}

func (s *basicStrategy) Name() string { return NameBasic }

func (s *basicStrategy) Description() string {
	return "concatenate clips at natural pace, ignoring cue timing"
}

func (s *basicStrategy) SequentialPlacement() bool { return true }

func (s *basicStrategy) Render(ctx context.Context, entry subtitles.Entry) (Rendered, error) {
	result, err := s.synthesize(ctx, entry, nil)
	if err != nil {
		if ctx.Err() != nil {
			return Rendered{}, ctx.Err()
		}
		return s.silencePlaceholder(entry, 1, err), nil
	}
	return Rendered{Entry: entry, Clip: result.Clip, Attempts: 1}, nil
}
