package strategy

import (
	"context"
	"math"
	"time"

	"subdub/internal/audio"
	"subdub/internal/logging"
	"subdub/internal/subtitles"
	"subdub/internal/tts"
)

// iterativeStrategy searches over length biases instead of stretching.
// Each attempt's duration miss steers the next bias; the closest take wins.
// Audio always leaves the engine untouched, so quality never degrades past
// what synthesis itself produces.
type iterativeStrategy struct {
	base
}

func (s *iterativeStrategy) Name() string { return NameIterative }

func (s *iterativeStrategy) Description() string {
	return "search length biases across attempts and keep the closest take, never stretching"
}

func (s *iterativeStrategy) SequentialPlacement() bool { return false }

func (s *iterativeStrategy) Render(ctx context.Context, entry subtitles.Entry) (Rendered, error) {
	target := entry.TargetDuration()
	maxAttempts := s.params.IterativeMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		best     audio.Clip
		bestDur  time.Duration
		bestErr  = math.Inf(1)
		attempts int
		bias     float64
		haveTake bool
		failed   bool
	)
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var lengthBias *float64
		if attempt > 0 {
			lengthBias = tts.Bias(bias)
		}

		result, err := s.synthesize(ctx, entry, lengthBias)
		attempts++
		if err != nil {
			if ctx.Err() != nil {
				return Rendered{}, ctx.Err()
			}
			failed = true
			lastErr = err
			break
		}

		haveTake = true
		miss := relativeError(result.NaturalDuration(), target)
		if miss < bestErr {
			bestErr = miss
			best = result.Clip
			bestDur = result.NaturalDuration()
		}
		if miss <= s.params.IterativeTolerance {
			break
		}

		// The next bias is steered by the best take so far, not the
		// latest one, so a worse attempt cannot derail the search.
		ratio := 1.0
		if target > 0 {
			ratio = bestDur.Seconds() / target.Seconds()
		}
		bias = clampBias(bias-(ratio-1.0)*s.params.BiasAdjustmentFactor, s.params.MaxLengthBias)
	}

	if !haveTake {
		return s.silencePlaceholder(entry, attempts, lastErr), nil
	}
	if failed {
		s.logger.Warn("synthesis attempt failed mid-search, keeping best take",
			logging.Int(logging.FieldEntry, entry.Index),
			logging.String(logging.FieldEventType, eventAttemptFailed),
			logging.Int("attempts", attempts),
			logging.Error(lastErr))
	}
	return Rendered{Entry: entry, Clip: best, Attempts: attempts, AttemptFailed: failed}, nil
}
