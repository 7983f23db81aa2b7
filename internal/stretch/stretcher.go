package stretch

import (
	"context"
	"fmt"

	"subdub/internal/audio"
)

// Stretcher changes a clip's duration by the given speed ratio. A ratio
// above 1.0 speeds the audio up (shorter output); below 1.0 slows it down.
// Pitch is preserved.
type Stretcher interface {
	Stretch(ctx context.Context, clip audio.Clip, ratio float64) (audio.Clip, error)
}

// ValidateRatio rejects ratios outside the sane numeric range.
func ValidateRatio(ratio float64) error {
	if ratio < 0.1 || ratio > 10.0 {
		return fmt.Errorf("stretch ratio %.4f outside supported range [0.1, 10.0]", ratio)
	}
	return nil
}
