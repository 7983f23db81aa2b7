package audio

import (
	"math"
	"time"
)

// Clip is a mono waveform with normalized float samples in [-1, 1].
type Clip struct {
	Samples []float64
	Rate    int
}

// Duration returns the clip length at its sample rate.
func (c Clip) Duration() time.Duration {
	if c.Rate <= 0 {
		return 0
	}
	seconds := float64(len(c.Samples)) / float64(c.Rate)
	return time.Duration(seconds * float64(time.Second))
}

// Peak returns the largest absolute sample value.
func (c Clip) Peak() float64 {
	peak := 0.0
	for _, s := range c.Samples {
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	return peak
}

// Empty reports whether the clip carries no samples.
func (c Clip) Empty() bool {
	return len(c.Samples) == 0
}

// Silence returns a zero-valued clip of the requested duration.
func Silence(d time.Duration, rate int) Clip {
	if d < 0 {
		d = 0
	}
	return Clip{Samples: make([]float64, SampleCount(d, rate)), Rate: rate}
}

// SampleCount converts a duration to a sample count at the given rate.
func SampleCount(d time.Duration, rate int) int {
	if d <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * float64(rate)))
}
