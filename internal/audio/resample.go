package audio

import "math"

// Resample converts the clip to the target rate with linear interpolation.
// Clips already at the target rate are returned unchanged.
func Resample(clip Clip, targetRate int) Clip {
	if clip.Rate == targetRate || clip.Rate <= 0 || targetRate <= 0 || len(clip.Samples) == 0 {
		return Clip{Samples: clip.Samples, Rate: targetRate}
	}

	ratio := float64(targetRate) / float64(clip.Rate)
	newLength := int(math.Round(float64(len(clip.Samples)) * ratio))
	if newLength < 1 {
		newLength = 1
	}

	out := make([]float64, newLength)
	scale := float64(len(clip.Samples)-1) / math.Max(1, float64(newLength-1))
	for i := range out {
		pos := float64(i) * scale
		left := int(pos)
		if left >= len(clip.Samples)-1 {
			out[i] = clip.Samples[len(clip.Samples)-1]
			continue
		}
		frac := pos - float64(left)
		out[i] = clip.Samples[left]*(1-frac) + clip.Samples[left+1]*frac
	}
	return Clip{Samples: out, Rate: targetRate}
}
