package timeline

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"subdub/internal/audio"
	"subdub/internal/logging"
)

// Segment is one clip placed at an offset on the output track.
type Segment struct {
	// EntryIndex is the source cue number, used in overlap warnings.
	EntryIndex int
	// Start is the placement offset from track zero.
	Start time.Duration
	Clip  audio.Clip
}

// Overlap records two segments sharing track time.
type Overlap struct {
	FirstIndex  int
	SecondIndex int
	Amount      time.Duration
}

// Report summarizes one assembly pass.
type Report struct {
	// Duration is the finished track length.
	Duration time.Duration
	// Overlaps lists segment pairs that were mixed additively.
	Overlaps []Overlap
	// Normalized reports that the mix clipped and was scaled down.
	Normalized bool
	// PeakScale is the factor applied during normalization, 1.0 otherwise.
	PeakScale float64
}

// Assembler mixes segments into a mono track at a fixed sample rate.
type Assembler struct {
	rate   int
	logger *slog.Logger
}

// New creates an assembler producing audio at the given sample rate.
func New(rate int, logger *slog.Logger) *Assembler {
	return &Assembler{
		rate:   rate,
		logger: logging.NewComponentLogger(logger, "timeline"),
	}
}

// Assemble places every segment on the track and returns the mixed buffer.
// The track is at least minSpan long so trailing silence reaches the last
// cue's end even when its clip runs short. Assembly is deterministic: the
// same segments always produce the same buffer.
func (a *Assembler) Assemble(segments []Segment, minSpan time.Duration) (audio.Clip, Report, error) {
	if a.rate <= 0 {
		return audio.Clip{}, Report{}, fmt.Errorf("assemble: invalid sample rate %d", a.rate)
	}

	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	for i := range ordered {
		if ordered[i].Start < 0 {
			return audio.Clip{}, Report{}, fmt.Errorf("assemble: entry %d placed at negative offset %s", ordered[i].EntryIndex, ordered[i].Start)
		}
		if ordered[i].Clip.Rate != a.rate && !ordered[i].Clip.Empty() {
			ordered[i].Clip = audio.Resample(ordered[i].Clip, a.rate)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].EntryIndex < ordered[j].EntryIndex
	})

	span := minSpan
	for _, seg := range ordered {
		if end := seg.Start + seg.Clip.Duration(); end > span {
			span = end
		}
	}

	buffer := make([]float64, audio.SampleCount(span, a.rate))
	report := Report{PeakScale: 1.0}

	var prevEnd time.Duration
	var prevIndex int
	for i, seg := range ordered {
		if i > 0 && seg.Start < prevEnd {
			overlap := Overlap{
				FirstIndex:  prevIndex,
				SecondIndex: seg.EntryIndex,
				Amount:      prevEnd - seg.Start,
			}
			report.Overlaps = append(report.Overlaps, overlap)
			a.logger.Warn("segments overlap, mixing additively",
				logging.Int("first_entry", overlap.FirstIndex),
				logging.Int("second_entry", overlap.SecondIndex),
				logging.Duration("overlap", overlap.Amount))
		}

		offset := audio.SampleCount(seg.Start, a.rate)
		for s, sample := range seg.Clip.Samples {
			if offset+s >= len(buffer) {
				break
			}
			buffer[offset+s] += sample
		}

		if end := seg.Start + seg.Clip.Duration(); end > prevEnd {
			prevEnd = end
			prevIndex = seg.EntryIndex
		}
	}

	mixed := audio.Clip{Samples: buffer, Rate: a.rate}
	if peak := mixed.Peak(); peak > 1.0 {
		scale := 1.0 / peak
		for i := range buffer {
			buffer[i] *= scale
		}
		report.Normalized = true
		report.PeakScale = scale
		a.logger.Warn("mix exceeded full scale, normalizing",
			logging.Float64("peak", peak),
			logging.Float64("scale", scale))
	}

	report.Duration = mixed.Duration()
	return mixed, report, nil
}
