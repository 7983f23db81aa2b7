package timeline_test

import (
	"math"
	"testing"
	"time"

	"subdub/internal/audio"
	"subdub/internal/logging"
	"subdub/internal/timeline"
)

const testRate = 22050

func constClip(d time.Duration, level float64) audio.Clip {
	n := audio.SampleCount(d, testRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = level
	}
	return audio.Clip{Samples: samples, Rate: testRate}
}

func TestAssembleAnchorsAndPads(t *testing.T) {
	asm := timeline.New(testRate, logging.NewNop())
	segments := []timeline.Segment{
		{EntryIndex: 1, Start: 0, Clip: constClip(time.Second, 0.5)},
		{EntryIndex: 2, Start: 3 * time.Second, Clip: constClip(time.Second, 0.5)},
	}

	mixed, report, err := asm.Assemble(segments, 6*time.Second)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if report.Duration != 6*time.Second {
		t.Fatalf("track must pad to the span, got %s", report.Duration)
	}
	if len(report.Overlaps) != 0 || report.Normalized {
		t.Fatalf("clean layout must not warn, got %+v", report)
	}

	// The gap between the clips and the tail stay silent.
	gap := mixed.Samples[audio.SampleCount(1500*time.Millisecond, testRate)]
	tail := mixed.Samples[audio.SampleCount(5*time.Second, testRate)]
	if gap != 0 || tail != 0 {
		t.Fatalf("expected silence between and after clips, got %f and %f", gap, tail)
	}
	if v := mixed.Samples[audio.SampleCount(3500*time.Millisecond, testRate)]; v != 0.5 {
		t.Fatalf("expected second clip at its cue start, got %f", v)
	}
}

func TestAssembleOverlapMixesAdditively(t *testing.T) {
	asm := timeline.New(testRate, logging.NewNop())
	segments := []timeline.Segment{
		{EntryIndex: 1, Start: 0, Clip: constClip(2*time.Second, 0.3)},
		{EntryIndex: 2, Start: 1500 * time.Millisecond, Clip: constClip(1500*time.Millisecond, 0.3)},
	}

	mixed, report, err := asm.Assemble(segments, 0)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(report.Overlaps) != 1 {
		t.Fatalf("expected exactly one overlap, got %+v", report.Overlaps)
	}
	ov := report.Overlaps[0]
	if ov.FirstIndex != 1 || ov.SecondIndex != 2 || ov.Amount != 500*time.Millisecond {
		t.Fatalf("unexpected overlap record: %+v", ov)
	}

	// Inside the shared half second both clips contribute.
	shared := mixed.Samples[audio.SampleCount(1750*time.Millisecond, testRate)]
	if math.Abs(shared-0.6) > 1e-9 {
		t.Fatalf("expected additive mix 0.6 in overlap, got %f", shared)
	}
	solo := mixed.Samples[audio.SampleCount(time.Second, testRate)]
	if math.Abs(solo-0.3) > 1e-9 {
		t.Fatalf("expected single contribution 0.3 before overlap, got %f", solo)
	}
}

func TestAssembleNormalizesOnlyWhenClipping(t *testing.T) {
	asm := timeline.New(testRate, logging.NewNop())

	quiet := []timeline.Segment{{EntryIndex: 1, Start: 0, Clip: constClip(time.Second, 0.9)}}
	_, report, err := asm.Assemble(quiet, 0)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if report.Normalized || report.PeakScale != 1.0 {
		t.Fatalf("sub-full-scale mix must stay untouched, got %+v", report)
	}

	loud := []timeline.Segment{
		{EntryIndex: 1, Start: 0, Clip: constClip(time.Second, 0.8)},
		{EntryIndex: 2, Start: 0, Clip: constClip(time.Second, 0.8)},
	}
	mixed, report, err := asm.Assemble(loud, 0)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !report.Normalized {
		t.Fatal("expected normalization for a 1.6 peak")
	}
	if math.Abs(report.PeakScale-1.0/1.6) > 1e-9 {
		t.Fatalf("expected scale 1/1.6, got %f", report.PeakScale)
	}
	if peak := mixed.Peak(); math.Abs(peak-1.0) > 1e-9 {
		t.Fatalf("normalized peak must be 1.0, got %f", peak)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	asm := timeline.New(testRate, logging.NewNop())
	segments := []timeline.Segment{
		{EntryIndex: 2, Start: time.Second, Clip: constClip(time.Second, 0.4)},
		{EntryIndex: 1, Start: 0, Clip: constClip(1500*time.Millisecond, 0.4)},
	}

	first, _, err := asm.Assemble(segments, 4*time.Second)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	second, _, err := asm.Assemble(segments, 4*time.Second)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(first.Samples) != len(second.Samples) {
		t.Fatalf("length mismatch: %d vs %d", len(first.Samples), len(second.Samples))
	}
	for i := range first.Samples {
		if first.Samples[i] != second.Samples[i] {
			t.Fatalf("sample %d differs between runs", i)
		}
	}
}

func TestAssembleResamplesForeignRates(t *testing.T) {
	asm := timeline.New(testRate, logging.NewNop())
	foreign := audio.Clip{Samples: make([]float64, 44100), Rate: 44100}
	for i := range foreign.Samples {
		foreign.Samples[i] = 0.2
	}

	mixed, report, err := asm.Assemble([]timeline.Segment{{EntryIndex: 1, Start: 0, Clip: foreign}}, 0)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if mixed.Rate != testRate {
		t.Fatalf("expected output at %d Hz, got %d", testRate, mixed.Rate)
	}
	if report.Duration != time.Second {
		t.Fatalf("resampling must preserve duration, got %s", report.Duration)
	}
}

func TestAssembleRejectsNegativeOffsets(t *testing.T) {
	asm := timeline.New(testRate, logging.NewNop())
	segments := []timeline.Segment{{EntryIndex: 1, Start: -time.Second, Clip: constClip(time.Second, 0.1)}}
	if _, _, err := asm.Assemble(segments, 0); err == nil {
		t.Fatal("expected error for negative placement")
	}
}
