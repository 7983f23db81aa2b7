package stretch_test

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"subdub/internal/audio"
	"subdub/internal/stretch"
)

func tone(d time.Duration, rate int) audio.Clip {
	n := audio.SampleCount(d, rate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.2 * math.Sin(2*math.Pi*220*float64(i)/float64(rate))
	}
	return audio.Clip{Samples: samples, Rate: rate}
}

func TestAtempoChain(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{1.0, "atempo=1.0000"},
		{0.85, "atempo=0.8500"},
		{1.5, "atempo=1.5000"},
		{2.0, "atempo=2.0000"},
		{3.0, "atempo=2.0000,atempo=1.5000"},
		{4.0, "atempo=2.0000,atempo=2.0000"},
		{0.4, "atempo=0.5000,atempo=0.8000"},
		{0.25, "atempo=0.5000,atempo=0.5000"},
	}
	for _, tc := range cases {
		if got := stretch.AtempoChain(tc.ratio); got != tc.want {
			t.Errorf("AtempoChain(%.2f) = %q, want %q", tc.ratio, got, tc.want)
		}
	}
}

func TestFFmpegStretcherInvokesRunner(t *testing.T) {
	s := stretch.NewFFmpegStretcher("ffmpeg")
	s.WithWorkDir(t.TempDir())

	clip := tone(time.Second, 22050)
	var gotArgs []string
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		// Pretend ffmpeg retimed the input by writing a shorter clip
		// to the -y output path.
		outPath := args[len(args)-1]
		return audio.WriteWAVFile(outPath, tone(800*time.Millisecond, 22050))
	})

	out, err := s.Stretch(context.Background(), clip, 1.25)
	if err != nil {
		t.Fatalf("Stretch returned error: %v", err)
	}
	if got := out.Duration(); got != 800*time.Millisecond {
		t.Fatalf("expected 0.8s output, got %s", got)
	}

	var filter string
	for i := 0; i < len(gotArgs)-1; i++ {
		if gotArgs[i] == "-filter:a" {
			filter = gotArgs[i+1]
		}
	}
	if filter != "atempo=1.2500" {
		t.Fatalf("expected atempo filter, got %q (args %v)", filter, gotArgs)
	}
}

func TestFFmpegStretcherPropagatesRunnerError(t *testing.T) {
	s := stretch.NewFFmpegStretcher("ffmpeg")
	s.WithWorkDir(t.TempDir())
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return context.DeadlineExceeded
	})

	if _, err := s.Stretch(context.Background(), tone(time.Second, 22050), 1.1); err == nil {
		t.Fatal("expected error from failing runner")
	}
}

func TestStretchRejectsBadInput(t *testing.T) {
	s := stretch.NewFFmpegStretcher("ffmpeg")
	if _, err := s.Stretch(context.Background(), audio.Clip{Rate: 22050}, 1.0); err == nil {
		t.Fatal("expected error for empty clip")
	}
	if _, err := s.Stretch(context.Background(), tone(time.Second, 22050), 0.01); err == nil {
		t.Fatal("expected error for absurd ratio")
	}
	if err := stretch.ValidateRatio(20); err == nil || !strings.Contains(err.Error(), "outside supported range") {
		t.Fatalf("expected range error, got %v", err)
	}
}
