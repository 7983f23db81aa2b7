package audio_test

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"
	"time"

	"subdub/internal/audio"
)

func sine(freq float64, d time.Duration, rate int) audio.Clip {
	n := audio.SampleCount(d, rate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return audio.Clip{Samples: samples, Rate: rate}
}

func TestClipDuration(t *testing.T) {
	clip := audio.Silence(1500*time.Millisecond, 22050)
	if len(clip.Samples) != 33075 {
		t.Fatalf("expected 33075 samples, got %d", len(clip.Samples))
	}
	if got := clip.Duration(); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %s", got)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	clip := sine(440, time.Second, 22050)

	var buf bytes.Buffer
	if err := audio.EncodeWAV(&buf, clip); err != nil {
		t.Fatalf("EncodeWAV returned error: %v", err)
	}

	decoded, err := audio.DecodeWAV(&buf)
	if err != nil {
		t.Fatalf("DecodeWAV returned error: %v", err)
	}
	if decoded.Rate != clip.Rate {
		t.Fatalf("expected rate %d, got %d", clip.Rate, decoded.Rate)
	}
	if len(decoded.Samples) != len(clip.Samples) {
		t.Fatalf("expected %d samples, got %d", len(clip.Samples), len(decoded.Samples))
	}
	for i := range decoded.Samples {
		if math.Abs(decoded.Samples[i]-clip.Samples[i]) > 1.0/32767 {
			t.Fatalf("sample %d drifted beyond quantization: %v vs %v", i, decoded.Samples[i], clip.Samples[i])
		}
	}
}

func TestWAVFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	clip := sine(220, 250*time.Millisecond, 16000)

	if err := audio.WriteWAVFile(path, clip); err != nil {
		t.Fatalf("WriteWAVFile returned error: %v", err)
	}
	decoded, err := audio.ReadWAVFile(path)
	if err != nil {
		t.Fatalf("ReadWAVFile returned error: %v", err)
	}
	if decoded.Rate != 16000 || len(decoded.Samples) != len(clip.Samples) {
		t.Fatalf("unexpected decode: rate=%d samples=%d", decoded.Rate, len(decoded.Samples))
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := audio.DecodeWAV(bytes.NewReader([]byte("not a wav file at all"))); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}

func TestEncodeWAVClampsOverRange(t *testing.T) {
	clip := audio.Clip{Samples: []float64{2.0, -3.0}, Rate: 8000}
	var buf bytes.Buffer
	if err := audio.EncodeWAV(&buf, clip); err != nil {
		t.Fatalf("EncodeWAV returned error: %v", err)
	}
	decoded, err := audio.DecodeWAV(&buf)
	if err != nil {
		t.Fatalf("DecodeWAV returned error: %v", err)
	}
	if decoded.Samples[0] < 0.99 || decoded.Samples[1] > -0.99 {
		t.Fatalf("expected clamped full-scale samples, got %v", decoded.Samples)
	}
}

func TestResampleHalvesLength(t *testing.T) {
	clip := sine(440, time.Second, 44100)
	out := audio.Resample(clip, 22050)
	if out.Rate != 22050 {
		t.Fatalf("expected rate 22050, got %d", out.Rate)
	}
	if got := out.Duration(); got < 990*time.Millisecond || got > 1010*time.Millisecond {
		t.Fatalf("expected ~1s after resample, got %s", got)
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	clip := sine(440, 100*time.Millisecond, 22050)
	out := audio.Resample(clip, 22050)
	if len(out.Samples) != len(clip.Samples) {
		t.Fatalf("expected identity resample, got %d samples", len(out.Samples))
	}
}
