package subtitles_test

import (
	"strings"
	"testing"
	"time"

	"subdub/internal/subtitles"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
Hello there.

2
00:00:04,000 --> 00:00:06,000
<i>General Kenobi!</i>

3
00:00:06,200 --> 00:00:08,000
Line one
line two
`

func TestParseBasicFile(t *testing.T) {
	entries, err := subtitles.Parse(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Index != 1 {
		t.Fatalf("expected index 1, got %d", first.Index)
	}
	if first.Start != time.Second {
		t.Fatalf("expected start 1s, got %s", first.Start)
	}
	if first.TargetDuration() != 2500*time.Millisecond {
		t.Fatalf("expected target duration 2.5s, got %s", first.TargetDuration())
	}

	if entries[1].Text != "General Kenobi!" {
		t.Fatalf("expected markup stripped, got %q", entries[1].Text)
	}
	if entries[2].Text != "Line one line two" {
		t.Fatalf("expected joined lines, got %q", entries[2].Text)
	}
}

func TestParseAcceptsPeriodMilliseconds(t *testing.T) {
	input := "1\n00:00:01.250 --> 00:00:02.750\nPeriod separators.\n"
	entries, err := subtitles.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if entries[0].Start != 1250*time.Millisecond {
		t.Fatalf("expected 1.25s start, got %s", entries[0].Start)
	}
}

func TestParseSkipsEmptyTextCues(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:02,000\n<i></i>\n\n2\n00:00:03,000 --> 00:00:04,000\nKept.\n"
	entries, err := subtitles.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Index != 2 {
		t.Fatalf("expected surviving cue 2, got %d", entries[0].Index)
	}
}

func TestParseRejectsInvertedWindow(t *testing.T) {
	input := "1\n00:00:05,000 --> 00:00:04,000\nBackwards.\n"
	if _, err := subtitles.Parse(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for inverted window")
	}
}

func TestParseRejectsMalformedTimestamp(t *testing.T) {
	input := "1\n00:00:xx,000 --> 00:00:04,000\nBad.\n"
	if _, err := subtitles.Parse(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestParseRejectsEmptyInput(t *testing.T) {
	if _, err := subtitles.Parse(strings.NewReader("\n\n")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestTotalSpan(t *testing.T) {
	entries, err := subtitles.Parse(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if entries.TotalSpan() != 8*time.Second {
		t.Fatalf("expected span 8s, got %s", entries.TotalSpan())
	}
}
