package jobs

import "time"

// Status values a run moves through.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one dubbing invocation's history record.
type Run struct {
	ID           int64
	RunID        string
	SubtitlePath string
	VoiceRef     string
	OutputPath   string
	Strategy     string
	Engine       string
	Status       string
	EntryCount   int
	WarningCount int
	FailedCount  int
	// DurationSeconds is the finished track length.
	DurationSeconds float64
	// PeakScale is the normalization factor applied to the mix, 1.0 when
	// the track never clipped.
	PeakScale    float64
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary carries the numbers folded into a completed run record.
type Summary struct {
	EntryCount      int
	WarningCount    int
	FailedCount     int
	DurationSeconds float64
	PeakScale       float64
}
