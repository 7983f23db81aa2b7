package subtitles

import "time"

// Entry is one subtitle cue: an index, a time window, and the text spoken
// inside it.
type Entry struct {
	// Index is the 1-based cue number from the source file.
	Index int
	// Start and End are offsets from track zero; End is always after Start.
	Start time.Duration
	End   time.Duration
	// Text is the cue text with markup stripped and lines joined.
	Text string
}

// TargetDuration returns the length of the cue's time window, which the
// stretch-family strategies try to match.
func (e Entry) TargetDuration() time.Duration {
	return e.End - e.Start
}

// List is an ordered sequence of entries.
type List []Entry

// TotalSpan returns the end offset of the last cue, or zero for an empty list.
func (l List) TotalSpan() time.Duration {
	var span time.Duration
	for _, entry := range l {
		if entry.End > span {
			span = entry.End
		}
	}
	return span
}
