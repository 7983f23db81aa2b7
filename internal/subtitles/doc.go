// Package subtitles provides the subtitle entry model and an SRT parser.
// Entries are immutable once parsed and consumed read-only by the sync
// strategies.
package subtitles
