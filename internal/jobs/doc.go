// Package jobs persists dubbing run history in SQLite so `subdub jobs` can
// show what was produced, with which strategy, and how cleanly. Migrations
// are embedded and applied under an advisory file lock so concurrent runs
// never race schema changes.
package jobs
