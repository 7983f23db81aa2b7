// Package dubbing orchestrates a full run: parse subtitles, synthesize and
// time every entry under the selected strategy, assemble the output track,
// and export it as WAV. Run history lands in the jobs store when enabled.
package dubbing
