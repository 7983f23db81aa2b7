// Package stretch adjusts waveform duration by a speed ratio while
// preserving pitch. The shipped implementation drives ffmpeg's atempo
// filter; callers depend on the Stretcher interface so tests can substitute
// fakes.
package stretch
