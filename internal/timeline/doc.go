// Package timeline mixes rendered clips onto a single output track.
// Placement is additive, so overlapping segments sum rather than truncate,
// and the final buffer is peak-normalized only when the mix actually clips.
package timeline
