// Package audio holds the waveform sample model plus the PCM16 WAV codec and
// linear resampler used to move audio between synthesis engines and the
// output track.
package audio
