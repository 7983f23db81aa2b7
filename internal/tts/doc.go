// Package tts wraps external speech synthesizers behind the Engine
// interface. Two backends ship: an exec-based command engine and an HTTP
// engine. Engines that can target a duration natively additionally implement
// DurationTargeter.
package tts
