// Command subdub renders SRT subtitles into a dubbed audio track using a
// configurable speech synthesis backend and time-synchronization strategy.
package main
