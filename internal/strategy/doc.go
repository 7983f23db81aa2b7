// Package strategy implements the time-synchronization policies that map
// synthesized speech onto subtitle timing. Every policy renders entries
// independently so a bounded worker pool can parallelize synthesis, and the
// shared ratio logic keeps stretch decisions inside configured safe ranges.
package strategy
