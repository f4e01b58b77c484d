// Package format holds the pure string formatting helpers shared by the
// presentation layers: durations, byte counts, progress bars and ETAs.
package format
