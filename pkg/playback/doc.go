// Package playback steps through recorded machine states.
//
// A [History] holds one [Step] per script line, each carrying the full
// [knit.Snapshot] of the machine after that line. Viewers move through it
// with Next and Prev, both of which wrap. An [Animator] queues the visual
// transitions between steps and advances them on a clock.
package playback
