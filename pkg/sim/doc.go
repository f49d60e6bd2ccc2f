// Package sim runs parsed scripts against a [knit.Machine].
//
// A [Simulator] applies one operation at a time through a dispatch table
// keyed by [ops.Kind]: transfers and racking change the loop topology;
// knit, tuck, split and miss drive the carrier state machine and record
// card tiles; stitch and pause only update bookkeeping. [Run] executes a
// whole script and records a [playback.History] with one snapshot per line.
//
// Failures are returned as *errors.Error values from pkg/errors carrying
// the script line, and the history recorded up to the failing line is
// returned with them.
package sim
