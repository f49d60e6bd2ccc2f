// Package layout places a machine state on a 2-D canvas.
//
// Layout has two independent parts:
//
//   - Stack ordering. [Stacks] assigns each tile an offset along its column
//     with Kahn's algorithm over the "is above" relation, so tiles sharing a
//     slot never overlap and every tile sits beyond the tiles it rests on.
//     Needle stacks and the knit card stacks both go through it.
//
//   - Lateral relaxation. [Relax] spreads loop positions apart with a fixed
//     number of pairwise repulsion sweeps over loops in creation order. It is
//     an approximation, not an exact solve.
//
// [Compute] combines both with the bed placement rule (the back bed hangs
// from the top, the front bed rises from the bottom, both shifted by half the
// racking) and returns a [Frame] that sinks can draw. The same machine state
// and [Params] always give the same frame.
//
// # Coordinates
//
// Frames use SVG orientation: x grows to the right and y grows downward.
// Item boxes are [Rect] values; link paths join port positions on the left
// and right edges of item boxes.
package layout
