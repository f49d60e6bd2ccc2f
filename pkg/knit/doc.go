// Package knit models the loops held on a two-bed knitting machine and the
// yarn links between them.
//
// # Overview
//
// A [Machine] owns a set of needles on the front and back beds. Every needle
// holds an ordered stack of items: a base marker, the hook region, a hook
// marker, the slider region and a tip marker. Loops and pinches live inside
// the two regions; the markers are created with the needle and never move.
//
// Items expose a left and a right port. A [Link] joins two ports and may
// reference a shared [Slack] budget, which the layout engine uses to derive
// how taut a run of yarn is.
//
// # Storage
//
// Items, links and slacks are stored in arenas inside the machine and are
// addressed by [ItemID], [LinkID] and [SlackID]. Stacks are doubly linked
// through prev/next indices, so detaching an item and re-inserting it on
// another needle is O(1) and never invalidates identifiers held by callers.
//
// # Transfers
//
// [Machine.Xfer] moves every item of one needle region onto a needle of the
// opposite bed. Before moving, it walks the perimeter of the bed gap from the
// source tip to the destination tip to find links the move would otherwise
// drag loops through. Each such link is re-anchored through a pinch on the
// moving stack. Pinches that end up on top of the destination region after
// the move are released again, splicing their two links back into one.
//
// # Snapshots
//
// [Machine.Save] captures the whole state as a [Snapshot] of short text
// descriptors and [Machine.Load] restores it. Loading a saved snapshot and
// saving again yields an identical value.
//
//	m := knit.New(knit.WithMaxRacking(2))
//	a := m.MakeLoop(knit.MustParseNeedle("f0"))
//	b := m.MakeLoop(knit.MustParseNeedle("f2"))
//	m.Connect(knit.Port{Item: a, Side: knit.Right}, knit.Port{Item: b, Side: knit.Left}, knit.NoSlack)
//	if _, err := m.Xfer(knit.MustParseNeedle("f0"), knit.MustParseNeedle("b0")); err != nil {
//	    return err
//	}
//	snap := m.Save("after")
package knit
