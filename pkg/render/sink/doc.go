// Package sink renders a [layout.Frame] to output formats.
//
// # Overview
//
// A "sink" transforms a computed frame into bytes:
//
//   - SVG: vector drawing with hover highlighting of an item's yarn
//   - JSON: the frame geometry for external viewers
//   - PDF and PNG: SVG converted with rsvg-convert
//
// Basic usage:
//
//	svg := sink.RenderSVG(frame,
//	    sink.WithStyle(styles.Mono{}),
//	    sink.WithNeedleLabels(),
//	)
//
// # SVG Options
//
//   - [WithStyle]: visual style ([styles.Simple] or [styles.Mono])
//   - [WithNeedleLabels]: print needle names beside the beds
//   - [WithTitle]: print the frame label above the drawing
//   - [WithMargin]: padding around the frame
//
// # JSON Output
//
// [RenderJSON] exports the frame as indented JSON, optionally with the
// snapshot it was computed from so viewers can show the raw stacks.
//
// [layout.Frame]: github.com/matzehuels/knitstack/pkg/layout.Frame
// [styles.Simple]: github.com/matzehuels/knitstack/pkg/render/styles.Simple
// [styles.Mono]: github.com/matzehuels/knitstack/pkg/render/styles.Mono
package sink
