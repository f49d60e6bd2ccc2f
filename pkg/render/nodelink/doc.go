// Package nodelink renders the yarn topology of a snapshot as a
// node-link diagram.
//
// # Overview
//
// Every loop and pinch becomes a node, grouped into one cluster per needle;
// every link becomes an edge between the ports it joins. The diagram shows
// how yarn is routed regardless of where the layout engine would place it,
// which helps when checking what a transfer captured.
//
// # Usage
//
// Convert a snapshot to DOT, then render to SVG:
//
//	dot, err := nodelink.ToDOT(snap, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: label nodes with their kind and edges with slack lengths
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
