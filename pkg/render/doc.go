// Package render turns laid-out frames into pictures.
//
// # Overview
//
// Rendering is split by output kind:
//
//   - [sink]: frame sinks for SVG, JSON, PDF and PNG
//   - [styles]: visual styles used by the SVG sink
//   - [nodelink]: the link topology of a snapshot as a Graphviz diagram
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). Both the frame sink and the node-link renderer use them.
//
//	svg := sink.RenderSVG(frame)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/knitstack/pkg/render/sink
// [styles]: github.com/matzehuels/knitstack/pkg/render/styles
// [nodelink]: github.com/matzehuels/knitstack/pkg/render/nodelink
package render
