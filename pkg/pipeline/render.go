package pipeline

import (
	"context"
	"time"

	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/layout"
	"github.com/matzehuels/knitstack/pkg/observability"
	"github.com/matzehuels/knitstack/pkg/playback"
	"github.com/matzehuels/knitstack/pkg/render/nodelink"
	"github.com/matzehuels/knitstack/pkg/render/sink"
	"github.com/matzehuels/knitstack/pkg/render/styles"
)

// RenderFrame produces one artifact for a laid-out step. The DOT-based
// formats draw the step's yarn topology and ignore the frame geometry.
func RenderFrame(ctx context.Context, f layout.Frame, st playback.Step, format string, opts Options) ([]byte, error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, format)
	data, err := renderFrame(f, st, format, opts)
	observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
	return data, err
}

func renderFrame(f layout.Frame, st playback.Step, format string, opts Options) ([]byte, error) {
	style, err := styles.ByName(opts.Style)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidOptions, err, "style")
	}
	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	if opts.NeedleLabels {
		svgOpts = append(svgOpts, sink.WithNeedleLabels())
	}
	if opts.Title {
		svgOpts = append(svgOpts, sink.WithTitle())
	}

	var data []byte
	switch format {
	case FormatSVG:
		return sink.RenderSVG(f, svgOpts...), nil
	case FormatPNG:
		data, err = sink.RenderPNG(f, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	case FormatPDF:
		data, err = sink.RenderPDF(f, svgOpts...)
	case FormatJSON:
		data, err = sink.RenderJSON(f, sink.WithJSONSnapshot(st.Snapshot), sink.WithJSONStyle(opts.Style))
	case FormatDOT, FormatGraph:
		var dot string
		dot, err = nodelink.ToDOT(st.Snapshot, nodelink.Options{Detailed: opts.Detailed})
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidSnapshot, err, "step %d", st.Index)
		}
		if format == FormatDOT {
			return []byte(dot), nil
		}
		data, err = nodelink.RenderSVG(dot)
	default:
		return nil, ValidateFormat(format)
	}
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "render %s", format)
	}
	return data, nil
}
