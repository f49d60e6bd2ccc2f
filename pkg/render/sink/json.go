package sink

import (
	"encoding/json"

	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	snapshot *knit.Snapshot
	style    string
	compact  bool
}

// WithJSONSnapshot embeds the snapshot the frame was computed from.
func WithJSONSnapshot(s knit.Snapshot) JSONOption {
	return func(r *jsonRenderer) { r.snapshot = &s }
}

// WithJSONStyle records the style name for viewers that draw the frame
// themselves.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	layout.Frame
	Style    string         `json:"style,omitempty"`
	Snapshot *knit.Snapshot `json:"snapshot,omitempty"`
}

// RenderJSON exports the frame as a JSON document. It does not modify f and
// is safe to call concurrently.
func RenderJSON(f layout.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Frame: f, Style: r.style, Snapshot: r.snapshot}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ReadJSON decodes a document written by RenderJSON.
func ReadJSON(data []byte) (layout.Frame, *knit.Snapshot, error) {
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return layout.Frame{}, nil, err
	}
	return out.Frame, out.Snapshot, nil
}
