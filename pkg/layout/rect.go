package layout

import "encoding/json"

// Rect is an axis-aligned box in frame coordinates (y grows downward).
type Rect struct {
	Left, Top     float64
	Right, Bottom float64
}

// RectAt returns the box of the given size centred on (cx, cy).
func RectAt(cx, cy, w, h float64) Rect {
	return Rect{Left: cx - w/2, Top: cy - h/2, Right: cx + w/2, Bottom: cy + h/2}
}

// Width returns the horizontal span of the box.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the box.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// CenterX returns the horizontal center point of the box.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center point of the box.
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// Overlaps reports whether the two boxes share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

type jsonRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonRect{X: r.Left, Y: r.Top, Width: r.Width(), Height: r.Height()})
}

func (r *Rect) UnmarshalJSON(data []byte) error {
	var j jsonRect
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = Rect{Left: j.X, Top: j.Y, Right: j.X + j.Width, Bottom: j.Y + j.Height}
	return nil
}
