package styles

import (
	"bytes"
	"encoding/xml"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 0.4
	fontSizeMax     = 6.0
)

// FontSize returns the largest font size at which text fits a w×h box,
// clamped to a readable range.
func FontSize(w, h float64, text string) float64 {
	n := max(1, len(text))
	byHeight := h * fontHeightRatio
	byWidth := (w * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// TruncateLabel shortens text to fit a box of width w at the given font
// size, marking the cut with "..".
func TruncateLabel(text string, w, fontSize float64) string {
	maxChars := max(3, int(w*fontWidthRatio/(fontSize*fontCharWidth)))
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars-2] + ".."
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
