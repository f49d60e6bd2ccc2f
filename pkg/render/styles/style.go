// Package styles draws frame elements as SVG.
package styles

import (
	"bytes"
	"fmt"
	"strings"
)

// Style defines the visual appearance of a frame.
type Style interface {
	// Name identifies the style in options files and JSON output.
	Name() string
	// RenderDefs writes SVG <defs> content and style sheets.
	RenderDefs(buf *bytes.Buffer)
	// RenderNeedle writes one needle body.
	RenderNeedle(buf *bytes.Buffer, n Needle)
	// RenderItem writes one loop, pinch or marker.
	RenderItem(buf *bytes.Buffer, it Item)
	// RenderLink writes one yarn run.
	RenderLink(buf *bytes.Buffer, l Link)
	// RenderTile writes one card tile with its label.
	RenderTile(buf *bytes.Buffer, t Tile)
	// RenderText writes a free-standing label.
	RenderText(buf *bytes.Buffer, x, y float64, text string)
}

// Needle is a needle body to draw.
type Needle struct {
	ID         string
	X, Y, W, H float64
}

// Item is a stack item to draw.
type Item struct {
	ID         string
	Kind       string // "loop", "pinch", "hook" or "tip"
	X, Y, W, H float64
	Moved      bool
}

// Link is a yarn run to draw.
type Link struct {
	ID             string
	From, To       string // item ids at either end
	X1, Y1, X2, Y2 float64
	Slack          bool
	Strain         float64
}

// Tile is a card tile to draw.
type Tile struct {
	Label      string
	X, Y, W, H float64
}

// ByName returns the style with the given name.
func ByName(name string) (Style, error) {
	switch strings.ToLower(name) {
	case "", "simple":
		return Simple{}, nil
	case "mono":
		return Mono{}, nil
	}
	return nil, fmt.Errorf("unknown style %q (want simple or mono)", name)
}

// Names lists the available styles.
func Names() []string { return []string{"simple", "mono"} }
