package layout

import (
	"fmt"

	"github.com/matzehuels/knitstack/pkg/knit"
)

// Default layout constants, in canvas units.
const (
	DefaultBedGap        = 20.0
	DefaultNeedleHeight  = 20.0
	DefaultNeedleSpacing = 18.0
	DefaultNeedleWidth   = 4.0
	DefaultGap           = 1.0
	DefaultYarnRadius    = 1.0
	DefaultLoopGap       = 0.5
	DefaultIterations    = 10
	DefaultUnderHeight   = 5.0
	DefaultCardHeight    = 1.0
	DefaultCardGap       = 0.1
)

// Params controls the geometry of a frame.
type Params struct {
	BedGap        float64 `json:"bed_gap" toml:"bed_gap" yaml:"bed_gap"`
	NeedleHeight  float64 `json:"needle_height" toml:"needle_height" yaml:"needle_height"`
	NeedleSpacing float64 `json:"needle_spacing" toml:"needle_spacing" yaml:"needle_spacing"`
	NeedleWidth   float64 `json:"needle_width" toml:"needle_width" yaml:"needle_width"`
	Gap           float64 `json:"gap" toml:"gap" yaml:"gap"`
	YarnRadius    float64 `json:"yarn_radius" toml:"yarn_radius" yaml:"yarn_radius"`
	LoopGap       float64 `json:"loop_gap" toml:"loop_gap" yaml:"loop_gap"`
	Iterations    int     `json:"iterations" toml:"iterations" yaml:"iterations"`
	UnderHeight   float64 `json:"under_height" toml:"under_height" yaml:"under_height"`
	CardHeight    float64 `json:"card_height" toml:"card_height" yaml:"card_height"`
	CardGap       float64 `json:"card_gap" toml:"card_gap" yaml:"card_gap"`
}

// DefaultParams returns the standard geometry.
func DefaultParams() Params {
	return Params{
		BedGap:        DefaultBedGap,
		NeedleHeight:  DefaultNeedleHeight,
		NeedleSpacing: DefaultNeedleSpacing,
		NeedleWidth:   DefaultNeedleWidth,
		Gap:           DefaultGap,
		YarnRadius:    DefaultYarnRadius,
		LoopGap:       DefaultLoopGap,
		Iterations:    DefaultIterations,
		UnderHeight:   DefaultUnderHeight,
		CardHeight:    DefaultCardHeight,
		CardGap:       DefaultCardGap,
	}
}

// LoopWidth is the drawn width of a loop: the needle plus a loop height on
// either side.
func (p Params) LoopWidth() float64 {
	return p.NeedleWidth + 2*knit.LoopHeight
}

// Repulsion is the minimum centre distance Relax keeps between loops.
func (p Params) Repulsion() float64 {
	return p.LoopWidth() + 2*p.YarnRadius + p.LoopGap
}

// Validate reports parameters that cannot produce a frame.
func (p Params) Validate() error {
	switch {
	case p.NeedleHeight <= 0:
		return fmt.Errorf("needle height must be positive, got %v", p.NeedleHeight)
	case p.NeedleSpacing <= 0:
		return fmt.Errorf("needle spacing must be positive, got %v", p.NeedleSpacing)
	case p.NeedleWidth <= 0:
		return fmt.Errorf("needle width must be positive, got %v", p.NeedleWidth)
	case p.BedGap < 0 || p.Gap < 0 || p.LoopGap < 0 || p.CardGap < 0:
		return fmt.Errorf("gaps must not be negative")
	case p.Iterations < 0:
		return fmt.Errorf("iterations must not be negative, got %d", p.Iterations)
	}
	return nil
}
