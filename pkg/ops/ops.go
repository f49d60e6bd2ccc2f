// Package ops defines the machine operations a script can request and groups
// consecutive transfers into passes.
//
// Every operation is a small value type implementing [Op]. Consumers switch
// on [Op.Kind] (or on the concrete type) rather than on operation names, so a
// new operation kind is a compile-visible change.
package ops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/knitstack/pkg/knit"
)

// Kind tags an operation variant.
type Kind uint8

const (
	KindXfer Kind = iota
	KindRack
	KindKnit
	KindTuck
	KindSplit
	KindMiss
	KindPause
	KindIn
	KindOut
	KindInhook
	KindOuthook
	KindReleasehook
	KindStitch

	numKinds
)

var kindNames = [numKinds]string{
	KindXfer:        "xfer",
	KindRack:        "rack",
	KindKnit:        "knit",
	KindTuck:        "tuck",
	KindSplit:       "split",
	KindMiss:        "miss",
	KindPause:       "pause",
	KindIn:          "in",
	KindOut:         "out",
	KindInhook:      "inhook",
	KindOuthook:     "outhook",
	KindReleasehook: "releasehook",
	KindStitch:      "stitch",
}

// String returns the script keyword of the kind.
func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds returns every operation kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, numKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// KindOf returns the kind named by a script keyword.
func KindOf(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Direction is the carriage direction of a stitch operation.
type Direction int8

const (
	Decreasing Direction = -1 // "-"
	Increasing Direction = 1  // "+"
)

func (d Direction) String() string {
	if d == Decreasing {
		return "-"
	}
	return "+"
}

// ParseDirection parses "+" or "-".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "+":
		return Increasing, nil
	case "-":
		return Decreasing, nil
	}
	return 0, fmt.Errorf("direction %q must be '+' or '-'", s)
}

// Op is one machine operation.
type Op interface {
	Kind() Kind
	String() string
}

// Xfer moves every loop held in From onto To.
type Xfer struct {
	From, To knit.NeedleRef
}

func (Xfer) Kind() Kind { return KindXfer }
func (o Xfer) String() string {
	return fmt.Sprintf("xfer %s %s", o.From, o.To)
}

// Offset returns to.Index - from.Index, the lateral part of the pass key.
func (o Xfer) Offset() int { return o.To.Index - o.From.Index }

// Rack sets the bed offset. Fractional values are quarter-pitch racking.
type Rack struct {
	Racking float64
}

func (Rack) Kind() Kind { return KindRack }
func (o Rack) String() string {
	return "rack " + strconv.FormatFloat(o.Racking, 'g', -1, 64)
}

// Integral reports whether the racking is a whole number of needles.
func (o Rack) Integral() bool { return o.Racking == float64(int(o.Racking)) }

// Stitch forms or passes yarn at one needle: knit, tuck and miss share it.
type Stitch struct {
	Op       Kind
	Dir      Direction
	Needle   knit.NeedleRef
	Carriers []string
}

func (o Stitch) Kind() Kind { return o.Op }
func (o Stitch) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s %s", o.Op, o.Dir, o.Needle, strings.Join(o.Carriers, " ")))
}

// Knit returns a knit operation.
func Knit(d Direction, n knit.NeedleRef, cs ...string) Stitch {
	return Stitch{Op: KindKnit, Dir: d, Needle: n, Carriers: cs}
}

// Tuck returns a tuck operation.
func Tuck(d Direction, n knit.NeedleRef, cs ...string) Stitch {
	return Stitch{Op: KindTuck, Dir: d, Needle: n, Carriers: cs}
}

// Miss returns a miss operation.
func Miss(d Direction, n knit.NeedleRef, cs ...string) Stitch {
	return Stitch{Op: KindMiss, Dir: d, Needle: n, Carriers: cs}
}

// Split knits at Needle while moving the old loops to Target.
type Split struct {
	Dir      Direction
	Needle   knit.NeedleRef
	Target   knit.NeedleRef
	Carriers []string
}

func (Split) Kind() Kind { return KindSplit }
func (o Split) String() string {
	return strings.TrimSpace(fmt.Sprintf("split %s %s %s %s", o.Dir, o.Needle, o.Target, strings.Join(o.Carriers, " ")))
}

// Pause is a no-op pause request.
type Pause struct{}

func (Pause) Kind() Kind     { return KindPause }
func (Pause) String() string { return "pause" }

// CarrierOp brings carriers in or out or releases the yarn inserting hook.
type CarrierOp struct {
	Op       Kind
	Carriers []string
}

func (o CarrierOp) Kind() Kind { return o.Op }
func (o CarrierOp) String() string {
	return o.Op.String() + " " + strings.Join(o.Carriers, " ")
}

// In marks carriers to come in at their next use.
func In(cs ...string) CarrierOp { return CarrierOp{Op: KindIn, Carriers: cs} }

// Inhook is In with the yarn inserting hook.
func Inhook(cs ...string) CarrierOp { return CarrierOp{Op: KindInhook, Carriers: cs} }

// Releasehook releases carriers held by the yarn inserting hook.
func Releasehook(cs ...string) CarrierOp { return CarrierOp{Op: KindReleasehook, Carriers: cs} }

// Out takes carriers out of action.
func Out(cs ...string) CarrierOp { return CarrierOp{Op: KindOut, Carriers: cs} }

// Outhook is Out with the yarn inserting hook.
func Outhook(cs ...string) CarrierOp { return CarrierOp{Op: KindOuthook, Carriers: cs} }

// StitchSize sets the loop length and tension values.
type StitchSize struct {
	Length, Tension float64
}

func (StitchSize) Kind() Kind { return KindStitch }
func (o StitchSize) String() string {
	return fmt.Sprintf("stitch %s %s",
		strconv.FormatFloat(o.Length, 'g', -1, 64), strconv.FormatFloat(o.Tension, 'g', -1, 64))
}
