package knit

import (
	"fmt"
	"regexp"
	"strconv"
)

// Bed selects one of the two opposing needle rows.
type Bed uint8

const (
	Front Bed = iota
	Back
)

// String returns the single-letter bed name used in needle references.
func (b Bed) String() string {
	if b == Back {
		return "b"
	}
	return "f"
}

// Opposite returns the other bed.
func (b Bed) Opposite() Bed {
	if b == Back {
		return Front
	}
	return Back
}

// NeedleKey identifies a physical needle. Both of its regions share the key.
type NeedleKey struct {
	Bed   Bed
	Index int
}

// String formats the key as "f3" or "b-2".
func (k NeedleKey) String() string {
	return k.Bed.String() + strconv.Itoa(k.Index)
}

// Less orders keys front bed first, then by index.
func (k NeedleKey) Less(o NeedleKey) bool {
	if k.Bed != o.Bed {
		return k.Bed < o.Bed
	}
	return k.Index < o.Index
}

// NeedleRef addresses one region of a needle: the hook region when Slider is
// false, the slider region otherwise.
type NeedleRef struct {
	Bed    Bed
	Slider bool
	Index  int
}

// Key returns the physical needle the reference points at.
func (r NeedleRef) Key() NeedleKey {
	return NeedleKey{Bed: r.Bed, Index: r.Index}
}

// BedName returns "f", "fs", "b" or "bs".
func (r NeedleRef) BedName() string {
	if r.Slider {
		return r.Bed.String() + "s"
	}
	return r.Bed.String()
}

// String formats the reference in machine notation, e.g. "f-3" or "bs12".
func (r NeedleRef) String() string {
	return r.BedName() + strconv.Itoa(r.Index)
}

var (
	needleRe    = regexp.MustCompile(`^([fb])(s?)(-?\d+)$`)
	needleKeyRe = regexp.MustCompile(`^([fb])(-?\d+)$`)
)

// ParseNeedle parses a needle reference such as "f-3" or "bs12".
func ParseNeedle(s string) (NeedleRef, error) {
	m := needleRe.FindStringSubmatch(s)
	if m == nil {
		return NeedleRef{}, fmt.Errorf("%w: %q", ErrBadNeedle, s)
	}
	idx, err := strconv.Atoi(m[3])
	if err != nil {
		return NeedleRef{}, fmt.Errorf("%w: %q: %v", ErrBadNeedle, s, err)
	}
	return NeedleRef{Bed: parseBed(m[1]), Slider: m[2] == "s", Index: idx}, nil
}

// MustParseNeedle is like [ParseNeedle] but panics on malformed input.
// It is meant for tests and literals.
func MustParseNeedle(s string) NeedleRef {
	r, err := ParseNeedle(s)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseNeedleKey parses a physical needle name without slider flag, e.g. "b4".
func ParseNeedleKey(s string) (NeedleKey, error) {
	m := needleKeyRe.FindStringSubmatch(s)
	if m == nil {
		return NeedleKey{}, fmt.Errorf("%w: %q", ErrBadNeedle, s)
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return NeedleKey{}, fmt.Errorf("%w: %q: %v", ErrBadNeedle, s, err)
	}
	return NeedleKey{Bed: parseBed(m[1]), Index: idx}, nil
}

func parseBed(s string) Bed {
	if s == "b" {
		return Back
	}
	return Front
}
