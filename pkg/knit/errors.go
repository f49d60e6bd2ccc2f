package knit

import "errors"

// Sentinel errors returned by machine operations. Callers match them with
// errors.Is; the returned errors usually wrap them with the offending needles.
var (
	// ErrBadNeedle is returned when a needle reference cannot be parsed.
	ErrBadNeedle = errors.New("invalid needle")

	// ErrSameBed is returned for a transfer whose endpoints share a bed.
	ErrSameBed = errors.New("transfer must cross to the opposite bed")

	// ErrSliderToSlider is returned for a transfer between two slider regions.
	ErrSliderToSlider = errors.New("cannot transfer slider to slider")

	// ErrOverSlider is returned when a hook-region transfer would pass
	// through loops held on a slider.
	ErrOverSlider = errors.New("cannot transfer over an occupied slider")

	// ErrRackingLimit is returned when a transfer or rack exceeds the
	// configured maximum racking.
	ErrRackingLimit = errors.New("racking out of range")

	// ErrPortInUse is returned when connecting a port that already holds a link.
	ErrPortInUse = errors.New("port already linked")

	// ErrSelfLink is returned when both ends of a link are the same port.
	ErrSelfLink = errors.New("link ends on a single port")

	// ErrNoPort is returned when linking a marker item, which has no ports.
	ErrNoPort = errors.New("marker items have no ports")

	// ErrDetached is returned when linking a port of an item that is not on
	// any needle.
	ErrDetached = errors.New("item is not on a needle")

	// ErrBadSnapshot is returned when a snapshot descriptor is malformed or
	// refers to items that do not exist.
	ErrBadSnapshot = errors.New("invalid snapshot")

	// ErrInconsistent is returned by Validate when the graph breaks one of its
	// structural invariants.
	ErrInconsistent = errors.New("inconsistent loop graph")
)
