package cache

import "time"

// Entry lifetimes. Histories are deterministic for a given key, so they
// only expire to bound disk use.
const (
	TTLHistory  = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// HistoryKey addresses the simulated history of a script.
	HistoryKey(scriptHash string, opts HistoryKeyOpts) string
	// ArtifactKey addresses one rendered output of a history.
	ArtifactKey(historyHash string, opts ArtifactKeyOpts) string
}

// HistoryKeyOpts are the simulation options that change a history.
type HistoryKeyOpts struct {
	MaxRacking      int      `json:"max_racking"`
	Carriers        []string `json:"carriers,omitempty"`
	DegeneratePinch bool     `json:"degenerate_pinch"`
	UnwindRacking   bool     `json:"unwind_racking"`
}

// ArtifactKeyOpts are the layout and render options that change an artifact.
// Params holds the layout parameters in any JSON-encodable form.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Style    string  `json:"style"`
	Step     int     `json:"step"`
	Params   any     `json:"params,omitempty"`
	Labels   bool    `json:"labels"`
	Title    bool    `json:"title"`
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HistoryKey returns "history:<sha256>".
func (DefaultKeyer) HistoryKey(scriptHash string, opts HistoryKeyOpts) string {
	return hashKey("history", scriptHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(historyHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", historyHash, opts)
}

var _ Keyer = DefaultKeyer{}
