package cache

// ScopedKeyer prefixes every key of an inner Keyer. The pipeline scopes keys
// by build version so a new release never reads entries written by an older
// simulator.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HistoryKey returns the prefixed history key.
func (k *ScopedKeyer) HistoryKey(scriptHash string, opts HistoryKeyOpts) string {
	return k.prefix + k.inner.HistoryKey(scriptHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(historyHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(historyHash, opts)
}
