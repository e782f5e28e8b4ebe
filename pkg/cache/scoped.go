package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several users of one
// backend do not see each other's entries. The CLI scopes keys with the
// build version, which drops entries computed by older selectors.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ThreadKey generates a prefixed thread key.
func (k *ScopedKeyer) ThreadKey(imageHash string, opts ThreadKeyOpts) string {
	return k.prefix + k.inner.ThreadKey(imageHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(threadHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(threadHash, opts)
}
