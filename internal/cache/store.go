package cache

import "github.com/sable-lang/sable/internal/infer"

// Store is the persistence interface the build pipeline consults per module.
// Load reports a miss for anything it cannot fully trust: a missing entry, a
// fingerprint mismatch, a schema version bump or a corrupt payload. Misses
// are never errors; the pipeline just re-infers the module.
type Store interface {
	Load(module string, fp Fingerprint) (*infer.TypedModule, bool)
	Save(module string, fp Fingerprint, typed *infer.TypedModule) error
	Clean() error
}

// Null is a Store that caches nothing. It keeps the pipeline free of nil
// checks when caching is disabled.
type Null struct{}

func (Null) Load(string, Fingerprint) (*infer.TypedModule, bool) { return nil, false }

func (Null) Save(string, Fingerprint, *infer.TypedModule) error { return nil }

func (Null) Clean() error { return nil }
