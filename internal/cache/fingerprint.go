// Package cache persists typed module artefacts between builds, keyed by a
// content fingerprint. A module whose source and whose dependencies'
// fingerprints are unchanged is adopted from the cache without re-inference.
package cache

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// SchemaVersion is folded into every fingerprint and written into every
// entry header. Bumping it invalidates all existing cache entries at once,
// which is how format changes ship without migration code.
const SchemaVersion = 1

// Fingerprint identifies one module's compilation inputs: its source bytes,
// the build options that shape its diagnostics, its dependencies'
// fingerprints and the cache schema version. Equal fingerprints mean a
// cached artefact is safe to reuse.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// ModuleFingerprint hashes a module's source together with the fingerprints
// of its direct dependencies. Dependency fingerprints are sorted first so the
// result does not depend on import order; transitive changes propagate
// because a dependency's own fingerprint already covers its dependencies.
//
// options encodes build configuration that changes the produced artefact
// (e.g. exhaustiveness strictness, which bakes severity into cached
// diagnostics), so builds under incompatible configurations never share
// entries.
func ModuleFingerprint(source []byte, options uint64, deps []Fingerprint) Fingerprint {
	sorted := append([]Fingerprint(nil), deps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	h := xxhash.New()
	var word [8]byte

	binary.BigEndian.PutUint64(word[:], SchemaVersion)
	h.Write(word[:])
	binary.BigEndian.PutUint64(word[:], options)
	h.Write(word[:])
	binary.BigEndian.PutUint64(word[:], uint64(len(source)))
	h.Write(word[:])
	h.Write(source)
	for _, dep := range sorted {
		binary.BigEndian.PutUint64(word[:], uint64(dep))
		h.Write(word[:])
	}

	return Fingerprint(h.Sum64())
}
