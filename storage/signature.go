package storage

import (
	"sort"
	"strconv"
	"strings"

	"github.com/joshua-maros/hecs/types"
)

// Signature is the canonical, order-independent set of component IDs that
// identifies one archetype. Two archetypes never share a signature.
type Signature struct {
	ids []types.ComponentID // sorted ascending, no duplicates
}

// NewSignature canonicalizes the given component IDs into a signature.
func NewSignature(ids ...types.ComponentID) Signature {
	sorted := make([]types.ComponentID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	// Dedupe in place. Canonical form keeps map keys stable.
	out := sorted[:0]
	for i, id := range sorted {
		if i == 0 || id != sorted[i-1] {
			out = append(out, id)
		}
	}
	return Signature{ids: out}
}

// Key renders the signature as a deterministic map key.
func (s Signature) Key() string {
	var b strings.Builder
	for i, id := range s.ids {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
	return b.String()
}

// Len returns the number of component types in the signature.
func (s Signature) Len() int {
	return len(s.ids)
}

// IDs returns the sorted component IDs. The slice must not be mutated.
func (s Signature) IDs() []types.ComponentID {
	return s.ids
}

// Contains reports whether the signature includes the given component ID.
func (s Signature) Contains(id types.ComponentID) bool {
	i := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
	return i < len(s.ids) && s.ids[i] == id
}

// ContainsAll reports whether the signature is a superset of the given IDs.
func (s Signature) ContainsAll(ids []types.ComponentID) bool {
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// DisjointWith reports whether the signature shares no ID with the given set.
func (s Signature) DisjointWith(ids []types.ComponentID) bool {
	for _, id := range ids {
		if s.Contains(id) {
			return false
		}
	}
	return true
}

// With returns the signature extended by the given IDs.
func (s Signature) With(ids ...types.ComponentID) Signature {
	merged := make([]types.ComponentID, 0, len(s.ids)+len(ids))
	merged = append(merged, s.ids...)
	merged = append(merged, ids...)
	return NewSignature(merged...)
}

// Without returns the signature with the given IDs removed.
func (s Signature) Without(ids ...types.ComponentID) Signature {
	removed := make(map[types.ComponentID]struct{}, len(ids))
	for _, id := range ids {
		removed[id] = struct{}{}
	}
	kept := make([]types.ComponentID, 0, len(s.ids))
	for _, id := range s.ids {
		if _, ok := removed[id]; !ok {
			kept = append(kept, id)
		}
	}
	return Signature{ids: kept}
}

// Equals reports whether two signatures name the same component set.
func (s Signature) Equals(other Signature) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for i, id := range s.ids {
		if other.ids[i] != id {
			return false
		}
	}
	return true
}
