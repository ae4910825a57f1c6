package types

import "fmt"

// Entity is an opaque handle to one object stored in a World. It is a plain
// value: freely copyable, comparable with ==, and owning nothing. A handle is
// live iff its generation matches the generation the allocator currently
// stores for its index.
type Entity struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

// Nil is the zero Entity. Generations start at 1, so Nil never names a live
// entity.
var Nil = Entity{}

func (e Entity) IsNil() bool {
	return e == Nil
}

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.Index, e.Generation)
}

// EntityStateElement is one entity's components rendered as JSON, used by
// World.DebugState.
type EntityStateElement struct {
	Entity     Entity                      `json:"entity"`
	Components map[string]RawComponentJSON `json:"components"`
}

// RawComponentJSON is a pre-encoded component value.
type RawComponentJSON []byte

// MarshalJSON returns r as-is; the bytes are already valid JSON.
func (r RawComponentJSON) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r, nil
}
