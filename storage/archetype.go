package storage

import (
	"sort"

	"github.com/joshua-maros/hecs/types"
)

// Archetype is the dense table holding every live entity that has exactly one
// combination of component types: one column per component type plus an
// entity column. All columns share the same length, and row i across all
// columns belongs to the same entity.
type Archetype struct {
	id        types.ArchetypeID
	signature Signature
	comps     []types.ComponentMetadata // sorted by ID, parallel to columns
	columns   []*Column
	columnIdx map[types.ComponentID]int
	entities  []types.Entity
	len       int
}

func newArchetype(id types.ArchetypeID, comps []types.ComponentMetadata) *Archetype {
	sorted := make([]types.ComponentMetadata, len(comps))
	copy(sorted, comps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })

	ids := make([]types.ComponentID, len(sorted))
	columns := make([]*Column, len(sorted))
	columnIdx := make(map[types.ComponentID]int, len(sorted))
	for i, meta := range sorted {
		ids[i] = meta.ID()
		columns[i] = newColumn(meta)
		columnIdx[meta.ID()] = i
	}
	return &Archetype{
		id:        id,
		signature: NewSignature(ids...),
		comps:     sorted,
		columns:   columns,
		columnIdx: columnIdx,
	}
}

// ID returns the archetype's identity within its store.
func (a *Archetype) ID() types.ArchetypeID {
	return a.id
}

// Signature returns the component set this archetype stores.
func (a *Archetype) Signature() Signature {
	return a.signature
}

// Components returns the archetype's component types sorted by ID. The slice
// must not be mutated.
func (a *Archetype) Components() []types.ComponentMetadata {
	return a.comps
}

// Len returns the number of rows (live entities) in the archetype.
func (a *Archetype) Len() int {
	return a.len
}

// Entity returns the entity stored at the given row.
func (a *Archetype) Entity(row int) types.Entity {
	return a.entities[row]
}

// Column returns the column storing the given component type, if present.
func (a *Archetype) Column(id types.ComponentID) (*Column, bool) {
	i, ok := a.columnIdx[id]
	if !ok {
		return nil, false
	}
	return a.columns[i], true
}

// Columns returns all component columns. The slice must not be mutated.
func (a *Archetype) Columns() []*Column {
	return a.columns
}

// HasComponent reports whether the archetype stores the given component type.
func (a *Archetype) HasComponent(id types.ComponentID) bool {
	_, ok := a.columnIdx[id]
	return ok
}

// pushRow appends an empty row for the given entity, growing every column as
// needed, and returns the new row index. The caller must populate every
// component column before the row is observable through a query.
func (a *Archetype) pushRow(e types.Entity) int {
	if a.len == len(a.entities) {
		newCap := len(a.entities) * 2
		if newCap < startingCapacity {
			newCap = startingCapacity
		}
		grown := make([]types.Entity, newCap)
		copy(grown, a.entities)
		a.entities = grown
	}
	for _, col := range a.columns {
		if col.capacity() <= a.len {
			col.grow(a.len + 1)
		}
	}
	row := a.len
	a.entities[row] = e
	a.len++
	return row
}

// swapRemove drops row from every column and fills the hole with the last
// row. It returns the entity that was relocated into the vacated row, or
// false if the removed row was the last one. The caller must update the
// relocated entity's recorded location.
func (a *Archetype) swapRemove(row int) (types.Entity, bool) {
	last := a.len - 1
	for _, col := range a.columns {
		col.swapRemove(row, last)
	}
	a.len = last
	if row != last {
		a.entities[row] = a.entities[last]
		a.entities[last] = types.Nil
		return a.entities[row], true
	}
	a.entities[last] = types.Nil
	return types.Nil, false
}
