package storage

import (
	"github.com/rotisserie/eris"

	"github.com/joshua-maros/hecs/types"
)

// EntityLocation is the current storage address of a live entity. It is
// owned and mutated exclusively by the Store whenever a row is created,
// migrated, or swap-removed.
type EntityLocation struct {
	Arch *Archetype
	Row  int
}

// Allocator issues and validates entity handles and tracks each live
// entity's location. Freed indices are recycled through a free list; every
// recycle increments the slot's generation so stale handles fail validation.
//
// Generations are 32-bit and do not wrap safely: a single slot reused on the
// order of 2^32 times will produce a colliding handle. This is an accepted
// limitation.
type Allocator struct {
	generations []uint32
	locations   []EntityLocation
	free        []uint32
}

// NewAllocator creates an allocator with capacity pre-allocated for the given
// number of entities. Capacity only tunes allocation; the allocator grows
// without bound.
func NewAllocator(initialCapacity int) *Allocator {
	return &Allocator{
		generations: make([]uint32, 0, initialCapacity),
		locations:   make([]EntityLocation, 0, initialCapacity),
		free:        make([]uint32, 0, initialCapacity),
	}
}

// Allocate returns a fresh handle: either a recycled free-list index whose
// generation was bumped when it was freed, or a brand new index at
// generation 1.
func (a *Allocator) Allocate() types.Entity {
	if n := len(a.free); n > 0 {
		index := a.free[n-1]
		a.free = a.free[:n-1]
		return types.Entity{Index: index, Generation: a.generations[index]}
	}
	index := uint32(len(a.generations))
	a.generations = append(a.generations, 1)
	a.locations = append(a.locations, EntityLocation{})
	return types.Entity{Index: index, Generation: 1}
}

// Validate succeeds iff the stored generation for the handle's index equals
// the handle's generation.
func (a *Allocator) Validate(e types.Entity) error {
	if int(e.Index) >= len(a.generations) || a.generations[e.Index] != e.Generation {
		return eris.Wrapf(ErrEntityNotFound, "entity %s", e)
	}
	return nil
}

// Free returns the handle's index to the free list and bumps its stored
// generation, invalidating the handle and any copies of it.
func (a *Allocator) Free(e types.Entity) error {
	if err := a.Validate(e); err != nil {
		return err
	}
	a.generations[e.Index]++
	a.locations[e.Index] = EntityLocation{}
	a.free = append(a.free, e.Index)
	return nil
}

// Location returns the storage address of a live entity.
func (a *Allocator) Location(e types.Entity) (EntityLocation, error) {
	if err := a.Validate(e); err != nil {
		return EntityLocation{}, err
	}
	return a.locations[e.Index], nil
}

// SetLocation records the storage address for the given index. Only the
// Store calls this, during spawn, despawn, and migration.
func (a *Allocator) SetLocation(index uint32, loc EntityLocation) {
	a.locations[index] = loc
}

// Alive reports whether the handle passes validation.
func (a *Allocator) Alive(e types.Entity) bool {
	return a.Validate(e) == nil
}
