package search

import (
	"github.com/rotisserie/eris"

	"github.com/joshua-maros/hecs/filter"
	"github.com/joshua-maros/hecs/storage"
	"github.com/joshua-maros/hecs/types"
)

// CallbackFn is invoked once per matching entity; return false to stop.
type CallbackFn func(types.Entity) bool

// Search enumerates the entities whose archetype matches a component filter.
// Unlike Query it hands out entity handles only, takes no borrows, and is
// the execution target for compiled query-language expressions.
//
// Matching archetypes are determined freshly on every run, never from a
// cache, so archetypes created between runs are included transparently.
type Search struct {
	store  *storage.Store
	filter filter.ComponentFilter
}

// NewSearch creates a search over the given store.
// It receives an arbitrary filter that is used to filter entities.
func NewSearch(store *storage.Store, componentFilter filter.ComponentFilter) *Search {
	return &Search{
		store:  store,
		filter: componentFilter,
	}
}

// Each iterates over all entities that match the search.
// If you would like to stop the iteration, return false to the callback. To
// continue iterating, return true.
func (s *Search) Each(callback CallbackFn) error {
	for _, id := range s.evaluate() {
		if !callback(id) {
			return nil
		}
	}
	return nil
}

// Count returns the number of entities that match the search.
func (s *Search) Count() (int, error) {
	total := 0
	for i := 0; i < s.store.ArchetypeCount(); i++ {
		arch := s.store.Archetype(i)
		if s.matches(arch) {
			total += arch.Len()
		}
	}
	return total, nil
}

// First returns the first entity that matches the search.
func (s *Search) First() (types.Entity, error) {
	for i := 0; i < s.store.ArchetypeCount(); i++ {
		arch := s.store.Archetype(i)
		if s.matches(arch) && arch.Len() > 0 {
			return arch.Entity(0), nil
		}
	}
	return types.Nil, eris.New("no entity matches the search")
}

// MustFirst returns the first entity that matches the search, panicking if
// there is none.
func (s *Search) MustFirst() types.Entity {
	id, err := s.First()
	if err != nil {
		panic("no entity matches the search")
	}
	return id
}

// evaluate snapshots the matching entity handles so that the callback in
// Each is free to mutate the world structurally.
func (s *Search) evaluate() []types.Entity {
	var ids []types.Entity
	for i := 0; i < s.store.ArchetypeCount(); i++ {
		arch := s.store.Archetype(i)
		if !s.matches(arch) {
			continue
		}
		for row := 0; row < arch.Len(); row++ {
			ids = append(ids, arch.Entity(row))
		}
	}
	return ids
}

func (s *Search) matches(arch *storage.Archetype) bool {
	return s.filter.MatchesComponents(types.ConvertComponentMetadatasToComponents(arch.Components()))
}
