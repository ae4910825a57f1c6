package search

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/joshua-maros/hecs/storage"
	"github.com/joshua-maros/hecs/types"
)

// Query is a declarative request for row-by-row access to every entity whose
// archetype stores all requested component types and none of the excluded
// ones. Requested types carry an access mode; the corresponding shared or
// exclusive borrow is held on each matched column for the full lifetime of
// one iteration, not per row.
//
// A Query holds no archetype cache: every Iter call matches archetypes
// freshly, so archetypes created since the last run are picked up
// transparently.
type Query struct {
	store    *storage.Store
	requests []request
	excluded []types.Component
}

type request struct {
	comp types.Component
	mode AccessMode
}

// NewQuery builds a query over the given store from read/write/exclude terms.
func NewQuery(store *storage.Store, terms ...Term) *Query {
	q := &Query{store: store}
	for _, term := range terms {
		switch term.kind {
		case termExclude:
			q.excluded = append(q.excluded, term.comp)
		case termWrite:
			q.requests = append(q.requests, request{comp: term.comp, mode: ModeWrite})
		default:
			q.requests = append(q.requests, request{comp: term.comp, mode: ModeRead})
		}
	}
	return q
}

// Iter starts one run of the query. It matches archetypes freshly, takes the
// borrows the access modes call for, and returns a lazy row iterator. It
// fails with ErrComponentAlreadyBorrowed, holding nothing, if any required
// borrow conflicts with a live one.
//
// Callers must call Close on the returned iterator (deferring it is the
// usual shape); the iterator also releases its borrows when it is exhausted.
func (q *Query) Iter() (*Iterator, error) {
	manager := q.store.Components()

	requested := make([]types.ComponentMetadata, len(q.requests))
	modes := make([]AccessMode, len(q.requests))
	byType := make(map[reflect.Type]int, len(q.requests))
	requiredIDs := make([]types.ComponentID, len(q.requests))
	for i, req := range q.requests {
		meta, err := manager.GetComponentByName(req.comp.Name())
		if err != nil {
			return nil, err
		}
		requested[i] = meta
		modes[i] = req.mode
		byType[meta.Type()] = i
		requiredIDs[i] = meta.ID()
	}
	excludedIDs := make([]types.ComponentID, len(q.excluded))
	for i, comp := range q.excluded {
		meta, err := manager.GetComponentByName(comp.Name())
		if err != nil {
			return nil, err
		}
		excludedIDs[i] = meta.ID()
	}

	it := &Iterator{
		modes:   modes,
		byType:  byType,
		archIdx: -1,
		row:     -1,
	}
	// Fresh archetype matching: enumerate in creation order, which is stable
	// for the lifetime of the store.
	for i := 0; i < q.store.ArchetypeCount(); i++ {
		arch := q.store.Archetype(i)
		sig := arch.Signature()
		if !sig.ContainsAll(requiredIDs) || !sig.DisjointWith(excludedIDs) {
			continue
		}
		m := match{arch: arch, cols: make([]*storage.Column, len(requested))}
		for j, meta := range requested {
			col, _ := arch.Column(meta.ID())
			m.cols[j] = col
		}
		it.matches = append(it.matches, m)
	}
	if err := it.acquire(); err != nil {
		return nil, err
	}
	return it, nil
}

// Each runs the query, invoking fn once per matching row. Returning false
// from fn stops the iteration. Borrows are released on every exit path.
func (q *Query) Each(fn func(it *Iterator) bool) error {
	it, err := q.Iter()
	if err != nil {
		return err
	}
	defer it.Close()
	for it.Next() {
		if !fn(it) {
			return nil
		}
	}
	return nil
}

// Count returns the number of rows the query currently matches.
func (q *Query) Count() (int, error) {
	it, err := q.Iter()
	if err != nil {
		return 0, err
	}
	defer it.Close()
	total := 0
	for _, m := range it.matches {
		total += m.arch.Len()
	}
	return total, nil
}

// First returns the first entity the query matches.
func (q *Query) First() (types.Entity, error) {
	it, err := q.Iter()
	if err != nil {
		return types.Nil, err
	}
	defer it.Close()
	if !it.Next() {
		return types.Nil, eris.New("no entity matches the query")
	}
	return it.Entity(), nil
}

// MustFirst returns the first entity the query matches, panicking if there
// is none.
func (q *Query) MustFirst() types.Entity {
	e, err := q.First()
	if err != nil {
		panic("no entity matches the query")
	}
	return e
}
