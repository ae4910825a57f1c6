package search_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-maros/hecs/component"
	"github.com/joshua-maros/hecs/filter"
	"github.com/joshua-maros/hecs/search"
	"github.com/joshua-maros/hecs/storage"
	"github.com/joshua-maros/hecs/types"
)

type Position struct {
	X, Y float64
}

func (Position) Name() string { return "position" }

type Velocity struct {
	DX, DY float64
}

func (Velocity) Name() string { return "velocity" }

type Frozen struct{}

func (Frozen) Name() string { return "frozen" }

func newStoreForTest(t *testing.T) *storage.Store {
	t.Helper()
	manager := component.NewManager()
	for _, newMeta := range []func() (types.ComponentMetadata, error){
		component.NewComponentMetadata[Position],
		component.NewComponentMetadata[Velocity],
		component.NewComponentMetadata[Frozen],
	} {
		meta, err := newMeta()
		require.NoError(t, err)
		_, err = manager.Register(meta)
		require.NoError(t, err)
	}
	return storage.NewStore(manager, 64, zerolog.Nop())
}

func TestQueryVisitsExactlyMatchingEntities(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateEntity(Position{X: 1})
	require.NoError(t, err)
	both, err := s.CreateEntity(Position{X: 2}, Velocity{DX: 1})
	require.NoError(t, err)
	_, err = s.CreateEntity(Velocity{DX: 2})
	require.NoError(t, err)

	q := search.NewQuery(s, search.Write[Position](), search.Read[Velocity]())
	var visited []types.Entity
	err = q.Each(func(it *search.Iterator) bool {
		visited = append(visited, it.Entity())
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []types.Entity{both}, visited)
}

func TestQueryWritesThroughMut(t *testing.T) {
	s := newStoreForTest(t)
	e, err := s.CreateEntity(Position{X: 1}, Velocity{DX: 10, DY: 20})
	require.NoError(t, err)

	q := search.NewQuery(s, search.Write[Position](), search.Read[Velocity]())
	err = q.Each(func(it *search.Iterator) bool {
		pos := search.Mut[Position](it)
		vel := search.Get[Velocity](it)
		pos.X += vel.DX
		pos.Y += vel.DY
		return true
	})
	require.NoError(t, err)

	meta, err := s.Components().GetComponentByName("position")
	require.NoError(t, err)
	got, err := s.GetComponentForEntity(e, meta)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 11, Y: 20}, got.(Position))
}

func TestQueryExclusion(t *testing.T) {
	s := newStoreForTest(t)
	moving, err := s.CreateEntity(Position{}, Velocity{})
	require.NoError(t, err)
	_, err = s.CreateEntity(Position{}, Velocity{}, Frozen{})
	require.NoError(t, err)

	q := search.NewQuery(s, search.Read[Position](), search.Read[Velocity](), search.Exclude[Frozen]())
	count, err := q.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	first, err := q.First()
	require.NoError(t, err)
	assert.Equal(t, moving, first)
}

func TestQueryEachVisitsEveryRowOnce(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateManyEntities(200, Position{}, Velocity{})
	require.NoError(t, err)
	_, err = s.CreateManyEntities(50, Position{})
	require.NoError(t, err)

	q := search.NewQuery(s, search.Read[Position]())
	seen := map[types.Entity]int{}
	err = q.Each(func(it *search.Iterator) bool {
		seen[it.Entity()]++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 250, len(seen))
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}
}

func TestTwoReadersMayOverlap(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateEntity(Position{}, Velocity{})
	require.NoError(t, err)

	q1 := search.NewQuery(s, search.Read[Position]())
	q2 := search.NewQuery(s, search.Read[Position]())

	it1, err := q1.Iter()
	require.NoError(t, err)
	defer it1.Close()

	it2, err := q2.Iter()
	require.NoError(t, err)
	it2.Close()
}

func TestWriterConflictsWithReader(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateEntity(Position{}, Velocity{})
	require.NoError(t, err)

	reader := search.NewQuery(s, search.Read[Position]())
	it, err := reader.Iter()
	require.NoError(t, err)
	defer it.Close()

	writer := search.NewQuery(s, search.Write[Position]())
	_, err = writer.Iter()
	assert.ErrorIs(t, err, storage.ErrComponentAlreadyBorrowed)

	// A writer on an untouched component type is fine.
	other := search.NewQuery(s, search.Write[Velocity]())
	otherIt, err := other.Iter()
	require.NoError(t, err)
	otherIt.Close()
}

func TestWriterConflictsWithWriter(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateEntity(Position{})
	require.NoError(t, err)

	w1 := search.NewQuery(s, search.Write[Position]())
	it, err := w1.Iter()
	require.NoError(t, err)

	w2 := search.NewQuery(s, search.Write[Position]())
	_, err = w2.Iter()
	assert.ErrorIs(t, err, storage.ErrComponentAlreadyBorrowed)

	// Abandoning the first run releases its borrow on every exit path.
	it.Close()
	it2, err := w2.Iter()
	require.NoError(t, err)
	it2.Close()
}

func TestBorrowsReleasedAtExhaustion(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateEntity(Position{})
	require.NoError(t, err)

	q := search.NewQuery(s, search.Write[Position]())
	it, err := q.Iter()
	require.NoError(t, err)
	for it.Next() {
	}
	// Exhaustion released the exclusive borrow without an explicit Close.
	_, err = s.CreateEntity(Position{X: 1})
	require.NoError(t, err)
}

func TestMutationDuringIterationFails(t *testing.T) {
	s := newStoreForTest(t)
	e, err := s.CreateEntity(Position{}, Velocity{})
	require.NoError(t, err)

	q := search.NewQuery(s, search.Read[Position]())
	it, err := q.Iter()
	require.NoError(t, err)
	defer it.Close()
	require.True(t, it.Next())

	assert.ErrorIs(t, s.RemoveEntity(e), storage.ErrComponentAlreadyBorrowed)
	assert.ErrorIs(t, s.AddComponentsToEntity(e, Frozen{}), storage.ErrComponentAlreadyBorrowed)
}

func TestIterMatchesFreshly(t *testing.T) {
	s := newStoreForTest(t)
	q := search.NewQuery(s, search.Read[Position]())

	count, err := q.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Archetypes created after the query was built are matched transparently.
	_, err = s.CreateEntity(Position{}, Velocity{})
	require.NoError(t, err)
	_, err = s.CreateEntity(Position{}, Frozen{})
	require.NoError(t, err)

	count, err = q.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetPanicsForUnrequestedComponent(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateEntity(Position{}, Velocity{})
	require.NoError(t, err)

	q := search.NewQuery(s, search.Read[Position]())
	err = q.Each(func(it *search.Iterator) bool {
		assert.Panics(t, func() { search.Get[Velocity](it) })
		assert.Panics(t, func() { search.Mut[Position](it) }, "write access was not requested")
		return false
	})
	require.NoError(t, err)
}

func TestSearchEachCountFirst(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateEntity(Position{})
	require.NoError(t, err)
	_, err = s.CreateEntity(Position{}, Velocity{})
	require.NoError(t, err)
	_, err = s.CreateEntity(Velocity{})
	require.NoError(t, err)

	sr := search.NewSearch(s, filter.Contains(Position{}))
	count, err := sr.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	visited := 0
	err = sr.Each(func(types.Entity) bool {
		visited++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 2, visited)

	exact := search.NewSearch(s, filter.Exact(Velocity{}))
	first, err := exact.First()
	require.NoError(t, err)
	assert.True(t, s.Alive(first))

	none := search.NewSearch(s, filter.Contains(Frozen{}))
	_, err = none.First()
	assert.Error(t, err)
	assert.Panics(t, func() { none.MustFirst() })
}

func TestSearchEachMayDespawn(t *testing.T) {
	s := newStoreForTest(t)
	_, err := s.CreateManyEntities(10, Position{})
	require.NoError(t, err)

	sr := search.NewSearch(s, filter.Contains(Position{}))
	err = sr.Each(func(e types.Entity) bool {
		require.NoError(t, s.RemoveEntity(e))
		return true
	})
	require.NoError(t, err)

	count, err := sr.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
