package search

import (
	"fmt"
	"reflect"

	"github.com/joshua-maros/hecs/storage"
	"github.com/joshua-maros/hecs/types"
)

type match struct {
	arch *storage.Archetype
	cols []*storage.Column // parallel to the query's requested types
}

// Iterator is one lazy run of a Query: an outer enumeration over matched
// archetypes in creation order, an inner enumeration row by row. The borrows
// taken at Iter time are released when the iterator is exhausted or closed,
// so abandoning an iteration early is always safe as long as Close runs.
type Iterator struct {
	matches []match
	modes   []AccessMode
	byType  map[reflect.Type]int

	archIdx  int
	row      int
	acquired int // columns holding a borrow, counted across matches
	released bool
}

// acquire takes the mode-appropriate borrow on every matched column,
// releasing everything taken so far if one acquisition conflicts.
func (it *Iterator) acquire() error {
	for _, m := range it.matches {
		for i, col := range m.cols {
			var err error
			if it.modes[i] == ModeWrite {
				err = col.AcquireExclusive()
			} else {
				err = col.AcquireShared()
			}
			if err != nil {
				it.release()
				return err
			}
			it.acquired++
		}
	}
	return nil
}

func (it *Iterator) release() {
	if it.released {
		return
	}
	it.released = true
	n := it.acquired
	for _, m := range it.matches {
		for i, col := range m.cols {
			if n == 0 {
				return
			}
			if it.modes[i] == ModeWrite {
				col.ReleaseExclusive()
			} else {
				col.ReleaseShared()
			}
			n--
		}
	}
}

// Next advances to the next matching row, returning false when the run is
// exhausted. Exhaustion releases the iterator's borrows.
func (it *Iterator) Next() bool {
	if it.released {
		return false
	}
	it.row++
	for it.archIdx < 0 || it.row >= it.currentLen() {
		it.archIdx++
		it.row = 0
		if it.archIdx >= len(it.matches) {
			it.release()
			return false
		}
	}
	return true
}

func (it *Iterator) currentLen() int {
	if it.archIdx < 0 || it.archIdx >= len(it.matches) {
		return 0
	}
	return it.matches[it.archIdx].arch.Len()
}

// Entity returns the entity at the current row.
func (it *Iterator) Entity() types.Entity {
	return it.matches[it.archIdx].arch.Entity(it.row)
}

// Close releases the iterator's borrows. It is idempotent and safe to defer
// alongside consuming the iterator to exhaustion.
func (it *Iterator) Close() {
	it.release()
}

func (it *Iterator) columnForType(typ reflect.Type, needWrite bool) *storage.Column {
	i, ok := it.byType[typ]
	if !ok {
		panic(fmt.Sprintf("component type %v was not requested by this query", typ))
	}
	if needWrite && it.modes[i] != ModeWrite {
		panic(fmt.Sprintf("component type %v was requested read-only", typ))
	}
	return it.matches[it.archIdx].cols[i]
}

// Get copies out the current row's value for component type T. T must be one
// of the query's requested types.
func Get[T types.Component](it *Iterator) T {
	var zero T
	col := it.columnForType(reflect.TypeOf(zero), false)
	// The one explicitly typed boundary out of type-erased storage.
	return *(*T)(col.CellPointer(it.row))
}

// Mut returns a pointer into the current row's value for component type T.
// T must have been requested with Write; the pointer is valid only until the
// next call to Next or Close.
func Mut[T types.Component](it *Iterator) *T {
	var zero T
	col := it.columnForType(reflect.TypeOf(zero), true)
	return (*T)(col.CellPointer(it.row))
}
