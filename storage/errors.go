package storage

import (
	"github.com/rotisserie/eris"
)

var (
	// ErrEntityNotFound is returned for handles that are stale (the index was
	// reused) or were never issued.
	ErrEntityNotFound = eris.New("entity does not exist")
	// ErrComponentMissing is returned when an accessed or removed component
	// type is absent from the entity's current component set.
	ErrComponentMissing = eris.New("component not on entity")
	// ErrComponentAlreadyBorrowed is returned when an acquisition would alias
	// a column that is already borrowed incompatibly. It is raised before any
	// read or write touches the column.
	ErrComponentAlreadyBorrowed = eris.New("component is already borrowed")
	// ErrDuplicateComponent is returned when a bundle names the same
	// component type more than once.
	ErrDuplicateComponent = eris.New("duplicate component in bundle")
)
