package search

import (
	"github.com/joshua-maros/hecs/types"
)

// AccessMode is the access a query takes on one requested component type.
type AccessMode int

const (
	// ModeRead takes a shared borrow on the component's columns.
	ModeRead AccessMode = iota
	// ModeWrite takes an exclusive borrow on the component's columns.
	ModeWrite
)

func (m AccessMode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

type termKind int

const (
	termRead termKind = iota
	termWrite
	termExclude
)

// Term is one clause of a query: a component type requested for reading or
// writing, or excluded from matching.
type Term struct {
	comp types.Component
	kind termKind
}

// Read requests shared access to component type T.
func Read[T types.Component]() Term {
	var x T
	return Term{comp: x, kind: termRead}
}

// Write requests exclusive access to component type T.
func Write[T types.Component]() Term {
	var x T
	return Term{comp: x, kind: termWrite}
}

// Exclude narrows the query to archetypes that do not store component type T.
func Exclude[T types.Component]() Term {
	var x T
	return Term{comp: x, kind: termExclude}
}
