package hecs

import (
	"github.com/joshua-maros/hecs/component"
	"github.com/joshua-maros/hecs/storage"
)

// The storage layer's error taxonomy, re-exported for callers that only
// import the root package. Match with eris.Is or errors.Is.
var (
	ErrEntityNotFound           = storage.ErrEntityNotFound
	ErrComponentMissing         = storage.ErrComponentMissing
	ErrComponentAlreadyBorrowed = storage.ErrComponentAlreadyBorrowed
	ErrDuplicateComponent       = storage.ErrDuplicateComponent
	ErrComponentNotRegistered   = component.ErrComponentNotRegistered
	ErrDuplicateComponentName   = component.ErrDuplicateComponentName
)
