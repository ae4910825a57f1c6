package hecs

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/joshua-maros/hecs/component"
	"github.com/joshua-maros/hecs/storage"
	"github.com/joshua-maros/hecs/types"
)

// Bundle is a reusable recipe for a set of component values, typically
// produced from a user-defined aggregate type. It is pure convenience sugar
// over the variadic forms of Spawn and Insert; the component values it
// returns must have distinct types.
type Bundle interface {
	Components() []types.Component
}

// RegisterComponent registers component type T with the World. Component
// values of unregistered types are rejected by every operation. Registering
// the same type twice is a no-op; registering a different type under an
// already-taken name is an error.
func RegisterComponent[T types.Component](w *World) error {
	compMetadata, err := component.NewComponentMetadata[T]()
	if err != nil {
		return err
	}
	registered, err := w.components.Register(compMetadata)
	if err != nil {
		return err
	}
	w.logger.Info().
		Str("component_name", registered.Name()).
		Int("component_id", int(registered.ID())).
		Msg("registered component")
	return nil
}

func metadataFor[T types.Component](w *World) (types.ComponentMetadata, error) {
	var t T
	return w.components.GetComponentByType(reflect.TypeOf(t))
}

// GetComponent returns a copy of the entity's component value of type T. The
// column's shared borrow is held only for the duration of the copy.
func GetComponent[T types.Component](w *World, e types.Entity) (T, error) {
	var zero T
	c, err := metadataFor[T](w)
	if err != nil {
		return zero, err
	}
	value, err := w.store.GetComponentForEntity(e, c)
	if err != nil {
		return zero, err
	}
	comp, ok := value.(T)
	if !ok {
		return zero, eris.Errorf("type assertion for component %q failed", c.Name())
	}
	return comp, nil
}

// ViewComponent returns a read-only reference to the entity's component
// value of type T, holding a shared borrow on its column until Release.
// Writing through the reference is a contract violation.
func ViewComponent[T types.Component](w *World, e types.Entity) (*Ref[T], error) {
	return acquireRef[T](w, e, false)
}

// MutComponent returns a mutable reference to the entity's component value
// of type T, holding the column's exclusive borrow until Release.
func MutComponent[T types.Component](w *World, e types.Entity) (*Ref[T], error) {
	return acquireRef[T](w, e, true)
}

func acquireRef[T types.Component](w *World, e types.Entity, exclusive bool) (*Ref[T], error) {
	c, err := metadataFor[T](w)
	if err != nil {
		return nil, err
	}
	col, row, err := w.store.ResolveCell(e, c)
	if err != nil {
		return nil, err
	}
	if exclusive {
		err = col.AcquireExclusive()
	} else {
		err = col.AcquireShared()
	}
	if err != nil {
		return nil, err
	}
	return &Ref[T]{col: col, row: row, exclusive: exclusive}, nil
}

// SetComponent overwrites the entity's component value of type T in place.
func SetComponent[T types.Component](w *World, e types.Entity, comp *T) error {
	c, err := metadataFor[T](w)
	if err != nil {
		return err
	}
	if err := w.store.SetComponentForEntity(e, c, types.Component(*comp)); err != nil {
		return err
	}
	w.logger.Debug().
		Str("entity", e.String()).
		Str("component_name", c.Name()).
		Int("component_id", int(c.ID())).
		Msg("entity updated")
	return nil
}

// UpdateComponent reads the entity's component value of type T, applies fn,
// and writes the result back.
func UpdateComponent[T types.Component](w *World, e types.Entity, fn func(*T) *T) error {
	val, err := GetComponent[T](w, e)
	if err != nil {
		return err
	}
	updatedVal := fn(&val)
	return SetComponent[T](w, e, updatedVal)
}

// AddComponentTo attaches a zero-valued component of type T to the entity.
func AddComponentTo[T types.Component](w *World, e types.Entity) error {
	var t T
	return w.Insert(e, types.Component(t))
}

// RemoveComponentFrom detaches the component of type T from the entity.
func RemoveComponentFrom[T types.Component](w *World, e types.Entity) error {
	c, err := metadataFor[T](w)
	if err != nil {
		return err
	}
	return w.store.RemoveComponentsFromEntity(e, c)
}

// Ref is a borrowed reference into one component cell. It keeps its column's
// borrow until Release; while an exclusive Ref is live, any operation
// needing that column fails with ErrComponentAlreadyBorrowed, which also
// pins the referenced row in place.
type Ref[T types.Component] struct {
	col       *storage.Column
	row       int
	exclusive bool
	released  bool
}

// Value returns the referenced component. The pointer is valid only until
// Release.
func (r *Ref[T]) Value() *T {
	if r.released {
		panic("component reference used after release")
	}
	return (*T)(r.col.CellPointer(r.row))
}

// Release returns the borrow. It is idempotent; using the Ref afterwards
// panics.
func (r *Ref[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	if r.exclusive {
		r.col.ReleaseExclusive()
	} else {
		r.col.ReleaseShared()
	}
}
