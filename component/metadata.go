package component

import (
	"reflect"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/joshua-maros/hecs/types"
)

// componentMetadata wraps a user-defined Component struct and carries the
// identity the storage layer needs: a dense ID, the concrete reflect.Type,
// a JSON schema, and codec functions.
type componentMetadata[T types.Component] struct {
	id      types.ComponentID
	isIDSet bool
	typ     reflect.Type
	name    string
	schema  []byte
}

// NewComponentMetadata builds the metadata for component type T.
func NewComponentMetadata[T types.Component]() (types.ComponentMetadata, error) {
	var t T
	typ := reflect.TypeOf(t)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, eris.Errorf("component %q must be a struct type", t.Name())
	}
	schema, err := types.SerializeComponentSchema(t)
	if err != nil {
		return nil, err
	}
	return &componentMetadata[T]{
		typ:    typ,
		name:   t.Name(),
		schema: schema,
	}, nil
}

func (c *componentMetadata[T]) Name() string {
	return c.name
}

func (c *componentMetadata[T]) SetID(id types.ComponentID) error {
	if c.isIDSet {
		// Tests often register the same component type in multiple worlds.
		// Re-initialization is allowed as long as the ID doesn't change.
		if id == c.id {
			return nil
		}
		return eris.Errorf("id for component %q is already set to %d, cannot change to %d", c.name, c.id, id)
	}
	c.id = id
	c.isIDSet = true
	return nil
}

func (c *componentMetadata[T]) ID() types.ComponentID {
	return c.id
}

func (c *componentMetadata[T]) Type() reflect.Type {
	return c.typ
}

func (c *componentMetadata[T]) Encode(v any) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to encode component %q", c.name)
	}
	return bz, nil
}

func (c *componentMetadata[T]) Decode(bz []byte) (any, error) {
	var comp T
	if err := json.Unmarshal(bz, &comp); err != nil {
		return nil, eris.Wrapf(err, "failed to decode component %q", c.name)
	}
	return comp, nil
}

func (c *componentMetadata[T]) GetSchema() []byte {
	return c.schema
}

func (c *componentMetadata[T]) ValidateAgainstSchema(targetSchema []byte) error {
	valid, err := types.IsSchemaValid(c.schema, targetSchema)
	if err != nil {
		return err
	}
	if !valid {
		return types.ErrComponentSchemaMismatch
	}
	return nil
}
