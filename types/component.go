package types

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// ComponentID is the process-unique identity assigned to a component type at
// registration. IDs are dense and start at 1; 0 is never assigned.
type ComponentID int

// ArchetypeID identifies one archetype within a store. Archetypes are created
// on first use of a signature and retained for the lifetime of the store.
type ArchetypeID int

// Component is the interface that the user needs to implement to create a new
// component type. A component must be a plain struct whose zero value is
// usable; the engine copies component values by assignment.
type Component interface {
	// Name returns the name of the component. Names must be unique across
	// all registered component types.
	Name() string
}

// ComponentMetadata wraps a user-defined Component type and carries the
// type identity the storage layer needs for type-erased columns.
type ComponentMetadata interface {
	// SetID sets the ComponentID of this component. It must only be set once.
	SetID(ComponentID) error
	// ID returns the ComponentID of the component.
	ID() ComponentID
	// Type returns the concrete Go type of the component.
	Type() reflect.Type
	// Encode marshals a component value to JSON.
	Encode(any) ([]byte, error)
	// Decode unmarshals a component value from JSON.
	Decode([]byte) (any, error)
	// GetSchema returns the JSON schema of the component type.
	GetSchema() []byte
	// ValidateAgainstSchema fails with ErrComponentSchemaMismatch if the
	// given schema differs from this component's schema.
	ValidateAgainstSchema([]byte) error

	Component
}

var ErrComponentSchemaMismatch = eris.New("component schema does not match target schema")

// SerializeComponentSchema derives the JSON schema of a component type.
func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsSchemaValid returns true if the two JSON schemas are structurally equal.
func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}

// ConvertComponentMetadatasToComponents casts a slice of ComponentMetadata
// into a slice of Component.
func ConvertComponentMetadatasToComponents(comps []ComponentMetadata) []Component {
	ret := make([]Component, len(comps))
	for i, comp := range comps {
		ret[i] = comp
	}
	return ret
}
