package component

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/joshua-maros/hecs/types"
)

var (
	ErrComponentNotRegistered = eris.New("component not registered")
	ErrDuplicateComponentName = eris.New("component name is already registered to a different type")
)

// Manager assigns component IDs and resolves component types by name, by ID,
// and by concrete Go type.
type Manager struct {
	registeredComponents map[string]types.ComponentMetadata
	byType               map[reflect.Type]types.ComponentMetadata
	byID                 map[types.ComponentID]types.ComponentMetadata
	nextComponentID      types.ComponentID
}

// NewManager creates a new component manager.
func NewManager() *Manager {
	return &Manager{
		registeredComponents: make(map[string]types.ComponentMetadata),
		byType:               make(map[reflect.Type]types.ComponentMetadata),
		byID:                 make(map[types.ComponentID]types.ComponentMetadata),
		nextComponentID:      1,
	}
}

// Register registers a component with the manager. There can only be one
// component with a given name, which is declared by the user by implementing
// the Name() method. Registering the same name with a structurally identical
// type is a no-op returning the existing metadata; a name collision between
// two different types is an error.
func (m *Manager) Register(compMetadata types.ComponentMetadata) (types.ComponentMetadata, error) {
	if existing, ok := m.registeredComponents[compMetadata.Name()]; ok {
		if err := compMetadata.ValidateAgainstSchema(existing.GetSchema()); err != nil {
			if eris.Is(err, types.ErrComponentSchemaMismatch) {
				return nil, eris.Wrapf(ErrDuplicateComponentName, "component %q", compMetadata.Name())
			}
			return nil, eris.Wrap(err, "error when validating component schema against registered schema")
		}
		return existing, nil
	}

	if err := compMetadata.SetID(m.nextComponentID); err != nil {
		return nil, err
	}
	m.registeredComponents[compMetadata.Name()] = compMetadata
	m.byType[compMetadata.Type()] = compMetadata
	m.byID[compMetadata.ID()] = compMetadata
	m.nextComponentID++

	return compMetadata, nil
}

// GetComponents returns a list of all registered components sorted by ID.
func (m *Manager) GetComponents() []types.ComponentMetadata {
	registeredComponents := make([]types.ComponentMetadata, 0, len(m.registeredComponents))
	for _, comp := range m.registeredComponents {
		registeredComponents = append(registeredComponents, comp)
	}
	sort.Slice(registeredComponents, func(i, j int) bool {
		return registeredComponents[i].ID() < registeredComponents[j].ID()
	})
	return registeredComponents
}

// GetComponentByName returns the component metadata for the given component name.
func (m *Manager) GetComponentByName(name string) (types.ComponentMetadata, error) {
	c, ok := m.registeredComponents[name]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component %q is not registered", name)
	}
	return c, nil
}

// GetComponentByType returns the component metadata registered for the given
// concrete Go type.
func (m *Manager) GetComponentByType(typ reflect.Type) (types.ComponentMetadata, error) {
	c, ok := m.byType[typ]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component type %v is not registered", typ)
	}
	return c, nil
}

// GetComponentByID returns the component metadata for the given component ID.
func (m *Manager) GetComponentByID(id types.ComponentID) (types.ComponentMetadata, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component id %d is not registered", id)
	}
	return c, nil
}

// ComponentCount returns the number of registered component types.
func (m *Manager) ComponentCount() int {
	return len(m.registeredComponents)
}
