package component_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-maros/hecs/component"
)

type Energy struct {
	Amount int
	Cap    int
}

func (Energy) Name() string { return "energy" }

type Ownable struct {
	Owner string
}

func (Ownable) Name() string { return "ownable" }

// energyConflict reuses Energy's name with a different field layout.
type energyConflict struct {
	Amount string
}

func (energyConflict) Name() string { return "energy" }

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	manager := component.NewManager()

	energyMeta, err := component.NewComponentMetadata[Energy]()
	require.NoError(t, err)
	registered, err := manager.Register(energyMeta)
	require.NoError(t, err)
	assert.Equal(t, 1, int(registered.ID()))

	ownableMeta, err := component.NewComponentMetadata[Ownable]()
	require.NoError(t, err)
	registered, err = manager.Register(ownableMeta)
	require.NoError(t, err)
	assert.Equal(t, 2, int(registered.ID()))

	assert.Equal(t, 2, manager.ComponentCount())
}

func TestRegisterSameTypeIsIdempotent(t *testing.T) {
	manager := component.NewManager()

	first, err := component.NewComponentMetadata[Energy]()
	require.NoError(t, err)
	firstRegistered, err := manager.Register(first)
	require.NoError(t, err)

	second, err := component.NewComponentMetadata[Energy]()
	require.NoError(t, err)
	secondRegistered, err := manager.Register(second)
	require.NoError(t, err)

	assert.Equal(t, firstRegistered.ID(), secondRegistered.ID())
	assert.Equal(t, 1, manager.ComponentCount())
}

func TestRegisterRejectsNameCollision(t *testing.T) {
	manager := component.NewManager()

	energyMeta, err := component.NewComponentMetadata[Energy]()
	require.NoError(t, err)
	_, err = manager.Register(energyMeta)
	require.NoError(t, err)

	conflict, err := component.NewComponentMetadata[energyConflict]()
	require.NoError(t, err)
	_, err = manager.Register(conflict)
	assert.ErrorIs(t, err, component.ErrDuplicateComponentName)
}

func TestLookups(t *testing.T) {
	manager := component.NewManager()
	energyMeta, err := component.NewComponentMetadata[Energy]()
	require.NoError(t, err)
	registered, err := manager.Register(energyMeta)
	require.NoError(t, err)

	byName, err := manager.GetComponentByName("energy")
	require.NoError(t, err)
	assert.Equal(t, registered.ID(), byName.ID())

	byType, err := manager.GetComponentByType(reflect.TypeOf(Energy{}))
	require.NoError(t, err)
	assert.Equal(t, registered.ID(), byType.ID())

	byID, err := manager.GetComponentByID(registered.ID())
	require.NoError(t, err)
	assert.Equal(t, "energy", byID.Name())

	_, err = manager.GetComponentByName("missing")
	assert.ErrorIs(t, err, component.ErrComponentNotRegistered)
	_, err = manager.GetComponentByType(reflect.TypeOf(Ownable{}))
	assert.ErrorIs(t, err, component.ErrComponentNotRegistered)
	_, err = manager.GetComponentByID(42)
	assert.ErrorIs(t, err, component.ErrComponentNotRegistered)
}

func TestGetComponentsSortedByID(t *testing.T) {
	manager := component.NewManager()

	ownableMeta, err := component.NewComponentMetadata[Ownable]()
	require.NoError(t, err)
	_, err = manager.Register(ownableMeta)
	require.NoError(t, err)

	energyMeta, err := component.NewComponentMetadata[Energy]()
	require.NoError(t, err)
	_, err = manager.Register(energyMeta)
	require.NoError(t, err)

	all := manager.GetComponents()
	require.Len(t, all, 2)
	assert.Equal(t, "ownable", all[0].Name())
	assert.Equal(t, "energy", all[1].Name())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	meta, err := component.NewComponentMetadata[Energy]()
	require.NoError(t, err)

	raw, err := meta.Encode(Energy{Amount: 3, Cap: 10})
	require.NoError(t, err)

	decoded, err := meta.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, Energy{Amount: 3, Cap: 10}, decoded.(Energy))
}

func TestNewComponentMetadataRejectsNonStruct(t *testing.T) {
	_, err := component.NewComponentMetadata[intComponent]()
	assert.Error(t, err)
}

type intComponent int

func (intComponent) Name() string { return "int-component" }
