package storage

import (
	"reflect"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/joshua-maros/hecs/component"
	ecslog "github.com/joshua-maros/hecs/log"
	"github.com/joshua-maros/hecs/types"
)

// Store owns the entity allocator and the full signature-to-archetype
// registry, and implements spawn, despawn, insert, and remove by computing
// target signatures and migrating rows between archetypes.
//
// Every structural mutation takes an exclusive borrow on each column it
// touches before modifying anything, so mutation conflicts with any live
// query or accessor holding a borrow on an archetype it would change. All
// validation also happens before the first byte moves: a rejected operation
// never leaves partial state behind.
type Store struct {
	components  *component.Manager
	allocator   *Allocator
	archetypes  []*Archetype
	bySignature map[string]*Archetype
	logger      zerolog.Logger
}

// NewStore creates a store backed by the given component registry.
func NewStore(manager *component.Manager, initialCapacity int, logger zerolog.Logger) *Store {
	return &Store{
		components:  manager,
		allocator:   NewAllocator(initialCapacity),
		archetypes:  make([]*Archetype, 0, 16),
		bySignature: make(map[string]*Archetype, 16),
		logger:      logger,
	}
}

// Components returns the component registry backing the store.
func (s *Store) Components() *component.Manager {
	return s.components
}

// ArchetypeCount returns the number of archetypes created so far. Archetypes
// are never destroyed, so indices below this count stay valid.
func (s *Store) ArchetypeCount() int {
	return len(s.archetypes)
}

// Archetype returns the archetype at the given index. The order is the order
// of creation and is stable for the lifetime of the store.
func (s *Store) Archetype(i int) *Archetype {
	return s.archetypes[i]
}

// Validate fails with ErrEntityNotFound if the handle is stale or was never
// issued.
func (s *Store) Validate(e types.Entity) error {
	return s.allocator.Validate(e)
}

// Alive reports whether the handle passes validation.
func (s *Store) Alive(e types.Entity) bool {
	return s.allocator.Alive(e)
}

// Location returns the archetype and row currently holding the entity.
func (s *Store) Location(e types.Entity) (*Archetype, int, error) {
	loc, err := s.allocator.Location(e)
	if err != nil {
		return nil, 0, err
	}
	return loc.Arch, loc.Row, nil
}

// CreateEntity spawns one entity holding the given component values.
func (s *Store) CreateEntity(comps ...types.Component) (types.Entity, error) {
	entities, err := s.CreateManyEntities(1, comps...)
	if err != nil {
		return types.Nil, err
	}
	return entities[0], nil
}

// CreateManyEntities spawns num entities, each holding a copy of the given
// component values, appending all of them to a single archetype.
func (s *Store) CreateManyEntities(num int, comps ...types.Component) ([]types.Entity, error) {
	metas, err := s.resolveMetas(comps)
	if err != nil {
		return nil, err
	}
	arch, err := s.archetypeFor(metas)
	if err != nil {
		return nil, err
	}
	release, err := acquireExclusive(arch.Columns())
	if err != nil {
		return nil, err
	}
	defer release()

	entities := make([]types.Entity, num)
	for i := range entities {
		e := s.allocator.Allocate()
		row := arch.pushRow(e)
		for j, meta := range metas {
			col, _ := arch.Column(meta.ID())
			if err := col.set(row, comps[j]); err != nil {
				// Unreachable after resolveMetas, but do not strand the row.
				arch.swapRemove(row)
				_ = s.allocator.Free(e)
				return nil, err
			}
		}
		s.allocator.SetLocation(e.Index, EntityLocation{Arch: arch, Row: row})
		entities[i] = e
		ecslog.Entity(&s.logger, zerolog.DebugLevel, e, arch.ID(), arch.Components())
	}
	return entities, nil
}

// RemoveEntity despawns the entity: every component value in its row is
// dropped, the row is swap-removed, and the handle's index is freed with a
// bumped generation. A second call with the same handle fails with
// ErrEntityNotFound.
func (s *Store) RemoveEntity(e types.Entity) error {
	loc, err := s.allocator.Location(e)
	if err != nil {
		return err
	}
	release, err := acquireExclusive(loc.Arch.Columns())
	if err != nil {
		return err
	}
	defer release()

	moved, ok := loc.Arch.swapRemove(loc.Row)
	if ok {
		s.allocator.SetLocation(moved.Index, EntityLocation{Arch: loc.Arch, Row: loc.Row})
	}
	if err := s.allocator.Free(e); err != nil {
		return err
	}
	s.logger.Debug().Str("entity", e.String()).Int("archetype_id", int(loc.Arch.ID())).Msg("entity removed")
	return nil
}

// AddComponentsToEntity attaches the given component values to the entity.
// Values whose type is already on the entity overwrite the old value in
// place; new types trigger a migration to the archetype for the extended
// signature. The operation never fails for a handle that validates, except
// on a borrow conflict.
func (s *Store) AddComponentsToEntity(e types.Entity, comps ...types.Component) error {
	metas, err := s.resolveMetas(comps)
	if err != nil {
		return err
	}
	loc, err := s.allocator.Location(e)
	if err != nil {
		return err
	}

	ids := make([]types.ComponentID, len(metas))
	for i, meta := range metas {
		ids[i] = meta.ID()
	}
	newSig := loc.Arch.Signature().With(ids...)
	if newSig.Equals(loc.Arch.Signature()) {
		// Degenerate case: the component set is unchanged, overwrite in place.
		return s.overwriteComponents(loc, metas, comps)
	}

	target, err := s.archetypeForSignature(newSig)
	if err != nil {
		return err
	}
	return s.migrate(e, loc, target, metas, comps)
}

// RemoveComponentsFromEntity detaches the given component types from the
// entity, migrating its row to the archetype for the shrunken signature.
// It fails with ErrComponentMissing, mutating nothing, if any named type is
// absent from the entity's current component set.
func (s *Store) RemoveComponentsFromEntity(e types.Entity, metas ...types.ComponentMetadata) error {
	loc, err := s.allocator.Location(e)
	if err != nil {
		return err
	}
	ids := make([]types.ComponentID, len(metas))
	for i, meta := range metas {
		if !loc.Arch.HasComponent(meta.ID()) {
			return eris.Wrapf(ErrComponentMissing, "component %q on entity %s", meta.Name(), e)
		}
		ids[i] = meta.ID()
	}

	newSig := loc.Arch.Signature().Without(ids...)
	if newSig.Equals(loc.Arch.Signature()) {
		return nil
	}
	target, err := s.archetypeForSignature(newSig)
	if err != nil {
		return err
	}
	return s.migrate(e, loc, target, nil, nil)
}

// GetComponentForEntity returns a copy of the entity's component value. A
// shared borrow is held on the column for the duration of the copy.
func (s *Store) GetComponentForEntity(e types.Entity, meta types.ComponentMetadata) (types.Component, error) {
	col, row, err := s.ResolveCell(e, meta)
	if err != nil {
		return nil, err
	}
	if err := col.AcquireShared(); err != nil {
		return nil, err
	}
	defer col.ReleaseShared()
	return col.Value(row), nil
}

// SetComponentForEntity overwrites the entity's component value in place.
func (s *Store) SetComponentForEntity(e types.Entity, meta types.ComponentMetadata, value types.Component) error {
	col, row, err := s.ResolveCell(e, meta)
	if err != nil {
		return err
	}
	if err := col.AcquireExclusive(); err != nil {
		return err
	}
	defer col.ReleaseExclusive()
	return col.set(row, value)
}

// ResolveCell validates the handle and locates the column and row holding the
// entity's value for the given component type. The caller is responsible for
// taking a borrow before touching the cell.
func (s *Store) ResolveCell(e types.Entity, meta types.ComponentMetadata) (*Column, int, error) {
	loc, err := s.allocator.Location(e)
	if err != nil {
		return nil, 0, err
	}
	col, ok := loc.Arch.Column(meta.ID())
	if !ok {
		return nil, 0, eris.Wrapf(ErrComponentMissing, "component %q on entity %s", meta.Name(), e)
	}
	return col, loc.Row, nil
}

// overwriteComponents replaces component values without a signature change.
func (s *Store) overwriteComponents(loc EntityLocation, metas []types.ComponentMetadata, comps []types.Component) error {
	cols := make([]*Column, len(metas))
	for i, meta := range metas {
		col, _ := loc.Arch.Column(meta.ID())
		cols[i] = col
	}
	release, err := acquireExclusive(cols)
	if err != nil {
		return err
	}
	defer release()
	for i, col := range cols {
		if err := col.set(loc.Row, comps[i]); err != nil {
			return err
		}
	}
	return nil
}

// migrate moves the entity's row from its current archetype into target:
// values for component types present in both archetypes are moved across,
// types present only in the source are dropped with the swap-removed row,
// newly added values populate the columns present only in target, and the
// relocated neighbor's location is repaired. Cost is proportional to the
// number of component types touched, never to the number of entities stored.
func (s *Store) migrate(
	e types.Entity,
	loc EntityLocation,
	target *Archetype,
	newMetas []types.ComponentMetadata,
	newComps []types.Component,
) error {
	release, err := acquireExclusive(loc.Arch.Columns(), target.Columns())
	if err != nil {
		return err
	}
	defer release()

	dstRow := target.pushRow(e)
	for _, srcCol := range loc.Arch.Columns() {
		dstCol, ok := target.Column(srcCol.Metadata().ID())
		if !ok {
			continue
		}
		dstCol.moveFrom(dstRow, srcCol, loc.Row)
	}
	for i, meta := range newMetas {
		col, _ := target.Column(meta.ID())
		if err := col.set(dstRow, newComps[i]); err != nil {
			return err
		}
	}
	moved, ok := loc.Arch.swapRemove(loc.Row)
	if ok {
		s.allocator.SetLocation(moved.Index, EntityLocation{Arch: loc.Arch, Row: loc.Row})
	}
	s.allocator.SetLocation(e.Index, EntityLocation{Arch: target, Row: dstRow})
	s.logger.Debug().
		Str("entity", e.String()).
		Int("from_archetype_id", int(loc.Arch.ID())).
		Int("to_archetype_id", int(target.ID())).
		Msg("entity migrated")
	return nil
}

// resolveMetas maps concrete component values to their registered metadata
// and rejects bundles naming the same type twice.
func (s *Store) resolveMetas(comps []types.Component) ([]types.ComponentMetadata, error) {
	metas := make([]types.ComponentMetadata, len(comps))
	seen := make(map[types.ComponentID]struct{}, len(comps))
	for i, comp := range comps {
		meta, err := s.components.GetComponentByType(reflect.TypeOf(comp))
		if err != nil {
			return nil, err
		}
		if _, ok := seen[meta.ID()]; ok {
			return nil, eris.Wrapf(ErrDuplicateComponent, "component %q", meta.Name())
		}
		seen[meta.ID()] = struct{}{}
		metas[i] = meta
	}
	return metas, nil
}

// archetypeFor finds or lazily creates the archetype storing exactly the
// given component types.
func (s *Store) archetypeFor(metas []types.ComponentMetadata) (*Archetype, error) {
	ids := make([]types.ComponentID, len(metas))
	for i, meta := range metas {
		ids[i] = meta.ID()
	}
	return s.archetypeForSignature(NewSignature(ids...))
}

func (s *Store) archetypeForSignature(sig Signature) (*Archetype, error) {
	key := sig.Key()
	if arch, ok := s.bySignature[key]; ok {
		return arch, nil
	}
	metas := make([]types.ComponentMetadata, 0, sig.Len())
	for _, id := range sig.IDs() {
		meta, err := s.components.GetComponentByID(id)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	arch := newArchetype(types.ArchetypeID(len(s.archetypes)), metas)
	s.archetypes = append(s.archetypes, arch)
	s.bySignature[key] = arch
	ecslog.Archetype(&s.logger, zerolog.DebugLevel, arch.ID(), arch.Components())
	return arch, nil
}

// acquireExclusive takes an exclusive borrow on every column in the given
// sets, releasing everything already taken if any single acquisition
// conflicts. The returned release function undoes all of them.
func acquireExclusive(colSets ...[]*Column) (func(), error) {
	taken := make([]*Column, 0, 8)
	release := func() {
		for _, col := range taken {
			col.ReleaseExclusive()
		}
	}
	for _, cols := range colSets {
		for _, col := range cols {
			if err := col.AcquireExclusive(); err != nil {
				release()
				return nil, err
			}
			taken = append(taken, col)
		}
	}
	return release, nil
}
