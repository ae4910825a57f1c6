// Package hecs is an in-process runtime for large, dynamically composed
// collections of entities. Each entity holds an arbitrary, changing set of
// typed components; entities sharing a component set are stored together in
// columnar archetypes, so iteration over a combination of component types is
// a dense scan. Component sets change at runtime without reflection-driven
// dispatch on the hot path: changing an entity's set migrates its row
// between archetypes, touching only the columns involved.
//
// A World is not safe for unsynchronized structural mutation from multiple
// goroutines. Aliasing within one World is policed at runtime by per-column
// shared/exclusive borrow counters: conflicting access fails immediately
// with ErrComponentAlreadyBorrowed rather than blocking, so there is nothing
// to deadlock on.
package hecs

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/joshua-maros/hecs/component"
	"github.com/joshua-maros/hecs/cql"
	"github.com/joshua-maros/hecs/filter"
	ecslog "github.com/joshua-maros/hecs/log"
	"github.com/joshua-maros/hecs/search"
	"github.com/joshua-maros/hecs/storage"
	"github.com/joshua-maros/hecs/telemetry"
	"github.com/joshua-maros/hecs/types"
)

// World owns the entity allocator, the component registry, and the full
// signature-to-archetype storage. All mutating operations and all query
// construction go through it.
type World struct {
	instanceID       uuid.UUID
	cfg              WorldConfig
	logger           zerolog.Logger
	loggerOverridden bool
	components       *component.Manager
	store            *storage.Store
}

// NewWorld creates a new World.
func NewWorld(opts ...WorldOption) (*World, error) {
	// Load config. Fallback value is used if it's not set.
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, err
	}
	w := &World{
		instanceID: uuid.New(),
		cfg:        cfg,
		components: component.NewManager(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if !w.loggerOverridden {
		level, err := zerolog.ParseLevel(w.cfg.LogLevel)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid log level %q", w.cfg.LogLevel)
		}
		logger := zerologlog.Logger.Level(level)
		if w.cfg.LogPretty {
			logger = logger.Output(zerolog.NewConsoleWriter())
		}
		w.logger = logger
	}
	w.logger = w.logger.With().Str("world_id", w.instanceID.String()).Logger()

	if w.cfg.StatsdAddress != "" {
		var tags []string
		if w.cfg.StatsdTags != "" {
			tags = strings.Split(w.cfg.StatsdTags, ",")
		}
		if err := telemetry.Init(w.cfg.StatsdAddress, tags); err != nil {
			return nil, err
		}
	}

	w.store = storage.NewStore(w.components, w.cfg.InitialCapacity, w.logger)
	w.logger.Info().Msg("world created")
	return w, nil
}

// Logger returns the World's logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// GetRegisteredComponents returns the metadata of every registered component.
func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.components.GetComponents()
}

// Spawn creates one entity holding the given component values and returns
// its handle. The handle stays valid until the matching Despawn.
func (w *World) Spawn(components ...types.Component) (types.Entity, error) {
	defer telemetry.EmitOpStat(time.Now(), "spawn")
	e, err := w.store.CreateEntity(components...)
	if err != nil {
		return types.Nil, err
	}
	telemetry.EmitCount("entities_spawned", 1)
	return e, nil
}

// SpawnBatch creates num entities, each holding a copy of the given
// component values. All rows land in a single archetype.
func (w *World) SpawnBatch(num int, components ...types.Component) ([]types.Entity, error) {
	defer telemetry.EmitOpStat(time.Now(), "spawn_batch")
	entities, err := w.store.CreateManyEntities(num, components...)
	if err != nil {
		return nil, err
	}
	telemetry.EmitCount("entities_spawned", int64(num))
	return entities, nil
}

// SpawnBundle creates one entity from a bundle's component values.
func (w *World) SpawnBundle(bundle Bundle) (types.Entity, error) {
	return w.Spawn(bundle.Components()...)
}

// Despawn destroys the entity: all its component values are dropped and the
// handle is invalidated. Despawning an already-despawned handle fails with
// ErrEntityNotFound.
func (w *World) Despawn(e types.Entity) error {
	defer telemetry.EmitOpStat(time.Now(), "despawn")
	if err := w.store.RemoveEntity(e); err != nil {
		return err
	}
	telemetry.EmitCount("entities_despawned", 1)
	return nil
}

// Insert attaches the given component values to the entity. Types already on
// the entity are overwritten in place; new types migrate the entity to the
// archetype for its extended component set. Insert never fails for a handle
// that validates, except on a borrow conflict.
func (w *World) Insert(e types.Entity, components ...types.Component) error {
	defer telemetry.EmitOpStat(time.Now(), "insert")
	return w.store.AddComponentsToEntity(e, components...)
}

// InsertBundle attaches a bundle's component values to the entity.
func (w *World) InsertBundle(e types.Entity, bundle Bundle) error {
	return w.Insert(e, bundle.Components()...)
}

// Remove detaches the named component types from the entity. It fails with
// ErrComponentMissing, changing nothing, if any named type is not on the
// entity.
func (w *World) Remove(e types.Entity, components ...filter.ComponentWrapper) error {
	defer telemetry.EmitOpStat(time.Now(), "remove")
	metas := make([]types.ComponentMetadata, len(components))
	for i, wrapper := range components {
		meta, err := w.components.GetComponentByName(wrapper.Component.Name())
		if err != nil {
			return err
		}
		metas[i] = meta
	}
	return w.store.RemoveComponentsFromEntity(e, metas...)
}

// Alive reports whether the handle refers to a live entity.
func (w *World) Alive(e types.Entity) bool {
	return w.store.Alive(e)
}

// NewSearch creates a search over this World's entities.
// It receives an arbitrary filter that is used to filter entities.
func (w *World) NewSearch(componentFilter filter.ComponentFilter) *search.Search {
	return search.NewSearch(w.store, componentFilter)
}

// NewQuery builds a borrowed, row-by-row query from read/write/exclude
// terms; see the search package for iteration.
func (w *World) NewQuery(terms ...search.Term) *search.Query {
	return search.NewQuery(w.store, terms...)
}

// CompileQuery parses a query-language expression (e.g.
// "CONTAINS(position) & !CONTAINS(frozen)") into a search.
func (w *World) CompileQuery(queryText string) (*search.Search, error) {
	componentFilter, err := cql.Parse(queryText, w.components.GetComponentByName)
	if err != nil {
		return nil, err
	}
	return search.NewSearch(w.store, componentFilter), nil
}

// DebugState renders every live entity and its component values as JSON. It
// is a diagnostic view, not a snapshot format; it takes shared borrows while
// reading, so it fails if any column it needs is exclusively borrowed.
func (w *World) DebugState() ([]types.EntityStateElement, error) {
	var state []types.EntityStateElement
	for i := 0; i < w.store.ArchetypeCount(); i++ {
		arch := w.store.Archetype(i)
		for _, col := range arch.Columns() {
			if err := col.AcquireShared(); err != nil {
				return nil, err
			}
		}
		elements, err := debugDumpArchetype(arch)
		for _, col := range arch.Columns() {
			col.ReleaseShared()
		}
		if err != nil {
			return nil, err
		}
		state = append(state, elements...)
	}
	return state, nil
}

func debugDumpArchetype(arch *storage.Archetype) ([]types.EntityStateElement, error) {
	elements := make([]types.EntityStateElement, 0, arch.Len())
	for row := 0; row < arch.Len(); row++ {
		comps := make(map[string]types.RawComponentJSON, len(arch.Columns()))
		for _, col := range arch.Columns() {
			meta := col.Metadata()
			bz, err := meta.Encode(col.Value(row))
			if err != nil {
				return nil, err
			}
			comps[meta.Name()] = bz
		}
		elements = append(elements, types.EntityStateElement{
			Entity:     arch.Entity(row),
			Components: comps,
		})
	}
	return elements, nil
}

// LogRegisteredComponents logs all registered component metadata at the
// given level.
func (w *World) LogRegisteredComponents(level zerolog.Level) {
	ecslog.Components(&w.logger, w, level)
}
