package ecs

import (
	"fmt"
	"sort"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
	"go.uber.org/zap"
)

// entityLocation is the reverse index entry spec §3 requires: which
// archetype an entity currently resides in, and at which row.
type entityLocation struct {
	archetype archetypeID
	row       int
}

// World owns every entity, archetype, the deferred command buffer, the
// reference index, queries, and hooks for one simulation. A World is not
// safe for concurrent mutation (spec §5).
type World struct {
	entities *entityAllocator
	shapeIdx *shapeIndex

	archetypesByID   map[archetypeID]*archetype
	archetypesByMask map[mask.Mask]archetypeID
	archetypesByComp map[Id]map[archetypeID]struct{}
	nextArchetypeID  archetypeID

	entityLoc map[Id]entityLocation

	// sideTable is the DontFragment side-table (spec §3): entity → (concrete
	// relation id → payload), for relations whose component is dontFragment.
	sideTable map[Id]map[Id]any

	refIndex *referenceIndex
	cmds     *commandBuffer
	queries  *queryCache
	hooks    *hookRegistry

	syncing bool
	logger  *zap.Logger
}

// WorldOption configures a World at construction time.
type WorldOption func(*World)

// WithLogger attaches a zap logger used for Debug-level structural tracing
// (archetype creation/GC, structural moves, cascade-delete visits, hook
// (un)registration). Drain-cap trips are not logged; they only panic. The
// default is a no-op logger.
func WithLogger(l *zap.Logger) WorldOption {
	return func(w *World) { w.logger = l }
}

// NewWorld creates an empty World. It takes no snapshot; call Restore on
// the new World to load one produced by Serialize.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		entities:         newEntityAllocator(),
		shapeIdx:         newShapeIndex(),
		archetypesByID:   make(map[archetypeID]*archetype),
		archetypesByMask: make(map[mask.Mask]archetypeID),
		archetypesByComp: make(map[Id]map[archetypeID]struct{}),
		entityLoc:        make(map[Id]entityLocation),
		sideTable:        make(map[Id]map[Id]any),
		refIndex:         newReferenceIndex(),
		cmds:             newCommandBuffer(),
		queries:          newQueryCache(),
		hooks:            newHookRegistry(),
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewComponent registers a new component descriptor and returns its id. It
// panics with NameAlreadyRegistered on a name collision; for a recoverable
// registration path use TryNewComponent.
func (w *World) NewComponent(opts ComponentOptions) Id {
	id, err := globalRegistry.register(opts)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return id
}

// TryNewComponent registers a new component descriptor, returning
// NameAlreadyRegistered instead of panicking on a name collision.
func (w *World) TryNewComponent(opts ComponentOptions) (Id, error) {
	return globalRegistry.register(opts)
}

// NewEntity allocates a new entity id and places it in the empty
// archetype.
func (w *World) NewEntity() Id {
	id := w.entities.alloc()
	empty := w.getOrCreateArchetype(nil)
	row := empty.insert(id, nil)
	w.entityLoc[id] = entityLocation{archetype: empty.id, row: row}
	return id
}

// Exists reports whether id currently denotes a live entity. An entity with
// a pending (not yet Sync'd) delete still exists (spec §9 open question).
func (w *World) Exists(id Id) bool {
	_, ok := w.entityLoc[id]
	return ok
}

// Set stages an add/update of id on entity, applied on the next Sync. An
// omitted payload marks the component present with Absent.
func (w *World) Set(entity, id Id, payload ...any) {
	if !w.Exists(entity) {
		panic(bark.AddTrace(EntityNotFound{Entity: entity}))
	}
	if IsWildcard(id) {
		panic(bark.AddTrace(CannotSetWildcardDirectly{Id: id}))
	}
	var p any = Absent
	if len(payload) > 0 {
		p = payload[0]
	}
	w.cmds.pushSet(entity, id, p)
}

// Remove stages a removal of id from entity, applied on the next Sync.
func (w *World) Remove(entity, id Id) {
	if !w.Exists(entity) {
		panic(bark.AddTrace(EntityNotFound{Entity: entity}))
	}
	w.cmds.pushRemove(entity, id)
}

// Delete stages destruction of entity (with cascade), applied on the next
// Sync. Deleting an already-deleted-but-unsynced entity is a no-op at sync
// time, not an error here, since the command buffer cannot yet know sync
// order will collapse it.
func (w *World) Delete(entity Id) {
	if !w.Exists(entity) {
		panic(bark.AddTrace(EntityNotFound{Entity: entity}))
	}
	w.cmds.pushDelete(entity)
}

// Has reports whether entity currently holds id (reflecting the last
// Sync'd state, not yet-pending commands).
func (w *World) Has(entity, id Id) bool {
	_, ok := w.Get(entity, id)
	return ok
}

// Get returns id's payload on entity. For a wildcard relation it returns a
// []RelationValue of every matching concrete (target, payload) pair.
func (w *World) Get(entity, id Id) (any, bool) {
	loc, ok := w.entityLoc[entity]
	if !ok {
		return nil, false
	}
	arch := w.archetypesByID[loc.archetype]

	if IsWildcard(id) {
		return w.getWildcard(entity, arch, loc.row, id), true
	}

	if IsDontFragmentRelation(id) {
		if v, ok := w.sideTable[entity][id]; ok {
			return v, true
		}
		return nil, false
	}

	return arch.get(loc.row, id)
}

// MustGet is Get's programmer-error variant: it panics EntityNotFound if
// entity doesn't exist, or ComponentNotOnEntity if it exists but lacks id.
func (w *World) MustGet(entity, id Id) any {
	if !w.Exists(entity) {
		panic(bark.AddTrace(EntityNotFound{Entity: entity}))
	}
	v, ok := w.Get(entity, id)
	if !ok {
		panic(bark.AddTrace(ComponentNotOnEntity{Entity: entity, Component: id}))
	}
	return v
}

// RelationValue is a pair of (target, payload) returned for wildcard Get calls.
type RelationValue struct {
	Target  Id
	Payload any
}

func (w *World) getWildcard(entity Id, arch *archetype, row int, wildcard Id) []RelationValue {
	component := RelationComponent(wildcard)
	var out []RelationValue
	for _, shapeID := range arch.shape {
		if shapeID == wildcard {
			continue
		}
		if Classify(shapeID) == KindWildcardRelation {
			continue
		}
		if !IsRelation(shapeID) || RelationComponent(shapeID) != component {
			continue
		}
		v, _ := arch.get(row, shapeID)
		_, target := decodeRelation(shapeID)
		out = append(out, RelationValue{Target: target, Payload: v})
	}
	for relID, payload := range w.sideTable[entity] {
		if RelationComponent(relID) == component {
			_, target := decodeRelation(relID)
			out = append(out, RelationValue{Target: target, Payload: payload})
		}
	}
	return out
}

// hasId reports whether entity currently holds id, across archetype
// columns and the dontFragment side-table.
func (w *World) hasId(entity Id, id Id, arch *archetype, row int) bool {
	if IsDontFragmentRelation(id) {
		_, ok := w.sideTable[entity][id]
		return ok
	}
	if !arch.has(id) {
		return false
	}
	_, ok := arch.get(row, id)
	return ok
}

// concreteRelationsOf returns every concrete (non-wildcard) relation id of
// component currently held by entity, across archetype shape and the
// side-table.
func (w *World) concreteRelationsOf(entity Id, component Id, arch *archetype) []Id {
	var out []Id
	for _, shapeID := range arch.shape {
		if IsRelation(shapeID) && !IsWildcard(shapeID) && RelationComponent(shapeID) == component {
			out = append(out, shapeID)
		}
	}
	for relID := range w.sideTable[entity] {
		if RelationComponent(relID) == component {
			out = append(out, relID)
		}
	}
	return out
}

func (w *World) setSideTable(entity, id Id, payload any) {
	m := w.sideTable[entity]
	if m == nil {
		m = make(map[Id]any)
		w.sideTable[entity] = m
	}
	m[id] = payload
}

func (w *World) clearSideTable(entity, id Id) {
	m := w.sideTable[entity]
	if m == nil {
		return
	}
	delete(m, id)
	if len(m) == 0 {
		delete(w.sideTable, entity)
	}
}

// getOrCreateArchetype resolves the archetype for the sorted (or unsorted;
// it sorts internally) shape, creating it if no archetype yet has that
// exact signature (spec §4.7 "resolve or create the target archetype by
// sorted-signature lookup").
func (w *World) getOrCreateArchetype(shape []Id) *archetype {
	sig := w.shapeIdx.maskOf(shape)
	if id, ok := w.archetypesByMask[sig]; ok {
		return w.archetypesByID[id]
	}

	w.nextArchetypeID++
	id := w.nextArchetypeID
	arch := newArchetype(id, shape, w.shapeIdx)
	w.archetypesByID[id] = arch
	w.archetypesByMask[arch.sig] = id
	for _, c := range arch.shape {
		set := w.archetypesByComp[c]
		if set == nil {
			set = make(map[archetypeID]struct{})
			w.archetypesByComp[c] = set
		}
		set[id] = struct{}{}
	}
	w.logger.Debug("archetype created", zap.Uint32("id", uint32(id)), zap.Int("shape_len", len(arch.shape)))
	w.queries.onArchetypeCreated(arch, w)
	w.refreshMultiHooks(arch)
	return arch
}

// maybeGCArchetype removes arch from every index if it is empty and its
// shape mentions an id that no longer denotes a live entity (spec §4.8
// "empty archetypes whose shape mentions the victim id are garbage
// collected").
func (w *World) maybeGCArchetype(arch *archetype) {
	if arch.len() != 0 {
		return
	}
	mentionsDeadEntity := false
	for _, id := range arch.shape {
		if Classify(id) == KindEntity && !w.Exists(id) {
			mentionsDeadEntity = true
			break
		}
		if c, t := decodeRelationSafe(id); t != 0 && Classify(t) == KindEntity && !w.Exists(t) {
			_ = c
			mentionsDeadEntity = true
			break
		}
	}
	if !mentionsDeadEntity {
		return
	}
	delete(w.archetypesByID, arch.id)
	delete(w.archetypesByMask, arch.sig)
	for _, c := range arch.shape {
		delete(w.archetypesByComp[c], arch.id)
	}
	w.logger.Debug("archetype garbage collected", zap.Uint32("id", uint32(arch.id)))
	w.queries.onArchetypeRemoved(arch)
}

func decodeRelationSafe(id Id) (component, target Id) {
	if !IsRelation(id) {
		return 0, 0
	}
	return decodeRelation(id)
}

// Archetypes returns every live archetype, for introspection.
func (w *World) Archetypes() []*archetype {
	out := make([]*archetype, 0, len(w.archetypesByID))
	for _, a := range w.archetypesByID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// ComponentOptions returns the registered flags for a component id, for
// test/debug introspection.
func (w *World) ComponentOptions(id Id) ComponentOptions {
	return globalRegistry.optionsOf(id)
}

// ArchetypesByComponent lists the ids of every live archetype whose shape
// contains id (spec §6 introspection).
func (w *World) ArchetypesByComponent(id Id) []archetypeID {
	set := w.archetypesByComp[id]
	out := make([]archetypeID, 0, len(set))
	for archID := range set {
		out = append(out, archID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DumpArchetype renders the shape and resident entity count of arch, for
// test/debug introspection, in the spirit of the teacher's
// Entity.ComponentsAsString().
func (w *World) DumpArchetype(id archetypeID) string {
	arch, ok := w.archetypesByID[id]
	if !ok {
		return "<missing>"
	}
	return archetypeString(arch)
}

// DumpEntity renders entity's held ids and payloads for test/debug
// introspection, in the spirit of the teacher's
// Entity.ComponentsAsString().
func (w *World) DumpEntity(entity Id) string {
	loc, ok := w.entityLoc[entity]
	if !ok {
		return "<unknown entity>"
	}
	arch := w.archetypesByID[loc.archetype]

	out := fmt.Sprintf("entity#%d ", entity) + "["
	first := true
	for _, id := range arch.shape {
		if Classify(id) == KindWildcardRelation {
			continue
		}
		v, _ := arch.get(loc.row, id)
		if !first {
			out += ", "
		}
		first = false
		out += fmt.Sprintf("%s=%v", idString(id), v)
	}
	for id, payload := range w.sideTable[entity] {
		if !first {
			out += ", "
		}
		first = false
		out += fmt.Sprintf("%s=%v", idString(id), payload)
	}
	return out + "]"
}

func archetypeString(arch *archetype) string {
	if len(arch.shape) == 0 {
		return "[]"
	}
	names := make([]string, 0, len(arch.shape))
	for _, id := range arch.shape {
		names = append(names, idString(id))
	}
	out := "["
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out + "]"
}

func idString(id Id) string {
	switch Classify(id) {
	case KindComponent:
		if name, ok := globalRegistry.nameOf(id); ok {
			return name
		}
		return fmt.Sprintf("#%d", id)
	case KindEntity:
		return fmt.Sprintf("entity#%d", id)
	case KindEntityRelation, KindComponentRelation, KindWildcardRelation:
		d := Decode(id)
		head := idString(d.Component)
		if d.Target == Wildcard {
			return head + "(*)"
		}
		return head + "(" + idString(d.Target) + ")"
	}
	return "<invalid>"
}
