package ecs

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// Snapshot is the semantic in-memory value produced by Serialize and
// consumed by Restore (spec §4.11, §6). Component ids are carried as their
// registered name when one exists, falling back to the raw numeric id so a
// snapshot taken before any naming still round-trips.
type Snapshot struct {
	Version     int
	IDAllocator entityAllocatorState
	Entities    []EntitySnapshot
}

// EntitySnapshot is one live entity's full component list at Serialize
// time, in no particular component order (order is not semantically
// meaningful per spec §4.11).
type EntitySnapshot struct {
	Entity     Id
	Components []ComponentSnapshot
}

// ComponentSnapshot names a single held id — a plain component, a concrete
// relation (Target set, "*" encoded as Wildcard), or a dontFragment
// wildcard marker — plus its payload.
type ComponentSnapshot struct {
	Component  Id
	Name       string // resolved registry name, "" if never named
	Target     Id     // Wildcard (0) unless Component is a relation
	IsWildcard bool
	Payload    any
}

// Serialize captures every live entity's component set, named where the
// registry has a name, alongside the entity id allocator's state so
// Restore can resume allocation without colliding with restored ids (spec
// §4.11 "id allocator state").
func (w *World) Serialize() Snapshot {
	snap := Snapshot{
		Version:     1,
		IDAllocator: w.entities.state(),
	}

	entities := make([]Id, 0, len(w.entityLoc))
	for id := range w.entityLoc {
		entities = append(entities, id)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })

	for _, entity := range entities {
		loc := w.entityLoc[entity]
		arch := w.archetypesByID[loc.archetype]

		es := EntitySnapshot{Entity: entity}
		for _, id := range arch.shape {
			v, _ := arch.get(loc.row, id)
			es.Components = append(es.Components, w.componentSnapshotOf(id, v))
		}
		for id, payload := range w.sideTable[entity] {
			es.Components = append(es.Components, w.componentSnapshotOf(id, payload))
		}

		snap.Entities = append(snap.Entities, es)
	}

	return snap
}

func (w *World) componentSnapshotOf(id Id, payload any) ComponentSnapshot {
	cs := ComponentSnapshot{Component: id, Payload: payload}
	if Classify(id) == KindWildcardRelation {
		cs.IsWildcard = true
		component, _ := decodeRelation(id)
		cs.Component = component
		cs.Target = Wildcard
	} else if IsRelation(id) {
		component, target := decodeRelation(id)
		cs.Component = component
		cs.Target = target
	}
	if name, ok := globalRegistry.nameOf(cs.Component); ok {
		cs.Name = name
	}
	return cs
}

// Restore replaces w's entire entity population with snap's, resolving
// each ComponentSnapshot's Name back to a live id via the global registry
// when present, otherwise trusting the raw Component id. A name the
// registry does not know also falls back to the raw Component id; no error
// is raised.
func (w *World) Restore(snap Snapshot) {
	w.entities = newEntityAllocator()
	w.entities.restore(snap.IDAllocator)

	w.shapeIdx = newShapeIndex()
	w.archetypesByID = make(map[archetypeID]*archetype)
	w.archetypesByMask = make(map[mask.Mask]archetypeID)
	w.archetypesByComp = make(map[Id]map[archetypeID]struct{})
	w.nextArchetypeID = 0
	w.entityLoc = make(map[Id]entityLocation)
	w.sideTable = make(map[Id]map[Id]any)
	w.refIndex = newReferenceIndex()
	w.cmds = newCommandBuffer()
	w.queries = newQueryCache()

	for _, es := range snap.Entities {
		w.restoreEntity(es)
	}
}

func (w *World) restoreEntity(es EntitySnapshot) {
	shape := make([]Id, 0, len(es.Components))
	payloads := make(map[Id]any, len(es.Components))
	sideTableEntries := make(map[Id]any)

	for _, cs := range es.Components {
		component := w.resolveName(cs.Component, cs.Name)

		var id Id
		switch {
		case cs.IsWildcard:
			id = WildcardOf(component)
		case cs.Target != Wildcard:
			id = Relation(component, cs.Target)
		default:
			id = component
		}

		if IsDontFragmentRelation(id) {
			sideTableEntries[id] = cs.Payload
			marker := WildcardOf(RelationComponent(id))
			if _, already := payloads[marker]; !already {
				shape = append(shape, marker)
				payloads[marker] = Absent
			}
			continue
		}

		shape = append(shape, id)
		payloads[id] = cs.Payload
	}

	arch := w.getOrCreateArchetype(shape)
	row := arch.insert(es.Entity, payloads)
	w.entityLoc[es.Entity] = entityLocation{archetype: arch.id, row: row}
	if len(sideTableEntries) > 0 {
		w.sideTable[es.Entity] = sideTableEntries
	}

	for id := range payloads {
		w.onAddReference(es.Entity, id)
	}
	for id := range sideTableEntries {
		w.onAddReference(es.Entity, id)
	}
}

func (w *World) resolveName(fallback Id, name string) Id {
	if name == "" {
		return fallback
	}
	if id, ok := globalRegistry.byNameLookup(name); ok {
		return id
	}
	return fallback
}
