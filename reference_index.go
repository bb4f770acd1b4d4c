package ecs

import "go.uber.org/zap"

// referrer is one (source entity, component id) pair recorded against a
// target in the reference index (spec §3 "Reference index").
type referrer struct {
	Entity    Id
	Component Id
}

// referenceIndex is the reverse index target → multimap(referrer entity →
// referring component id), used for cascade delete and reactive cleanup
// when a targeted entity vanishes (spec §4.8). It has no teacher analogue:
// warehouse models parent/child as a single forward pointer with no
// reverse index at all.
type referenceIndex struct {
	byTarget map[Id]multiMap[Id, referrer]
}

func newReferenceIndex() *referenceIndex {
	return &referenceIndex{byTarget: make(map[Id]multiMap[Id, referrer])}
}

func (r *referenceIndex) track(target Id, ref referrer) {
	m := r.byTarget[target]
	if m == nil {
		m = make(multiMap[Id, referrer])
		r.byTarget[target] = m
	}
	m.add(ref.Entity, ref)
}

func (r *referenceIndex) untrack(target Id, ref referrer) {
	m := r.byTarget[target]
	if m == nil {
		return
	}
	m.remove(ref.Entity, ref)
	if len(m) == 0 {
		delete(r.byTarget, target)
	}
}

// referrersOf returns a snapshot copy of every referrer currently pointing
// at target, safe to range over while the caller mutates the index.
func (r *referenceIndex) referrersOf(target Id) []referrer {
	m := r.byTarget[target]
	var out []referrer
	for _, refs := range m {
		out = append(out, refs...)
	}
	return out
}

func (r *referenceIndex) dropTarget(target Id) {
	delete(r.byTarget, target)
}

// onAddReference records the back-reference(s) created by adding id to entity: if id
// is an entity-relation, entity becomes a referrer of id's target; if id is
// itself an entity used directly as a component type on entity (the
// "entity-as-component-type" pattern, spec §4.8), entity becomes a referrer
// of id itself.
func (w *World) onAddReference(entity, id Id) {
	if IsEntityRelation(id) {
		_, target := decodeRelation(id)
		w.refIndex.track(target, referrer{Entity: entity, Component: id})
	}
	if Classify(id) == KindEntity {
		w.refIndex.track(id, referrer{Entity: entity, Component: id})
	}
}

func (w *World) onRemoveReference(entity, id Id) {
	if IsEntityRelation(id) {
		_, target := decodeRelation(id)
		w.refIndex.untrack(target, referrer{Entity: entity, Component: id})
	}
	if Classify(id) == KindEntity {
		w.refIndex.untrack(id, referrer{Entity: entity, Component: id})
	}
}

// cascadeDelete implements spec §4.8: BFS from victim, removing a
// cascade-delete referrer's whole entity, or just the referring component
// for any other referrer, then dropping the victim itself. The visited set
// guarantees termination on relation cycles.
func (w *World) cascadeDelete(start Id) {
	visited := map[Id]struct{}{start: {}}
	queue := []Id{start}

	for len(queue) > 0 {
		victim := queue[0]
		queue = queue[1:]
		w.logger.Debug("cascade delete visiting", zap.Int64("entity", int64(victim)))

		for _, ref := range w.refIndex.referrersOf(victim) {
			if IsCascadeDeleteRelation(ref.Component) {
				if _, seen := visited[ref.Entity]; !seen {
					visited[ref.Entity] = struct{}{}
					queue = append(queue, ref.Entity)
				}
				continue
			}
			w.removeComponentImmediate(ref.Entity, ref.Component)
		}

		w.destroyOne(victim)
	}
}

// removeComponentImmediate applies a single-component removal outside the
// command buffer: it still produces a normal changeset, updates the
// reference index, and fires hooks (spec §4.8).
func (w *World) removeComponentImmediate(entity, id Id) {
	loc, ok := w.entityLoc[entity]
	if !ok {
		return
	}
	arch := w.archetypesByID[loc.archetype]
	cs := newChangeset()
	w.stageRemove(cs, entity, arch, loc.row, id)
	w.applyChangeset(entity, cs)
}

// destroyOne removes victim from its archetype, fires on_remove for every
// component it held, drops its reference-index entries, and frees its id.
func (w *World) destroyOne(victim Id) {
	loc, ok := w.entityLoc[victim]
	if !ok {
		return
	}
	arch := w.archetypesByID[loc.archetype]
	row := loc.row

	snapshot := arch.snapshotRow(row)
	for id, payload := range w.sideTable[victim] {
		snapshot[id] = payload
	}

	_, moved := arch.removeRow(row)
	if moved != 0 {
		w.entityLoc[moved] = entityLocation{archetype: arch.id, row: row}
	}
	delete(w.sideTable, victim)

	hooksActive := w.hooks.hasAny()
	for id, payload := range snapshot {
		w.onRemoveReference(victim, id)
		if hooksActive {
			w.hooks.fireRemove(w, victim, id, payload, arch.multiHooks)
		}
	}

	delete(w.entityLoc, victim)
	w.refIndex.dropTarget(victim)
	w.entities.free(victim)
	w.maybeGCArchetype(arch)
}
