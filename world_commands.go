package ecs

import (
	"github.com/TheBitDrifter/bark"
	"go.uber.org/zap"
)

// Sync drains every staged command, grouped by entity, until the buffer is
// empty (spec §4.6, §4.7). Hook callbacks triggered during the drain may
// enqueue further commands; they must not call Sync themselves.
func (w *World) Sync() {
	if w.syncing {
		panic(bark.AddTrace(ReentrantSync{}))
	}
	w.syncing = true
	defer func() { w.syncing = false }()

	w.cmds.drain(func(entity Id, cmds []command) {
		w.processEntityCommands(entity, cmds)
	})
}

// processEntityCommands implements spec §4.7: a destroy short-circuits to
// cascade delete; otherwise every command becomes one changeset, applied
// atomically.
func (w *World) processEntityCommands(entity Id, cmds []command) {
	if !w.Exists(entity) {
		return
	}

	for _, cmd := range cmds {
		if cmd.kind == cmdDelete {
			w.cascadeDelete(entity)
			return
		}
	}

	loc := w.entityLoc[entity]
	arch := w.archetypesByID[loc.archetype]

	cs := newChangeset()
	for _, cmd := range cmds {
		switch cmd.kind {
		case cmdSet:
			w.stageSet(cs, entity, arch, loc.row, cmd.id, cmd.payload)
		case cmdRemove:
			w.stageRemove(cs, entity, arch, loc.row, cmd.id)
		}
	}

	w.applyChangeset(entity, cs)
}

// stageSet implements spec §4.7's Set rule: exclusive-relation eviction,
// dontFragment wildcard-marker creation, then the add itself.
func (w *World) stageSet(cs *changeset, entity Id, arch *archetype, row int, id Id, payload any) {
	if IsExclusiveRelation(id) {
		component := RelationComponent(id)
		for _, existing := range w.concreteRelationsOf(entity, component, arch) {
			if existing != id {
				cs.delete(existing)
			}
		}
	}

	if IsDontFragmentRelation(id) {
		marker := WildcardOf(id)
		if !arch.has(marker) && !cs.hasAdd(marker) {
			cs.set(marker, Absent)
		}
	}

	cs.set(id, payload)
}

// stageRemove implements spec §4.7's Delete rule: wildcard fan-out to every
// concrete match, and wildcard-marker cleanup once no concrete relation of
// a dontFragment component survives.
func (w *World) stageRemove(cs *changeset, entity Id, arch *archetype, row int, id Id) {
	if IsWildcard(id) {
		component := RelationComponent(id)
		for _, match := range w.concreteRelationsOf(entity, component, arch) {
			cs.delete(match)
		}
		if globalRegistry.isDontFragment(component) {
			cs.delete(id)
		}
		return
	}

	cs.delete(id)

	if IsDontFragmentRelation(id) {
		component := RelationComponent(id)
		marker := WildcardOf(id)
		if !w.survivesDontFragment(entity, arch, component, cs, id) {
			cs.delete(marker)
		}
	}
}

// survivesDontFragment reports whether component still has a concrete
// relation on entity after applying cs's pending removes (excluding
// justRemoved, which cs already records).
func (w *World) survivesDontFragment(entity Id, arch *archetype, component Id, cs *changeset, justRemoved Id) bool {
	for _, rel := range w.concreteRelationsOf(entity, component, arch) {
		if rel == justRemoved {
			continue
		}
		if cs.hasRemove(rel) {
			continue
		}
		return true
	}
	return false
}

// shapeable reports whether id can ever be a column in an archetype's
// shape. Concrete dontFragment relations never are — only their wildcard
// marker is (spec §4.4).
func shapeable(id Id) bool {
	return !IsDontFragmentRelation(id)
}

// applyChangeset implements spec §4.7's Apply changeset rule: prune
// phantom removes, decide whether a structural move is needed, then either
// transfer the entity's row to a new archetype or update columns/side-table
// in place — followed by reference-index maintenance and hook dispatch in
// submission order.
func (w *World) applyChangeset(entity Id, cs *changeset) {
	loc := w.entityLoc[entity]
	arch := w.archetypesByID[loc.archetype]
	row := loc.row

	cs.pruneRemoves(func(id Id) bool { return w.hasId(entity, id, arch, row) })
	if cs.isEmpty() {
		return
	}

	hooksActive := w.hooks.hasAny()
	var preSnapshot map[Id]any
	if hooksActive {
		preSnapshot = arch.snapshotRow(row)
		for id, payload := range w.sideTable[entity] {
			preSnapshot[id] = payload
		}
	}

	moveNeeded := false
	for id := range cs.adds {
		if shapeable(id) && !arch.has(id) {
			moveNeeded = true
			break
		}
	}
	if !moveNeeded {
		for id := range cs.removes {
			if shapeable(id) && arch.has(id) {
				moveNeeded = true
				break
			}
		}
	}

	if moveNeeded {
		w.structuralMove(entity, arch, row, cs)
	} else {
		for id, payload := range cs.adds {
			if shapeable(id) {
				arch.set(row, id, payload)
			}
		}
	}

	for id, payload := range cs.adds {
		if IsDontFragmentRelation(id) {
			w.setSideTable(entity, id, payload)
		}
	}
	for id := range cs.removes {
		if IsDontFragmentRelation(id) {
			w.clearSideTable(entity, id)
		}
	}

	var postMultiHooks map[*multiHookEntry]struct{}
	if hooksActive {
		postArch := w.archetypesByID[w.entityLoc[entity].archetype]
		postMultiHooks = postArch.multiHooks
	}

	for _, id := range cs.order {
		if payload, added := cs.adds[id]; added {
			w.onAddReference(entity, id)
			if hooksActive {
				w.hooks.fireSet(w, entity, id, payload, postMultiHooks)
			}
			continue
		}
		if cs.hasRemove(id) {
			w.onRemoveReference(entity, id)
			if hooksActive {
				// arch is the entity's pre-move archetype: a required
				// member's removal is what drops the entry's match there,
				// so the multi-hook set must be resolved against it, not
				// the (already updated) post-move archetype.
				w.hooks.fireRemove(w, entity, id, preSnapshot[id], arch.multiHooks)
			}
		}
	}
}

// structuralMove transfers entity's row to the archetype matching the
// changeset's final shape, atomically: the row is removed from arch and
// inserted into the target before entityLoc is updated, so a panic never
// leaves an entity half-migrated.
func (w *World) structuralMove(entity Id, arch *archetype, row int, cs *changeset) {
	finalSet := make(map[Id]struct{}, len(arch.shape)+len(cs.adds))
	for _, id := range arch.shape {
		finalSet[id] = struct{}{}
	}
	for id := range cs.removes {
		if shapeable(id) {
			delete(finalSet, id)
		}
	}
	for id := range cs.adds {
		if shapeable(id) {
			finalSet[id] = struct{}{}
		}
	}

	finalShape := make([]Id, 0, len(finalSet))
	for id := range finalSet {
		finalShape = append(finalShape, id)
	}

	oldPayloads := arch.snapshotRow(row)
	merged := cs.applyTo(oldPayloads)
	transferred := make(map[Id]any, len(finalSet))
	for id := range finalSet {
		if v, ok := merged[id]; ok {
			transferred[id] = v
		}
	}

	_, moved := arch.removeRow(row)
	if moved != 0 {
		w.entityLoc[moved] = entityLocation{archetype: arch.id, row: row}
	}

	newArch := w.getOrCreateArchetype(finalShape)
	newRow := newArch.insert(entity, transferred)
	w.entityLoc[entity] = entityLocation{archetype: newArch.id, row: newRow}

	w.logger.Debug("structural move",
		zap.Int64("entity", int64(entity)),
		zap.Uint32("from", uint32(arch.id)),
		zap.Uint32("to", uint32(newArch.id)),
	)

	w.maybeGCArchetype(arch)
}
