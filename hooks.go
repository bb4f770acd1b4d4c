package ecs

import (
	"sort"

	"go.uber.org/zap"
)

// HookCallbacks bundles the three lifecycle callbacks a hook may supply
// (spec §4.10). Any of the three may be nil.
type HookCallbacks struct {
	OnInit   func(w *World, entity Id, id Id, payload any)
	OnSet    func(w *World, entity Id, id Id, payload any)
	OnRemove func(w *World, entity Id, id Id, payload any)
}

// singleHookEntry watches exactly one id.
type singleHookEntry struct {
	id        Id
	callbacks HookCallbacks
	seq       int
}

// multiHookEntry watches a combination of required and optional ids,
// firing once per triggering mutation with the whole group's current
// values available via World.Get.
type multiHookEntry struct {
	required  []Id
	optional  []Id
	callbacks HookCallbacks
	seq       int
}

// hookRegistry dispatches on_init/on_set/on_remove callbacks in
// registration order (spec §9 open-question decision), for both
// single-component and multi-component hooks.
type hookRegistry struct {
	single map[Id][]*singleHookEntry
	multi  []*multiHookEntry
	seq    int
	logger *zap.Logger
}

func newHookRegistry() *hookRegistry {
	return &hookRegistry{single: make(map[Id][]*singleHookEntry)}
}

func (h *hookRegistry) hasAny() bool {
	return len(h.single) > 0 || len(h.multi) > 0
}

// Unsubscribe cancels a hook registration. Calling it more than once is a
// no-op (spec §4.10 "idempotent unsubscribe").
type Unsubscribe func()

// Hook registers a single-component hook on id. Every entity currently
// holding id receives an immediate OnInit catch-up call. If id is a
// wildcard relation(C, *), the hook fans out to every concrete relation of
// C on both registration and subsequent dispatch (spec §4.10).
func (w *World) Hook(id Id, callbacks HookCallbacks) Unsubscribe {
	w.hooks.seq++
	entry := &singleHookEntry{id: id, callbacks: callbacks, seq: w.hooks.seq}
	w.hooks.single[id] = append(w.hooks.single[id], entry)
	w.logger.Debug("hook registered", zap.Int64("id", int64(id)))

	if callbacks.OnInit != nil {
		if IsWildcard(id) {
			component := RelationComponent(id)
			for _, arch := range w.Archetypes() {
				for _, e := range arch.entities {
					for _, rel := range w.concreteRelationsOf(e, component, arch) {
						v, _ := w.Get(e, rel)
						callbacks.OnInit(w, e, rel, v)
					}
				}
			}
		} else if IsDontFragmentRelation(id) {
			for entity, table := range w.sideTable {
				if v, ok := table[id]; ok {
					callbacks.OnInit(w, entity, id, v)
				}
			}
		} else {
			for _, arch := range w.Archetypes() {
				if !arch.has(id) {
					continue
				}
				for row, e := range arch.entities {
					v, _ := arch.get(row, id)
					callbacks.OnInit(w, e, id, v)
				}
			}
		}
	}

	cancelled := false
	return func() {
		if cancelled {
			return
		}
		cancelled = true
		w.logger.Debug("hook unregistered", zap.Int64("id", int64(id)))
		list := w.hooks.single[id]
		for i, e := range list {
			if e == entry {
				w.hooks.single[id] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// HookMulti registers a multi-component hook: required ids must all be
// present for the group to match an entity, optional ids are included when
// present. Matching archetypes cache the entry for fast dispatch.
func (w *World) HookMulti(required, optional []Id, callbacks HookCallbacks) Unsubscribe {
	w.hooks.seq++
	entry := &multiHookEntry{required: required, optional: optional, callbacks: callbacks, seq: w.hooks.seq}
	w.hooks.multi = append(w.hooks.multi, entry)
	w.logger.Debug("multi-hook registered", zap.Int("required", len(required)))

	for _, arch := range w.Archetypes() {
		if entryMatches(entry, arch) {
			arch.multiHooks[entry] = struct{}{}
			if callbacks.OnInit != nil {
				for row, e := range arch.entities {
					for _, id := range required {
						v, _ := arch.get(row, id)
						callbacks.OnInit(w, e, id, v)
					}
				}
			}
		}
	}

	cancelled := false
	return func() {
		if cancelled {
			return
		}
		cancelled = true
		w.logger.Debug("multi-hook unregistered", zap.Int("required", len(required)))
		for i, e := range w.hooks.multi {
			if e == entry {
				w.hooks.multi = append(w.hooks.multi[:i], w.hooks.multi[i+1:]...)
				break
			}
		}
		for _, arch := range w.Archetypes() {
			delete(arch.multiHooks, entry)
		}
	}
}

func entryMatches(entry *multiHookEntry, arch *archetype) bool {
	for _, id := range entry.required {
		if !arch.has(id) {
			return false
		}
	}
	return true
}

// refreshMultiHooks populates a freshly created archetype's multiHooks set
// (spec §4.10's "archetype-cached matching multi-hook set"), called from
// getOrCreateArchetype.
func (w *World) refreshMultiHooks(arch *archetype) {
	for _, entry := range w.hooks.multi {
		if entryMatches(entry, arch) {
			arch.multiHooks[entry] = struct{}{}
		}
	}
}

// Unhook removes every hook (single or multi) registered against id.
func (w *World) Unhook(id Id) {
	delete(w.hooks.single, id)
	kept := w.hooks.multi[:0]
	for _, entry := range w.hooks.multi {
		if !entryWatchesRemove(entry, id) {
			kept = append(kept, entry)
			continue
		}
		for _, arch := range w.Archetypes() {
			delete(arch.multiHooks, entry)
		}
	}
	w.hooks.multi = kept
}

// matchingSingleEntries returns every single-component hook entry that
// watches id exactly, plus (if id is a concrete relation) every entry
// watching its wildcard — the fan-out rule in spec §4.10.
func (h *hookRegistry) matchingSingleEntries(id Id) []*singleHookEntry {
	entries := h.single[id]
	if IsRelation(id) && !IsWildcard(id) {
		entries = append(append([]*singleHookEntry(nil), entries...), h.single[WildcardOf(id)]...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	}
	return entries
}

// entryWatchesSet reports whether id is one of entry's required or optional
// members, the trigger condition for on_set (spec §4.10).
func entryWatchesSet(entry *multiHookEntry, id Id) bool {
	for _, r := range entry.required {
		if r == id {
			return true
		}
	}
	for _, o := range entry.optional {
		if o == id {
			return true
		}
	}
	return false
}

// entryWatchesRemove reports whether id is one of entry's required members,
// the trigger condition for on_remove (spec §4.10: removing an optional
// member does not fire the group).
func entryWatchesRemove(entry *multiHookEntry, id Id) bool {
	for _, r := range entry.required {
		if r == id {
			return true
		}
	}
	return false
}

// fireSet dispatches OnSet to every matching single-component hook, plus
// every multiHooks entry (caller-supplied, resolved against the entity's
// archetype after the mutation has been applied) that actually watches id.
func (h *hookRegistry) fireSet(w *World, entity, id Id, payload any, multiHooks map[*multiHookEntry]struct{}) {
	for _, entry := range h.matchingSingleEntries(id) {
		if entry.callbacks.OnSet != nil {
			entry.callbacks.OnSet(w, entity, id, payload)
		}
	}
	for _, entry := range h.multi {
		if _, ok := multiHooks[entry]; !ok {
			continue
		}
		if entryWatchesSet(entry, id) && entry.callbacks.OnSet != nil {
			entry.callbacks.OnSet(w, entity, id, payload)
		}
	}
}

// fireRemove dispatches OnRemove the same way, using the pre-removal
// snapshot payload supplied by the caller. multiHooks must be resolved
// against the entity's archetype as it stood *before* the mutation, since a
// required member's removal is exactly what drops the entry's match there.
func (h *hookRegistry) fireRemove(w *World, entity, id Id, payload any, multiHooks map[*multiHookEntry]struct{}) {
	for _, entry := range h.matchingSingleEntries(id) {
		if entry.callbacks.OnRemove != nil {
			entry.callbacks.OnRemove(w, entity, id, payload)
		}
	}
	for _, entry := range h.multi {
		if _, ok := multiHooks[entry]; !ok {
			continue
		}
		if entryWatchesRemove(entry, id) && entry.callbacks.OnRemove != nil {
			entry.callbacks.OnRemove(w, entity, id, payload)
		}
	}
}
