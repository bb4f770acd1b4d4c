package ecs

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

type archetypeID uint32

// absentPayload is the sentinel stored in a column slot for "component
// present but payload deliberately absent" (spec §3: tag components, or an
// explicit undefined value written via Set).
type absentPayload struct{}

// Absent is the payload passed to Set to mark a component present with no
// meaningful value (spec §8 scenario S6).
var Absent = absentPayload{}

// shapeIndex assigns a dense, stable bit position to every id that has ever
// appeared in some archetype's shape, the way the teacher's table.Schema
// assigns row indices to registered element types (storage.go,
// RowIndexFor). Reused here to build mask.Mask shape signatures cheaply.
type shapeIndex struct {
	bitOf map[Id]uint32
	next  uint32
}

func newShapeIndex() *shapeIndex {
	return &shapeIndex{bitOf: make(map[Id]uint32)}
}

func (s *shapeIndex) bit(id Id) uint32 {
	if b, ok := s.bitOf[id]; ok {
		return b
	}
	b := s.next
	s.bitOf[id] = b
	s.next++
	return b
}

func (s *shapeIndex) maskOf(ids []Id) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(s.bit(id))
	}
	return m
}

// archetype is the columnar store for every entity sharing one exact
// shape: a sorted list of ids (plain components, concrete relations, and
// dontFragment wildcard markers — spec §3).
type archetype struct {
	id    archetypeID
	shape []Id
	sig   mask.Mask

	entities []Id
	rowOf    map[Id]int
	columns  map[Id][]any

	bundles map[string]*columnBundle

	// multiHooks is the set of multi-component hook entries currently
	// matching this shape, refreshed on creation and on (un)registration
	// (spec §4.10).
	multiHooks map[*multiHookEntry]struct{}
}

func newArchetype(id archetypeID, shape []Id, idx *shapeIndex) *archetype {
	sorted := append([]Id(nil), shape...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	columns := make(map[Id][]any, len(sorted))
	for _, c := range sorted {
		columns[c] = nil
	}
	return &archetype{
		id:         id,
		shape:      sorted,
		sig:        idx.maskOf(sorted),
		rowOf:      make(map[Id]int),
		columns:    columns,
		bundles:    make(map[string]*columnBundle),
		multiHooks: make(map[*multiHookEntry]struct{}),
	}
}

func (a *archetype) len() int { return len(a.entities) }

func (a *archetype) has(id Id) bool {
	_, ok := a.columns[id]
	return ok
}

// insert appends a new row for entity with the given payloads (one per
// shape id; ids missing from payloads get Absent).
func (a *archetype) insert(entity Id, payloads map[Id]any) int {
	row := len(a.entities)
	a.entities = append(a.entities, entity)
	a.rowOf[entity] = row
	for _, id := range a.shape {
		v, ok := payloads[id]
		if !ok {
			v = Absent
		}
		a.columns[id] = append(a.columns[id], v)
	}
	return row
}

// removeRow swap-and-pops row, returning the removed payloads keyed by
// shape id, and the entity id that was moved into row (0 if row was last).
func (a *archetype) removeRow(row int) (removed map[Id]any, moved Id) {
	last := len(a.entities) - 1
	removedEntity := a.entities[row]
	removed = make(map[Id]any, len(a.shape))
	for _, id := range a.shape {
		col := a.columns[id]
		removed[id] = col[row]
		col[row] = col[last]
		a.columns[id] = col[:last]
	}
	delete(a.rowOf, removedEntity)
	if row != last {
		movedEntity := a.entities[last]
		a.entities[row] = movedEntity
		a.rowOf[movedEntity] = row
		moved = movedEntity
	}
	a.entities = a.entities[:last]
	return removed, moved
}

func (a *archetype) get(row int, id Id) (any, bool) {
	col, ok := a.columns[id]
	if !ok || row >= len(col) {
		return nil, false
	}
	return col[row], true
}

func (a *archetype) set(row int, id Id, value any) {
	col, ok := a.columns[id]
	if !ok {
		return
	}
	col[row] = value
}

// snapshotRow returns a copy of every payload for row, keyed by shape id.
func (a *archetype) snapshotRow(row int) map[Id]any {
	out := make(map[Id]any, len(a.shape))
	for _, id := range a.shape {
		out[id] = a.columns[id][row]
	}
	return out
}

// columnBundle is the precomputed, selector-keyed plan for iterating an
// archetype: which ids are present, optional, or wildcard, resolved once
// and reused for every row (spec §4.4's per-shape column-pointer cache,
// §4.9's "build or reuse the column-pointer bundle").
type columnBundle struct {
	plan []selectorPlan
	byID map[Id]selectorPlan
}

type selectorKind uint8

const (
	selRequired selectorKind = iota
	selOptional
	selWildcard
)

type selectorPlan struct {
	id      Id
	kind    selectorKind
	present bool
}

func (a *archetype) bundleFor(key string, build func() []selectorPlan) *columnBundle {
	if b, ok := a.bundles[key]; ok {
		return b
	}
	plan := build()
	byID := make(map[Id]selectorPlan, len(plan))
	for _, p := range plan {
		byID[p.id] = p
	}
	b := &columnBundle{plan: plan, byID: byID}
	a.bundles[key] = b
	return b
}
