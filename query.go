package ecs

import (
	"fmt"
	"sort"
)

// Query is a cached, ref-counted selector list (spec §4.9). Create it with
// World.CreateQuery and release it with World.ReleaseQuery when done.
type Query struct {
	key       string
	regular   []Id
	wildcards []Id
	optional  map[Id]bool

	matched  []*archetype
	refCount int
}

// QuerySelector describes one member of a query: a concrete id, optionally
// marked Optional (absent entities still match, payload is nullable).
type QuerySelector struct {
	Id       Id
	Optional bool
}

func selectorKey(selectors []QuerySelector) string {
	sorted := append([]QuerySelector(nil), selectors...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Id < sorted[j].Id })
	key := ""
	for _, s := range sorted {
		key += fmt.Sprintf("%d:%v,", s.Id, s.Optional)
	}
	return key
}

// queryCache resolves a deterministic cache key (spec §4.9: "sorted ids +
// filter signature") to a single, ref-counted Query instance, grounded on
// the teacher's SimpleCache[T] (cache.go) register/lookup shape, generalized
// to reference counting and incremental archetype maintenance.
type queryCache struct {
	byKey map[string]*Query
}

func newQueryCache() *queryCache {
	return &queryCache{byKey: make(map[string]*Query)}
}

// CreateQuery resolves or creates a Query for selectors, matches it against
// every live archetype, and bumps its reference count.
func (w *World) CreateQuery(selectors []QuerySelector) *Query {
	key := selectorKey(selectors)
	if q, ok := w.queries.byKey[key]; ok {
		q.refCount++
		return q
	}

	q := &Query{key: key, optional: make(map[Id]bool)}
	for _, s := range selectors {
		if IsWildcard(s.Id) {
			q.wildcards = append(q.wildcards, s.Id)
		} else {
			q.regular = append(q.regular, s.Id)
		}
		q.optional[s.Id] = s.Optional
	}
	q.refCount = 1

	for _, arch := range w.Archetypes() {
		if q.matches(arch) {
			q.matched = append(q.matched, arch)
		}
	}

	w.queries.byKey[key] = q
	return q
}

// ReleaseQuery decrements q's reference count, disposing it at zero.
func (w *World) ReleaseQuery(q *Query) {
	q.refCount--
	if q.refCount <= 0 {
		delete(w.queries.byKey, q.key)
	}
}

// matches implements spec §4.9's shape-time matching rule: intersect
// archetypes carrying every regular id, then require each wildcard
// component's wildcard marker (dontFragment) or at least one concrete
// relation (fragmenting components) to be present.
func (q *Query) matches(arch *archetype) bool {
	for _, id := range q.regular {
		if q.optional[id] {
			continue
		}
		if !arch.has(id) {
			return false
		}
	}
	for _, wc := range q.wildcards {
		component := RelationComponent(wc)
		if !arch.hasAnyRelationOf(component) {
			if q.optional[wc] {
				continue
			}
			return false
		}
	}
	return true
}

func (a *archetype) hasAnyRelationOf(component Id) bool {
	for _, id := range a.shape {
		if !IsRelation(id) {
			continue
		}
		if RelationComponent(id) == component {
			return true
		}
	}
	return false
}

// onArchetypeCreated offers every live query a chance to test and record a
// newly created archetype (spec §4.9 "incremental maintenance").
func (c *queryCache) onArchetypeCreated(arch *archetype, w *World) {
	for _, q := range c.byKey {
		if q.matches(arch) {
			q.matched = append(q.matched, arch)
		}
	}
}

// onArchetypeRemoved drops arch from every query that held it.
func (c *queryCache) onArchetypeRemoved(arch *archetype) {
	for _, q := range c.byKey {
		for i, a := range q.matched {
			if a == arch {
				q.matched = append(q.matched[:i], q.matched[i+1:]...)
				break
			}
		}
	}
}

// Row is the per-entity view handed to a Query callback.
type Row struct {
	world  *World
	arch   *archetype
	row    int
	bundle *columnBundle
	Entity Id
}

// Get returns id's payload for the current row. For a wildcard selector it
// returns []RelationValue. The dispatch kind (required/optional/wildcard)
// comes from the query's per-archetype columnBundle rather than
// reclassifying id on every call.
func (r *Row) Get(id Id) any {
	v, _ := r.get(id)
	return v
}

// GetOptional is Get plus a presence flag, for optional selectors.
func (r *Row) GetOptional(id Id) (any, bool) {
	return r.get(id)
}

func (r *Row) get(id Id) (any, bool) {
	plan, ok := r.bundle.byID[id]
	if !ok {
		plan = selectorPlan{id: id, kind: classifyForBundle(id), present: true}
	}
	if !plan.present {
		return nil, false
	}
	switch plan.kind {
	case selWildcard:
		return r.world.getWildcard(r.Entity, r.arch, r.row, id), true
	default:
		if IsDontFragmentRelation(id) {
			v, ok := r.world.sideTable[r.Entity][id]
			return v, ok
		}
		return r.arch.get(r.row, id)
	}
}

func classifyForBundle(id Id) selectorKind {
	if IsWildcard(id) {
		return selWildcard
	}
	return selRequired
}

// buildPlanFor realizes q's selectors into a columnBundle plan for one
// specific archetype, grounded on spec §4.9's "build or reuse the
// column-pointer bundle": computed once per (query, archetype) pair and
// cached on the archetype rather than reclassified on every row. present
// records, per archetype, whether the selector actually has data here, so
// GetOptional's caller-visible bool can skip a redundant shape check.
func (q *Query) buildPlanFor(arch *archetype) []selectorPlan {
	plan := make([]selectorPlan, 0, len(q.regular)+len(q.wildcards))
	for _, id := range q.regular {
		kind := selRequired
		if q.optional[id] {
			kind = selOptional
		}
		plan = append(plan, selectorPlan{id: id, kind: kind, present: arch.has(id)})
	}
	for _, id := range q.wildcards {
		present := arch.hasAnyRelationOf(RelationComponent(id))
		plan = append(plan, selectorPlan{id: id, kind: selWildcard, present: present})
	}
	return plan
}

// Query iterates every entity matching q, calling fn once per row. Queries
// read archetype lists directly and are only invalidated by archetype
// creation/removal (spec §2); it is safe to call Query while no mutation
// is in flight, but never during a Sync drain.
func (w *World) Query(q *Query, fn func(*Row)) {
	row := &Row{world: w}
	for _, arch := range q.matched {
		row.arch = arch
		row.bundle = arch.bundleFor(q.key, func() []selectorPlan { return q.buildPlanFor(arch) })
		n := arch.len()
		for i := 0; i < n; i++ {
			row.row = i
			row.Entity = arch.entities[i]
			fn(row)
		}
	}
}

// TotalMatched returns how many entities currently match q.
func (w *World) TotalMatched(q *Query) int {
	total := 0
	for _, arch := range q.matched {
		total += arch.len()
	}
	return total
}
