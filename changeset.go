package ecs

// changeset is a per-entity staged edit: an add-set and a remove-set, kept
// disjoint by construction (spec §3 "Changeset", §4.5). It is created per
// entity per drain cycle, consumed by applyChangeset, then discarded.
//
// order records the first time each id was touched this changeset, so
// downstream hook dispatch and reference-index maintenance can replay
// edits in submission order (spec §4.7) instead of Go's randomized map
// iteration order.
type changeset struct {
	adds    map[Id]any
	removes map[Id]struct{}
	order   []Id
	touched map[Id]struct{}
}

func newChangeset() *changeset {
	return &changeset{
		adds:    make(map[Id]any),
		removes: make(map[Id]struct{}),
		touched: make(map[Id]struct{}),
	}
}

func (c *changeset) isEmpty() bool {
	return len(c.adds) == 0 && len(c.removes) == 0
}

func (c *changeset) track(id Id) {
	if _, ok := c.touched[id]; !ok {
		c.touched[id] = struct{}{}
		c.order = append(c.order, id)
	}
}

// set adds id→payload and cancels any pending remove of id.
func (c *changeset) set(id Id, payload any) {
	delete(c.removes, id)
	c.adds[id] = payload
	c.track(id)
}

// delete removes id and cancels any pending add of id.
func (c *changeset) delete(id Id) {
	delete(c.adds, id)
	c.removes[id] = struct{}{}
	c.track(id)
}

// hasAdd/hasRemove let the command processor ask what's already staged
// without reaching into the maps directly.
func (c *changeset) hasAdd(id Id) bool {
	_, ok := c.adds[id]
	return ok
}

func (c *changeset) hasRemove(id Id) bool {
	_, ok := c.removes[id]
	return ok
}

// pruneRemoves drops any pending remove for which keep returns false
// ("prune phantom removes", spec §4.7).
func (c *changeset) pruneRemoves(keep func(Id) bool) {
	for id := range c.removes {
		if !keep(id) {
			delete(c.removes, id)
		}
	}
}

// applyTo merges the changeset into an existing payload map: removes then
// adds, overwriting (spec §4.5 apply_to).
func (c *changeset) applyTo(existing map[Id]any) map[Id]any {
	result := make(map[Id]any, len(existing)+len(c.adds))
	for id, v := range existing {
		result[id] = v
	}
	for id := range c.removes {
		delete(result, id)
	}
	for id, v := range c.adds {
		result[id] = v
	}
	return result
}

// finalTypes returns the resulting id set after applying the changeset to
// existing.
func (c *changeset) finalTypes(existing map[Id]struct{}) map[Id]struct{} {
	out := make(map[Id]struct{}, len(existing)+len(c.adds))
	for id := range existing {
		out[id] = struct{}{}
	}
	for id := range c.removes {
		delete(out, id)
	}
	for id := range c.adds {
		out[id] = struct{}{}
	}
	return out
}
