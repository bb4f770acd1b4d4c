package ecs

import "testing"

func TestChangesetSetThenDeleteIsDisjoint(t *testing.T) {
	cs := newChangeset()
	id := newComponentId(1)

	cs.set(id, 5)
	if !cs.hasAdd(id) {
		t.Fatalf("hasAdd(id) = false after set")
	}

	cs.delete(id)
	if cs.hasAdd(id) {
		t.Errorf("hasAdd(id) = true after delete, want false")
	}
	if !cs.hasRemove(id) {
		t.Errorf("hasRemove(id) = false after delete, want true")
	}
}

func TestChangesetDeleteThenSetIsDisjoint(t *testing.T) {
	cs := newChangeset()
	id := newComponentId(1)

	cs.delete(id)
	cs.set(id, "x")

	if cs.hasRemove(id) {
		t.Errorf("hasRemove(id) = true after re-set, want false")
	}
	if !cs.hasAdd(id) {
		t.Errorf("hasAdd(id) = false after re-set, want true")
	}
}

func TestChangesetPreservesSubmissionOrder(t *testing.T) {
	cs := newChangeset()
	a := newComponentId(1)
	b := newComponentId(2)
	c := newComponentId(3)

	cs.set(b, nil)
	cs.delete(a)
	cs.set(c, nil)
	cs.set(b, "updated") // re-touch, should not move position

	want := []Id{b, a, c}
	if len(cs.order) != len(want) {
		t.Fatalf("order = %v, want %v", cs.order, want)
	}
	for i, id := range want {
		if cs.order[i] != id {
			t.Errorf("order[%d] = %d, want %d", i, cs.order[i], id)
		}
	}
}

func TestChangesetApplyTo(t *testing.T) {
	cs := newChangeset()
	a := newComponentId(1)
	b := newComponentId(2)

	cs.delete(a)
	cs.set(b, 99)

	existing := map[Id]any{a: 1, newComponentId(3): "keep"}
	result := cs.applyTo(existing)

	if _, ok := result[a]; ok {
		t.Errorf("applyTo kept removed id %d", a)
	}
	if result[b] != 99 {
		t.Errorf("applyTo missing added id %d = %v, want 99", b, result[b])
	}
	if result[newComponentId(3)] != "keep" {
		t.Errorf("applyTo dropped untouched id")
	}
}

func TestChangesetPruneRemoves(t *testing.T) {
	cs := newChangeset()
	a := newComponentId(1)
	b := newComponentId(2)
	cs.delete(a)
	cs.delete(b)

	cs.pruneRemoves(func(id Id) bool { return id == a })

	if !cs.hasRemove(a) {
		t.Errorf("pruneRemoves dropped %d, which keep() said to keep", a)
	}
	if cs.hasRemove(b) {
		t.Errorf("pruneRemoves kept %d, which keep() said to drop", b)
	}
}
