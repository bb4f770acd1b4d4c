package ecs

import "testing"

func TestArchetypeInsertAndGet(t *testing.T) {
	idx := newShapeIndex()
	a := newComponentId(1)
	b := newComponentId(2)
	arch := newArchetype(1, []Id{a, b}, idx)

	e1 := newEntityId(int64(Config.EntityIDStart))
	row := arch.insert(e1, map[Id]any{a: 10, b: "hello"})

	if v, ok := arch.get(row, a); !ok || v != 10 {
		t.Errorf("get(a) = %v, %v, want 10, true", v, ok)
	}
	if v, ok := arch.get(row, b); !ok || v != "hello" {
		t.Errorf("get(b) = %v, %v, want hello, true", v, ok)
	}
	if arch.len() != 1 {
		t.Errorf("len() = %d, want 1", arch.len())
	}
}

func TestArchetypeInsertDefaultsMissingToAbsent(t *testing.T) {
	idx := newShapeIndex()
	a := newComponentId(1)
	b := newComponentId(2)
	arch := newArchetype(1, []Id{a, b}, idx)

	e1 := newEntityId(int64(Config.EntityIDStart))
	row := arch.insert(e1, map[Id]any{a: 1})

	v, ok := arch.get(row, b)
	if !ok {
		t.Fatalf("get(b) ok = false, want true (present but absent)")
	}
	if v != Absent {
		t.Errorf("get(b) = %v, want Absent", v)
	}
}

func TestArchetypeRemoveRowSwapAndPop(t *testing.T) {
	idx := newShapeIndex()
	a := newComponentId(1)
	arch := newArchetype(1, []Id{a}, idx)

	e1 := newEntityId(int64(Config.EntityIDStart))
	e2 := newEntityId(int64(Config.EntityIDStart) + 1)
	e3 := newEntityId(int64(Config.EntityIDStart) + 2)

	arch.insert(e1, map[Id]any{a: 1})
	arch.insert(e2, map[Id]any{a: 2})
	row3 := arch.insert(e3, map[Id]any{a: 3})

	removed, moved := arch.removeRow(0)
	if removed[a] != 1 {
		t.Errorf("removeRow returned payload %v, want 1", removed[a])
	}
	if moved != e3 {
		t.Errorf("removeRow moved = %d, want %d", moved, e3)
	}
	if arch.len() != 2 {
		t.Fatalf("len() = %d, want 2", arch.len())
	}
	if arch.rowOf[e3] != 0 {
		t.Errorf("rowOf[e3] = %d, want 0", arch.rowOf[e3])
	}
	v, _ := arch.get(0, a)
	if v != 3 {
		t.Errorf("get(0, a) after swap = %v, want 3", v)
	}
	_, stillThere := arch.get(row3, a)
	_ = stillThere

	_, movedNone := arch.removeRow(arch.len() - 1)
	if movedNone != 0 {
		t.Errorf("removeRow of the last row moved = %d, want 0", movedNone)
	}
}

func TestShapeIndexStableBits(t *testing.T) {
	idx := newShapeIndex()
	a := newComponentId(1)
	b := newComponentId(2)

	m1 := idx.maskOf([]Id{a, b})
	m2 := idx.maskOf([]Id{b, a})

	if m1 != m2 {
		t.Errorf("maskOf order-dependent: %v != %v", m1, m2)
	}
}
