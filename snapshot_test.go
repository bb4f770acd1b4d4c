package ecs

import "testing"

func TestSnapshotRoundTrip(t *testing.T) {
	w := NewWorld()
	position := w.NewComponent(ComponentOptions{Name: "snapshot_test_position"})
	likes := w.NewComponent(ComponentOptions{Name: "snapshot_test_likes", DontFragment: true})

	e1 := w.NewEntity()
	e2 := w.NewEntity()
	w.Set(e1, position, 7)
	w.Set(e1, Relation(likes, e2), "friend")
	w.Sync()

	snap := w.Serialize()

	restored := NewWorld()
	restored.Restore(snap)

	if !restored.Exists(e1) || !restored.Exists(e2) {
		t.Fatalf("Restore() lost entities: e1=%v e2=%v", restored.Exists(e1), restored.Exists(e2))
	}

	v, ok := restored.Get(e1, position)
	if !ok || v != 7 {
		t.Errorf("Get(position) after restore = %v, %v, want 7, true", v, ok)
	}

	got, _ := restored.Get(e1, WildcardOf(likes))
	rels, ok := got.([]RelationValue)
	if !ok || len(rels) != 1 || rels[0].Target != e2 || rels[0].Payload != "friend" {
		t.Errorf("Get(wildcard likes) after restore = %v, %v, want one relation to e2", rels, ok)
	}
}

func TestSnapshotAllocatorStateSurvivesRestore(t *testing.T) {
	w := NewWorld()
	keep := w.NewEntity()
	freed := w.NewEntity()
	w.Delete(freed)
	w.Sync()

	snap := w.Serialize()
	if len(snap.IDAllocator.Freelist) != 1 || snap.IDAllocator.Freelist[0] != freed {
		t.Fatalf("Serialize() freelist = %v, want [%d]", snap.IDAllocator.Freelist, freed)
	}

	restored := NewWorld()
	restored.Restore(snap)

	reused := restored.NewEntity()
	if reused != freed {
		t.Errorf("restored allocator's first alloc = %d, want the freed id %d back (LIFO)", reused, freed)
	}
	if !restored.Exists(keep) {
		t.Errorf("restored world lost the still-live entity %d", keep)
	}
}
