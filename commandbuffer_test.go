package ecs

import (
	"fmt"
	"strings"
	"testing"
)

func TestCommandBufferGroupsByEntity(t *testing.T) {
	b := newCommandBuffer()
	e1 := newEntityId(int64(Config.EntityIDStart))
	e2 := newEntityId(int64(Config.EntityIDStart) + 1)
	comp := newComponentId(1)

	b.pushSet(e1, comp, 1)
	b.pushSet(e2, comp, 2)
	b.pushRemove(e1, comp)

	var order []Id
	groupLens := map[Id]int{}
	b.drain(func(entity Id, cmds []command) {
		order = append(order, entity)
		groupLens[entity] = len(cmds)
	})

	if len(order) != 2 || order[0] != e1 || order[1] != e2 {
		t.Errorf("drain order = %v, want [%d, %d]", order, e1, e2)
	}
	if groupLens[e1] != 2 {
		t.Errorf("group(e1) len = %d, want 2", groupLens[e1])
	}
	if groupLens[e2] != 1 {
		t.Errorf("group(e2) len = %d, want 1", groupLens[e2])
	}
	if !b.isEmpty() {
		t.Errorf("isEmpty() = false after drain")
	}
}

func TestCommandBufferDrainCapTrips(t *testing.T) {
	prevCap := Config.CommandDrainCap
	Config.SetCommandDrainCap(3)
	defer Config.SetCommandDrainCap(prevCap)

	b := newCommandBuffer()
	e := newEntityId(int64(Config.EntityIDStart))
	comp := newComponentId(1)
	b.pushSet(e, comp, 0)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("drain() did not panic past the iteration cap")
		}
		if !strings.Contains(fmt.Sprint(r), "drain exceeded") {
			t.Errorf("panic value = %v, want a CommandDrainTooDeep message", r)
		}
	}()

	b.drain(func(entity Id, cmds []command) {
		// Reentrant: always re-enqueues, never converges.
		b.pushSet(entity, comp, 0)
	})
}
