package ecs_test

import (
	"fmt"
	"sort"

	"github.com/brightlodge/ecsgrid"
)

type vec2 struct{ X, Y float64 }

// Example_queryIntersection shows a two-component query matching only the
// entity that holds both, while a single-component query matches everyone.
func Example_queryIntersection() {
	w := ecs.NewWorld()
	p := w.NewComponent(ecs.ComponentOptions{Name: "scenario_P"})
	v := w.NewComponent(ecs.ComponentOptions{Name: "scenario_V"})

	e1 := w.NewEntity()
	e2 := w.NewEntity()
	w.Set(e1, p, vec2{1, 2})
	w.Set(e2, p, vec2{1, 2})
	w.Set(e1, v, vec2{3, 4})
	w.Sync()

	both := w.CreateQuery([]ecs.QuerySelector{{Id: p}, {Id: v}})
	defer w.ReleaseQuery(both)
	justP := w.CreateQuery([]ecs.QuerySelector{{Id: p}})
	defer w.ReleaseQuery(justP)

	fmt.Printf("[P,V] matched %d entity\n", w.TotalMatched(both))
	w.Query(both, func(row *ecs.Row) {
		pos := row.Get(p).(vec2)
		vel := row.Get(v).(vec2)
		fmt.Printf("payloads: P{%v,%v} V{%v,%v}\n", pos.X, pos.Y, vel.X, vel.Y)
	})
	fmt.Printf("[P] matched %d entities\n", w.TotalMatched(justP))

	// Output:
	// [P,V] matched 1 entity
	// payloads: P{1,2} V{3,4}
	// [P] matched 2 entities
}

// Example_exclusiveCascadeChain shows a three-level exclusive, cascading
// parent-of-child chain collapsing entirely once its root is deleted.
func Example_exclusiveCascadeChain() {
	w := ecs.NewWorld()
	childOf := w.NewComponent(ecs.ComponentOptions{Name: "scenario_ChildOf", Exclusive: true, CascadeDelete: true})

	a := w.NewEntity()
	b := w.NewEntity()
	c := w.NewEntity()

	w.Set(c, ecs.Relation(childOf, b))
	w.Set(b, ecs.Relation(childOf, a))
	w.Sync()

	w.Delete(a)
	w.Sync()

	fmt.Printf("a exists: %v, b exists: %v, c exists: %v\n", w.Exists(a), w.Exists(b), w.Exists(c))

	// Output:
	// a exists: false, b exists: false, c exists: false
}

// Example_dontFragmentSingleArchetype shows many entities relating to two
// different targets of a dontFragment component sharing one archetype.
func Example_dontFragmentSingleArchetype() {
	w := ecs.NewWorld()
	follows := w.NewComponent(ecs.ComponentOptions{Name: "scenario_Follows", DontFragment: true})

	p1 := w.NewEntity()
	p2 := w.NewEntity()

	archetypes := make(map[int]struct{})
	for i := 0; i < 10; i++ {
		child := w.NewEntity()
		target := p1
		if i%2 == 1 {
			target = p2
		}
		w.Set(child, ecs.Relation(follows, target))
	}
	w.Sync()

	for _, id := range w.ArchetypesByComponent(ecs.WildcardOf(follows)) {
		archetypes[int(id)] = struct{}{}
	}
	fmt.Printf("distinct archetypes with the Follows wildcard marker: %d\n", len(archetypes))

	// Output:
	// distinct archetypes with the Follows wildcard marker: 1
}

// Example_absentPayload shows a component set with no payload, then later
// given one, per the present-but-undefined-value scenario.
func Example_absentPayload() {
	w := ecs.NewWorld()
	opt := w.NewComponent(ecs.ComponentOptions{Name: "scenario_Opt"})

	e := w.NewEntity()
	w.Set(e, opt)
	w.Sync()

	v, _ := w.Get(e, opt)
	fmt.Printf("has before value: %v, payload: %v\n", w.Has(e, opt), v == ecs.Absent)

	w.Set(e, opt, map[string]int{"v": 1})
	w.Sync()

	v2, _ := w.Get(e, opt)
	fmt.Printf("payload after set: %v\n", v2)

	// Output:
	// has before value: true, payload: true
	// payload after set: map[v:1]
}

func Example_archetypeIntrospection() {
	w := ecs.NewWorld()
	a := w.NewComponent(ecs.ComponentOptions{Name: "scenario_dump_a"})
	b := w.NewComponent(ecs.ComponentOptions{Name: "scenario_dump_b"})

	e1 := w.NewEntity()
	w.Set(e1, a, 1)
	w.Sync()

	e2 := w.NewEntity()
	w.Set(e2, a, 1)
	w.Set(e2, b, 2)
	w.Sync()

	ids := w.ArchetypesByComponent(a)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fmt.Printf("archetypes carrying scenario_dump_a: %d\n", len(ids))
	fmt.Println(w.DumpEntity(e2))

	// Output:
	// archetypes carrying scenario_dump_a: 2
	// entity#1025 [scenario_dump_a=1, scenario_dump_b=2]
}
