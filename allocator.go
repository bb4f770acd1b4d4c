package ecs

import "github.com/TheBitDrifter/bark"

// entityAllocator issues entity ids from a monotonic counter with a LIFO
// freelist for reuse, favoring recently-freed ids for locality (spec §4.2).
type entityAllocator struct {
	next     int64
	freelist []Id
}

func newEntityAllocator() *entityAllocator {
	return &entityAllocator{next: int64(Config.EntityIDStart)}
}

// alloc pops the freelist if non-empty, else increments the counter.
func (a *entityAllocator) alloc() Id {
	if n := len(a.freelist); n > 0 {
		id := a.freelist[n-1]
		a.freelist = a.freelist[:n-1]
		return id
	}
	if a.next < int64(Config.EntityIDStart) || a.next > 1<<53-1 {
		panic(bark.AddTrace(EntityIdOverflow{}))
	}
	id := newEntityId(a.next)
	a.next++
	return id
}

// free returns id to the freelist. It is a programmer error to free an id
// that was never issued, or a non-entity id.
func (a *entityAllocator) free(id Id) {
	if Classify(id) != KindEntity || int64(id) >= a.next {
		panic(bark.AddTrace(InvalidDeallocation{Id: id}))
	}
	a.freelist = append(a.freelist, id)
}

// entityAllocatorState is the serializable form of an entityAllocator,
// matching spec §6's { next_id, freelist } snapshot shape.
type entityAllocatorState struct {
	Next     int64
	Freelist []Id
}

func (a *entityAllocator) state() entityAllocatorState {
	freelist := make([]Id, len(a.freelist))
	copy(freelist, a.freelist)
	return entityAllocatorState{Next: a.next, Freelist: freelist}
}

func (a *entityAllocator) restore(s entityAllocatorState) {
	a.next = s.Next
	a.freelist = append([]Id(nil), s.Freelist...)
}

// componentAllocator issues monotonic component ids in [1, C_MAX]. Ids are
// never recycled; exhaustion is fatal.
type componentAllocator struct {
	next int64
}

func newComponentAllocator() *componentAllocator {
	return &componentAllocator{next: 1}
}

func (a *componentAllocator) alloc() Id {
	if a.next > int64(Config.ComponentIDMax) {
		panic(bark.AddTrace(ComponentIdOverflow{}))
	}
	id := newComponentId(a.next)
	a.next++
	return id
}
