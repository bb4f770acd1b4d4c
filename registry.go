package ecs

import "github.com/TheBitDrifter/bark"

// globalRegistry is process-wide, mirroring spec §4.3: registration is
// global, and after registration the registry is read-only and safe for
// concurrent reads.
var globalRegistry = newRegistry()

// ComponentOptions configures a component at registration time.
type ComponentOptions struct {
	Name          string
	Exclusive     bool
	CascadeDelete bool
	DontFragment  bool
}

type componentDescriptor struct {
	id   Id
	name string
}

type registry struct {
	allocator *componentAllocator

	descriptors map[Id]componentDescriptor
	byName      map[string]Id

	exclusive    idBitSet
	cascadeDel   idBitSet
	dontFragment idBitSet
}

func newRegistry() *registry {
	return &registry{
		allocator:   newComponentAllocator(),
		descriptors: make(map[Id]componentDescriptor),
		byName:      make(map[string]Id),
	}
}

// register reserves the next component id, records its flags, and binds an
// optional unique name. Name collisions return NameAlreadyRegistered.
func (r *registry) register(opts ComponentOptions) (Id, error) {
	if opts.Name != "" {
		if _, exists := r.byName[opts.Name]; exists {
			return 0, NameAlreadyRegistered{Name: opts.Name}
		}
	}

	id := r.allocator.alloc()
	r.descriptors[id] = componentDescriptor{id: id, name: opts.Name}
	if opts.Name != "" {
		r.byName[opts.Name] = id
	}
	if opts.Exclusive {
		r.exclusive.set(int(id))
	}
	if opts.CascadeDelete {
		r.cascadeDel.set(int(id))
	}
	if opts.DontFragment {
		r.dontFragment.set(int(id))
	}
	return id, nil
}

func (r *registry) optionsOf(id Id) ComponentOptions {
	d, ok := r.descriptors[id]
	if !ok {
		panic(bark.AddTrace(ComponentNotOnEntity{Component: id}))
	}
	return ComponentOptions{
		Name:          d.name,
		Exclusive:     r.isExclusive(id),
		CascadeDelete: r.isCascadeDelete(id),
		DontFragment:  r.isDontFragment(id),
	}
}

func (r *registry) nameOf(id Id) (string, bool) {
	d, ok := r.descriptors[id]
	if !ok || d.name == "" {
		return "", false
	}
	return d.name, true
}

func (r *registry) byNameLookup(name string) (Id, bool) {
	id, ok := r.byName[name]
	return id, ok
}

func (r *registry) isExclusive(component Id) bool     { return r.exclusive.has(int(component)) }
func (r *registry) isCascadeDelete(component Id) bool { return r.cascadeDel.has(int(component)) }
func (r *registry) isDontFragment(component Id) bool  { return r.dontFragment.has(int(component)) }
