package ecs

import "fmt"

// InvalidId is a programmer error: some id construction or decode violated
// the packed-id invariants (range, relation-of-relation, overflow).
type InvalidId struct {
	Reason string
	Value  int64
}

func (e InvalidId) Error() string {
	return fmt.Sprintf("invalid id (%d): %s", e.Value, e.Reason)
}

// InvalidDeallocation is a programmer error: an entity id was freed that
// was never issued, or that isn't an entity id at all.
type InvalidDeallocation struct {
	Id Id
}

func (e InvalidDeallocation) Error() string {
	return fmt.Sprintf("cannot deallocate id %d: not a live entity id", e.Id)
}

// ComponentIdOverflow is a programmer error: the component allocator ran
// out of ids in [1, C_MAX].
type ComponentIdOverflow struct{}

func (e ComponentIdOverflow) Error() string {
	return fmt.Sprintf("component id space exhausted (max %d)", Config.ComponentIDMax)
}

// EntityIdOverflow is a programmer error: the entity allocator's monotonic
// counter overflowed the safe integer range.
type EntityIdOverflow struct{}

func (e EntityIdOverflow) Error() string {
	return "entity id space exhausted"
}

// EntityNotFound is the panic value when an operation (Set, Remove, Delete,
// MustGet) targets an entity id that does not currently exist.
type EntityNotFound struct {
	Entity Id
}

func (e EntityNotFound) Error() string {
	return fmt.Sprintf("entity %d does not exist", e.Entity)
}

// ComponentNotOnEntity is a programmer error: a required Get targeted a
// component the entity does not hold.
type ComponentNotOnEntity struct {
	Entity    Id
	Component Id
}

func (e ComponentNotOnEntity) Error() string {
	return fmt.Sprintf("entity %d does not have component %d", e.Entity, e.Component)
}

// CannotSetWildcardDirectly is a programmer error: Set was called with a
// wildcard relation id, which has no single payload to assign.
type CannotSetWildcardDirectly struct {
	Id Id
}

func (e CannotSetWildcardDirectly) Error() string {
	return fmt.Sprintf("cannot set wildcard relation %d directly", e.Id)
}

// NameAlreadyRegistered reports that a component registration requested a
// name already bound to another component. TryNewComponent returns it;
// NewComponent panics with it.
type NameAlreadyRegistered struct {
	Name string
}

func (e NameAlreadyRegistered) Error() string {
	return fmt.Sprintf("component name %q is already registered", e.Name)
}

// CommandDrainTooDeep is a programmer error: a hook chain kept re-enqueuing
// commands past the configured drain cap.
type CommandDrainTooDeep struct {
	Cap int
}

func (e CommandDrainTooDeep) Error() string {
	return fmt.Sprintf("command buffer drain exceeded %d iterations; a hook is re-enqueuing without bound", e.Cap)
}

// ReentrantSync is a programmer error: Sync was called again while a Sync
// drain (and its hook callbacks) was already in progress.
type ReentrantSync struct{}

func (e ReentrantSync) Error() string {
	return "Sync called while a Sync was already draining; enqueue commands from hooks instead"
}
