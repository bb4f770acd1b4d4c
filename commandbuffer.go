package ecs

import "github.com/TheBitDrifter/bark"

type commandKind uint8

const (
	cmdSet commandKind = iota
	cmdRemove
	cmdDelete
)

type command struct {
	kind    commandKind
	entity  Id
	id      Id
	payload any
}

// commandBuffer is the deferred, grouped-drain staging area described in
// spec §4.6, grounded on the teacher's entityOperationsQueue
// (operation_queue.go) for the queue-and-process shape, generalized with a
// reusable scratch buffer and grouping map so a drain never allocates a
// fresh map per iteration.
type commandBuffer struct {
	pending []command
	scratch []command
	groups  map[Id][]command
}

func newCommandBuffer() *commandBuffer {
	return &commandBuffer{groups: make(map[Id][]command)}
}

func (b *commandBuffer) pushSet(entity, id Id, payload any) {
	b.pending = append(b.pending, command{kind: cmdSet, entity: entity, id: id, payload: payload})
}

func (b *commandBuffer) pushRemove(entity, id Id) {
	b.pending = append(b.pending, command{kind: cmdRemove, entity: entity, id: id})
}

func (b *commandBuffer) pushDelete(entity Id) {
	b.pending = append(b.pending, command{kind: cmdDelete, entity: entity})
}

func (b *commandBuffer) isEmpty() bool { return len(b.pending) == 0 }

// drain runs handle once per entity, grouped by submission order, until the
// pending list is empty, capped against non-terminating hook reentrancy
// (spec §4.6, §4.7 "within a single drain pass... observed in submission
// order").
func (b *commandBuffer) drain(handle func(entity Id, cmds []command)) {
	iterations := 0
	for len(b.pending) > 0 {
		iterations++
		if iterations > Config.CommandDrainCap {
			panic(bark.AddTrace(CommandDrainTooDeep{Cap: Config.CommandDrainCap}))
		}

		b.scratch, b.pending = b.pending, b.scratch[:0]

		order := make([]Id, 0, len(b.scratch))
		for _, cmd := range b.scratch {
			if _, seen := b.groups[cmd.entity]; !seen {
				order = append(order, cmd.entity)
			}
			b.groups[cmd.entity] = append(b.groups[cmd.entity], cmd)
		}

		for _, entity := range order {
			handle(entity, b.groups[entity])
		}
		for _, entity := range order {
			delete(b.groups, entity)
		}
	}
}
