package ecs

// Config holds process-wide tunables that are not per-World: the id-space
// boundaries and the command-drain safety cap. Mutating Config after any
// World has been created is the caller's responsibility to avoid.
var Config config = config{
	CommandDrainCap: 100,
	ComponentIDMax:  1023,
	EntityIDStart:   1024,
}

type config struct {
	// CommandDrainCap bounds how many grouped drain iterations Sync will
	// run before treating further reentrant enqueues as a programmer
	// error (spec §4.6).
	CommandDrainCap int

	// ComponentIDMax is C_MAX: the highest value a component id may take.
	ComponentIDMax int

	// EntityIDStart is E_START: the first value the entity allocator
	// issues.
	EntityIDStart int
}

// SetCommandDrainCap overrides the drain iteration cap.
func (c *config) SetCommandDrainCap(n int) {
	c.CommandDrainCap = n
}
