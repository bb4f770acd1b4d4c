/*
Package ecs provides an in-memory Entity-Component-System runtime.

ecsgrid offers archetype-based storage for game-object-like entities: every
entity's component set has a shape, entities sharing a shape are stored
together column-wise, and bulk iteration walks one shape at a time for
cache-friendly access.

Core concepts:

  - Id: a single packed integer that is either a component, an entity, or a
    relation (a directed, typed link from one entity to an entity or
    component target, including the wildcard target).
  - Archetype: the columnar store for every entity sharing one exact shape.
  - Command buffer: mutations are staged and applied in a grouped, capped
    drain rather than immediately, so hook callbacks can safely enqueue
    further edits.
  - Query: a selector list matched against archetype shapes, cached and
    incrementally maintained as archetypes come and go.

Basic usage:

	w := ecs.NewWorld()

	Position := w.NewComponent(ecs.ComponentOptions{Name: "Position"})
	Velocity := w.NewComponent(ecs.ComponentOptions{Name: "Velocity"})

	e := w.NewEntity()
	w.Set(e, Position, Vec2{1, 2})
	w.Set(e, Velocity, Vec2{3, 4})
	w.Sync()

	q := w.CreateQuery([]ecs.QuerySelector{{Id: Position}, {Id: Velocity}})
	defer w.ReleaseQuery(q)

	w.Query(q, func(row *ecs.Row) {
		pos := row.Get(Position).(Vec2)
		vel := row.Get(Velocity).(Vec2)
		_ = pos
		_ = vel
	})

ecsgrid is single-threaded and cooperative: nothing suspends, nothing runs
in the background, and a World is not safe for concurrent mutation.
*/
package ecs
