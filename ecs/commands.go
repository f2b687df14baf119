package ecs

// Placeholder names an entity that a Commands buffer will create when
// flushed, before a concrete Entity value exists. It lets later commands in
// the same buffer reference that not-yet-created entity (e.g. attaching a
// relation between two entities spawned in the same frame).
type Placeholder int

// entityRef is either an already-live Entity or a Placeholder awaiting
// creation, resolved against a Commands buffer's pending creates at flush
// time.
type entityRef struct {
	concrete      Entity
	placeholder   Placeholder
	isPlaceholder bool
}

// Ref wraps a concrete, already-live Entity for use in a Commands call.
func Ref(e Entity) entityRef { return entityRef{concrete: e} }

func refPlaceholder(p Placeholder) entityRef { return entityRef{placeholder: p, isPlaceholder: true} }

// Commands buffers structural mutations — Create, Destroy, Add, Remove,
// SetRelation, UnsetRelation, Defer — so systems never mutate a World's
// archetypes or relation tables while other systems may be iterating it.
// Queued operations apply in call order at Flush, adapted from
// plus3-ooftn's Commands buffer. That buffer had to chase a moved-entity
// map because its EntityId changed on every archetype migration; this one
// doesn't, since Entity here is stable (world.go) — the only indirection
// Commands still needs is resolving a Placeholder once its Create has run.
type Commands struct {
	ops             []func(w *World)
	resolved        map[Placeholder]Entity
	nextPlaceholder Placeholder
}

// NewCommands returns an empty command buffer.
func NewCommands() *Commands {
	return &Commands{resolved: make(map[Placeholder]Entity)}
}

func (c *Commands) resolve(ref entityRef) Entity {
	if !ref.isPlaceholder {
		return ref.concrete
	}
	return c.resolved[ref.placeholder]
}

// Create queues an entity creation and returns a Placeholder naming it.
// The other Commands calls take an entityRef, not a Placeholder; use
// CreateRef to get a reference to the pending entity that they accept.
func (c *Commands) Create() Placeholder {
	p := c.nextPlaceholder
	c.nextPlaceholder++
	c.ops = append(c.ops, func(w *World) {
		c.resolved[p] = w.Create()
	})
	return p
}

// CreateRef is a convenience for queuing a create and getting back a
// reference usable in the same call chain, e.g.
// CommandSetRelation(cmds, cmds.CreateRef(), Ref(parent), ChildOf{}).
func (c *Commands) CreateRef() entityRef {
	return refPlaceholder(c.Create())
}

// Destroy queues destruction of the entity ref identifies.
func (c *Commands) Destroy(ref entityRef) {
	c.ops = append(c.ops, func(w *World) {
		w.Destroy(c.resolve(ref))
	})
}

// Defer queues an arbitrary function to run against the world at flush
// time, after every other command queued before it.
func (c *Commands) Defer(fn func(w *World)) {
	c.ops = append(c.ops, fn)
}

// Flush applies every queued operation, in order, against w, then resets
// the buffer for reuse.
func (c *Commands) Flush(w *World) {
	for _, op := range c.ops {
		op(w)
	}
	c.ops = c.ops[:0]
	c.resolved = make(map[Placeholder]Entity)
	c.nextPlaceholder = 0
}

// CommandAdd queues attaching component T to the entity ref identifies.
func CommandAdd[T any](c *Commands, ref entityRef, value T) {
	c.ops = append(c.ops, func(w *World) {
		Add(w, c.resolve(ref), value)
	})
}

// CommandRemove queues detaching component T from the entity ref
// identifies.
func CommandRemove[T any](c *Commands, ref entityRef) {
	c.ops = append(c.ops, func(w *World) {
		Remove[T](w, c.resolve(ref))
	})
}

// CommandSetRelation queues inserting a T relation edge between two
// entityRefs, either of which may be a Placeholder.
func CommandSetRelation[T any](c *Commands, from, to entityRef, value T) {
	c.ops = append(c.ops, func(w *World) {
		_ = SetRelation(w, c.resolve(from), c.resolve(to), value)
	})
}

// CommandUnsetRelation queues removing a T relation edge between two
// entityRefs.
func CommandUnsetRelation[T any](c *Commands, from, to entityRef) {
	c.ops = append(c.ops, func(w *World) {
		UnsetRelation[T](w, c.resolve(from), c.resolve(to))
	})
}
