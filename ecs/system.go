package ecs

// System is one unit of per-frame behavior. Implementations typically embed
// one or more *Query[T] fields built in their constructor and read/mutate
// the World through frame.Commands during Execute.
type System interface {
	Execute(frame *UpdateFrame)
}

// queryExecutor is implemented by every Query[T]; RefreshSystemQueries uses
// it to refresh a system's query fields, via reflection over the system's
// struct fields, the way plus3-ooftn's scheduler did (Scheduler itself does
// not call RefreshSystemQueries) —
// but matched by interface rather than by a "Query[" type-name prefix,
// since that's the idiomatic way to duck-type this in Go.
type queryExecutor interface {
	Execute()
}
