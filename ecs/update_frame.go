package ecs

// UpdateFrame carries the per-invocation context every System.Execute
// receives: elapsed time, the World being simulated, and the Commands
// buffer structural changes must go through.
type UpdateFrame struct {
	DeltaTime float64
	World     *World
	Commands  *Commands
}

func newUpdateFrame(dt float64, world *World) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		World:     world,
		Commands:  NewCommands(),
	}
}
