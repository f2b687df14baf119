package ecs

// ElapsedTime is the built-in resource exposing the previous tick's elapsed
// time in seconds, per spec.md §6 ("elapsed-since-last-tick (seconds,
// f32)"). Scheduler.Run refreshes it every tick, alongside the
// UpdateFrame.DeltaTime convenience field, so a system can instead declare
// Reads[ElapsedTime] against it and have ValidateSignatures reason about
// that access like any other resource.
type ElapsedTime float32

// ShouldQuit is the built-in resource a host uses to ask the run loop to
// stop, and a system can set to request termination. Per spec.md §6 it
// starts true "until the host starts the loop" — InitHostResources sets it,
// and the host flips it false once it actually begins ticking the
// Scheduler.
type ShouldQuit bool

// Args is the built-in resource exposing the host process's argument list.
type Args []string

// InitHostResources installs the three built-in resources spec.md §6
// requires a host application to provide: elapsed time (zeroed until the
// first tick), should-quit (true until the host starts its loop), and the
// process argument list. Registers the three resource types on w's registry
// if they haven't already been, so callers don't need to do it separately.
func InitHostResources(w *World, args []string) {
	RegisterResource[ElapsedTime](w.registry)
	RegisterResource[ShouldQuit](w.registry)
	RegisterResource[Args](w.registry)

	SetResource(w, ElapsedTime(0))
	SetResource(w, ShouldQuit(true))
	SetResource(w, Args(args))
}
