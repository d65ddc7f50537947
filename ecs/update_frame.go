package ecs

// UpdateFrame is the per-system execution context for one frame. The
// Commands buffer is shared by every system in the frame; the processed
// counter is private to the system execution it was handed to.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	World     *World

	processed int64
}

func newUpdateFrame(dt float64, commands *Commands, world *World) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  commands,
		World:     world,
	}
}

// CountProcessed adds to the entities-processed counter recorded in the
// system's execution statistics. Purely informational; it never affects
// scheduling.
func (f *UpdateFrame) CountProcessed(n int) {
	f.processed += int64(n)
}

// Processed returns the entities-processed counter for this execution.
func (f *UpdateFrame) Processed() int64 {
	return f.processed
}
