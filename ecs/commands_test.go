package ecs_test

import (
	"testing"

	"github.com/plus3/voxelcore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsFlushAppliesInOrder(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	e := world.Create()

	cmds := ecs.NewCommands()
	ecs.CommandAdd(cmds, ecs.Ref(e), Position{X: 1})
	ecs.CommandAdd(cmds, ecs.Ref(e), Position{X: 2})
	cmds.Flush(world)

	pos, ok := ecs.Get[Position](world, e)
	require.True(t, ok)
	assert.Equal(t, 2.0, pos.X)
}

func TestCommandsCreateQueuesAgainstWorldAtFlush(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())

	cmds := ecs.NewCommands()
	placeholder := cmds.CreateRef()
	ecs.CommandAdd(cmds, placeholder, Position{X: 7})
	cmds.Flush(world)

	// A fresh world's first Create resolves to index 0.
	created := ecs.Entity{Index: 0}
	require.True(t, world.Alive(created))
	pos, ok := ecs.Get[Position](world, created)
	require.True(t, ok)
	assert.Equal(t, 7.0, pos.X)

	// A world-level Create issued after Flush gets the next index.
	e := world.Create()
	assert.Equal(t, uint32(1), e.Index)
}

func TestCommandsBufferIsReusableAfterFlush(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	e := world.Create()

	cmds := ecs.NewCommands()
	ecs.CommandAdd(cmds, ecs.Ref(e), Position{X: 1})
	cmds.Flush(world)

	cmds.Destroy(ecs.Ref(e))
	cmds.Flush(world)
	assert.False(t, world.Alive(e))
}

func TestCommandsPlaceholderResolvesAcrossCommandsInSameBuffer(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())

	var parentEntity, childEntity ecs.Entity
	cmds := ecs.NewCommands()
	parent := cmds.CreateRef()
	child := cmds.CreateRef()
	ecs.CommandSetRelation(cmds, child, parent, ChildOf{})
	cmds.Flush(world)

	// A fresh world hands out indices in creation order, so the first
	// Create queued (parent) becomes index 0 and the second (child) index 1.
	parentEntity = ecs.Entity{Index: 0}
	childEntity = ecs.Entity{Index: 1}

	require.True(t, world.Alive(parentEntity))
	require.True(t, world.Alive(childEntity))
	assert.True(t, ecs.HasRelation[ChildOf](world, childEntity, parentEntity))
}

func TestCommandsDeferRunsArbitraryFunctionAtFlush(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	e := world.Create()

	ran := false
	cmds := ecs.NewCommands()
	cmds.Defer(func(w *ecs.World) {
		ran = true
		ecs.Add(w, e, Position{X: 1})
	})
	cmds.Flush(world)

	assert.True(t, ran)
	assert.True(t, ecs.Has[Position](world, e))
}
