package ecs_test

import (
	"testing"

	"github.com/plus3/voxelcore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type posVelView struct {
	Pos *Position
	Vel *Velocity
}

type posOptVelView struct {
	Pos *Position
	Vel *Velocity `ecs:"optional"`
}

func TestViewFillPopulatesEveryField(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	view := ecs.NewView[posVelView](world.Registry())

	e := world.Create()
	ecs.Add(world, e, Position{X: 1, Y: 2})
	ecs.Add(world, e, Velocity{X: 3})

	got := ecs.Get_View(world, view, e)
	require.NotNil(t, got)
	assert.Equal(t, 1.0, got.Pos.X)
	assert.Equal(t, 3.0, got.Vel.X)
}

func TestViewRejectsArchetypeMissingRequiredComponent(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	view := ecs.NewView[posVelView](world.Registry())

	e := world.Create()
	ecs.Add(world, e, Position{X: 1})

	assert.Nil(t, ecs.Get_View(world, view, e))
}

func TestViewOptionalFieldIsNilWhenComponentAbsent(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	view := ecs.NewView[posOptVelView](world.Registry())

	e := world.Create()
	ecs.Add(world, e, Position{X: 5})

	got := ecs.Get_View(world, view, e)
	require.NotNil(t, got)
	assert.Equal(t, 5.0, got.Pos.X)
	assert.Nil(t, got.Vel)
}

func TestViewMutationThroughFieldWritesBackToWorld(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	view := ecs.NewView[posVelView](world.Registry())

	e := world.Create()
	ecs.Add(world, e, Position{X: 1})
	ecs.Add(world, e, Velocity{X: 1})

	got := ecs.Get_View(world, view, e)
	require.NotNil(t, got)
	got.Pos.X = 42

	pos, _ := ecs.Get[Position](world, e)
	assert.Equal(t, 42.0, pos.X)
}

func TestViewPanicsOnNonStructType(t *testing.T) {
	registry := newTestRegistry()
	assert.Panics(t, func() {
		ecs.NewView[int](registry)
	})
}

func TestViewPanicsOnUnregisteredComponent(t *testing.T) {
	registry := newTestRegistry()
	type Unregistered struct{ N int }
	type badView struct {
		Field *Unregistered
	}
	assert.Panics(t, func() {
		ecs.NewView[badView](registry)
	})
}
