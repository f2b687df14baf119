package ecs_test

import (
	"testing"

	"github.com/plus3/voxelcore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type posOnlyView struct {
	Pos *Position
}

// Scenario 5: optional and negative terms.
func TestQueryWithOptionalAndNegativeTerms(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())

	e1 := world.Create()
	ecs.Add(world, e1, Position{X: 1})

	e2 := world.Create()
	ecs.Add(world, e2, Position{X: 2})
	ecs.Add(world, e2, Velocity{X: 2})

	e3 := world.Create()
	ecs.Add(world, e3, Position{X: 3})
	ecs.Add(world, e3, Health{Current: 1})

	e4 := world.Create()
	ecs.Add(world, e4, Velocity{X: 4})

	healthTyp := ecs.TypeId[Health](world.Registry())
	query := ecs.NewQuery[posOptVelView](world, healthTyp)
	query.Execute()

	matched := map[ecs.Entity]posOptVelView{}
	for e, v := range query.Iter() {
		matched[e] = v
	}

	assert.Len(t, matched, 2)
	assert.Contains(t, matched, e1)
	assert.Contains(t, matched, e2)
	assert.NotContains(t, matched, e3)
	assert.NotContains(t, matched, e4)
	assert.Nil(t, matched[e1].Vel)
	require.NotNil(t, matched[e2].Vel)
	assert.Equal(t, 2.0, matched[e2].Vel.X)
}

func TestQueryCacheInvalidatesOnNewArchetype(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	query := ecs.NewQuery[posOnlyView](world)

	e1 := world.Create()
	ecs.Add(world, e1, Position{X: 1})
	query.Execute()
	assert.Equal(t, 1, query.Len())

	e2 := world.Create()
	ecs.Add(world, e2, Position{X: 2})
	ecs.Add(world, e2, Velocity{X: 9}) // new archetype

	query.Execute()
	assert.Equal(t, 2, query.Len())
}

func TestQueryValuesReflectsLastExecuteSnapshot(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	query := ecs.NewQuery[posOnlyView](world)

	e := world.Create()
	ecs.Add(world, e, Position{X: 1})
	query.Execute()

	ecs.Add(world, e, Velocity{X: 1}) // migrates e to a new archetype

	total := 0.0
	for v := range query.Values() {
		total += v.Pos.X
	}
	assert.Equal(t, 1.0, total)
}

func TestRelatedQueryJoinsAcrossRelationTable(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())

	owner := world.Create()
	ecs.Add(world, owner, Name{Value: "alice"})

	item := world.Create()
	ecs.Add(world, item, Position{X: 1})

	other := world.Create()
	ecs.Add(world, other, Position{X: 2})

	require.NoError(t, ecs.SetRelation(world, owner, item, Owns{Quantity: 3}))

	related := ecs.NewRelatedQuery[Owns, struct{ Nm *Name }, posOnlyView](world)

	var count int
	for row := range related.All() {
		count++
		assert.Equal(t, owner, row.From)
		assert.Equal(t, item, row.To)
		assert.Equal(t, "alice", row.FromV.Nm.Value)
		assert.Equal(t, 1.0, row.ToV.Pos.X)
	}
	assert.Equal(t, 1, count)
	_ = other
}
