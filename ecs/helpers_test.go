package ecs_test

import "github.com/plus3/voxelcore/ecs"

// Shared component/relation types used across this package's tests.
type Position struct {
	X, Y, Z float64
}

type Velocity struct {
	X, Y, Z float64
}

type Health struct {
	Current, Max int
}

type Name struct {
	Value string
}

// ChildOf is a tree-like relation: each child may have at most one parent.
type ChildOf struct{}

// Likes is a symmetric relation: (a,b) and (b,a) collapse to one row.
type Likes struct {
	Since int
}

// Owns is a plain (non-symmetric, non-tree) relation carrying a payload.
type Owns struct {
	Quantity int
}

type Score int

func newTestRegistry() *ecs.Registry {
	registry := ecs.NewRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterRelation[ChildOf](registry, ecs.RelationTraits{TreeLike: true})
	ecs.RegisterRelation[Likes](registry, ecs.RelationTraits{Symmetric: true})
	ecs.RegisterRelation[Owns](registry, ecs.RelationTraits{})
	return registry
}
