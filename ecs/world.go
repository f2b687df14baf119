package ecs

import (
	"iter"

	"github.com/TheBitDrifter/bark"
)

// World owns every entity, archetype, relation table and resource for one
// simulation, generalizing plus3-ooftn's Storage (which only tracked
// archetypes) to the full data model of spec.md §3-§4: entities with stable
// identity, dense component archetypes, sparse relation tables, and a
// resource registry.
//
// Relation tables here are partitioned only by relation type, not further by
// the (fromArchetype, toArchetype) pair spec.md §3 describes for locality.
// Partitioning by archetype pair would require re-homing every relation row
// touching an entity whenever that entity's own archetype changes (every Add
// or Remove), turning a component-only operation into one that also walks
// every relation table — a correctness hazard for a locality optimization.
// A single table per relation type keeps the same O(1) insert/erase and
// O(k) per-endpoint enumeration spec.md requires while avoiding that
// cascade; see DESIGN.md.
type World struct {
	registry   *Registry
	entities   *entityManager
	archetypes map[ArchetypeId]*Archetype
	index      *archetypeIndex
	empty      *Archetype

	relations map[DataTypeId]*relationTable

	// treeParent/treeDepth back the TreeLike trait: child entity index ->
	// parent entity index / depth, used to reject a second outgoing edge and
	// to detect cycles in O(depth) instead of walking the relation table.
	treeParent map[DataTypeId]map[uint32]uint32
	treeDepth  map[DataTypeId]map[uint32]uint32

	resources map[DataTypeId]any
}

// NewWorld creates an empty World over the given registry.
func NewWorld(registry *Registry) *World {
	w := &World{
		registry:   registry,
		entities:   newEntityManager(),
		archetypes: make(map[ArchetypeId]*Archetype),
		relations:  make(map[DataTypeId]*relationTable),
		treeParent: make(map[DataTypeId]map[uint32]uint32),
		treeDepth:  make(map[DataTypeId]map[uint32]uint32),
		resources:  make(map[DataTypeId]any),
	}
	w.index = newArchetypeIndex(registry)
	w.empty = w.index.intern(w, nil)
	return w
}

// Registry returns the type registry backing this World.
func (w *World) Registry() *Registry { return w.registry }

// Alive reports whether e currently identifies a live entity.
func (w *World) Alive(e Entity) bool { return w.entities.isLive(e) }

func (w *World) entityFromIndex(idx uint32) Entity {
	return Entity{Index: idx, Generation: w.entities.slots[idx].generation}
}

// Create spawns a new entity with no components, living in the empty
// archetype.
func (w *World) Create() Entity {
	e := w.entities.create()
	row := w.empty.push(e)
	w.entities.setLocation(e, w.empty.id, row)
	return e
}

// Destroy removes e and every component and relation edge touching it. A
// no-op if e is already dead.
func (w *World) Destroy(e Entity) {
	if !w.entities.isLive(e) {
		return
	}

	for typ := range w.relations {
		w.clearRelationsFor(typ, e.Index)
	}

	loc := w.entities.location(e)
	archetype := w.archetypes[loc.archetype]
	archetype.removeSwap(loc.row)
	if loc.row < uint32(archetype.Len()) {
		w.entities.setLocation(archetype.Entity(loc.row), archetype.id, loc.row)
	}

	w.entities.destroy(e)
}

func (w *World) clearRelationsFor(typ DataTypeId, idx uint32) {
	table := w.relations[typ]
	if parents := w.treeParent[typ]; parents != nil {
		for child := range table.viewTo(idx) {
			delete(parents, child)
			delete(w.treeDepth[typ], child)
		}
	}
	table.eraseFrom(idx)
	table.eraseTo(idx)
	delete(w.treeParent[typ], idx)
	delete(w.treeDepth[typ], idx)
}

func (w *World) moveEntity(e Entity, dest *Archetype) uint32 {
	loc := w.entities.location(e)
	src := w.archetypes[loc.archetype]
	newRow, _ := src.moveTo(loc.row, dest)
	w.entities.setLocation(e, dest.id, newRow)
	if loc.row < uint32(src.Len()) {
		w.entities.setLocation(src.Entity(loc.row), src.id, loc.row)
	}
	return newRow
}

// Add attaches component T to e, migrating it to the archetype that
// includes T if it doesn't already have one. If e already carries T, its
// value is overwritten in place with no migration. A no-op if e is dead.
func Add[T any](w *World, e Entity, value T) {
	if !w.entities.isLive(e) {
		return
	}
	typ := TypeId[T](w.registry)
	loc := w.entities.location(e)
	src := w.archetypes[loc.archetype]
	if src.Has(typ) {
		src.column(typ).set(loc.row, value)
		return
	}
	dest := w.index.transitionAdd(w, src, typ)
	row := w.moveEntity(e, dest)
	dest.column(typ).set(row, value)
}

// Remove detaches component T from e, migrating it to the archetype without
// T. A no-op if e doesn't have T or is dead.
func Remove[T any](w *World, e Entity) {
	if !w.entities.isLive(e) {
		return
	}
	typ := TypeId[T](w.registry)
	loc := w.entities.location(e)
	src := w.archetypes[loc.archetype]
	if !src.Has(typ) {
		return
	}
	dest := w.index.transitionRemove(w, src, typ)
	w.moveEntity(e, dest)
}

// Has reports whether e currently carries component T.
func Has[T any](w *World, e Entity) bool {
	if !w.entities.isLive(e) {
		return false
	}
	typ := TypeId[T](w.registry)
	loc := w.entities.location(e)
	return w.archetypes[loc.archetype].Has(typ)
}

// Get returns a pointer to e's T component for reading or mutation, and
// whether it was present.
func Get[T any](w *World, e Entity) (*T, bool) {
	if !w.entities.isLive(e) {
		return nil, false
	}
	typ := TypeId[T](w.registry)
	loc := w.entities.location(e)
	archetype := w.archetypes[loc.archetype]
	if !archetype.Has(typ) {
		return nil, false
	}
	ptr, ok := archetype.column(typ).get(loc.row).(*T)
	return ptr, ok
}

func (w *World) relationTable(typ DataTypeId) *relationTable {
	table, ok := w.relations[typ]
	if !ok {
		table = newRelationTable(relationTableKey{dataType: typ}, w.registry)
		w.relations[typ] = table
	}
	return table
}

func (w *World) treeDepthOf(typ DataTypeId, idx uint32) uint32 {
	return w.treeDepth[typ][idx]
}

func (w *World) checkTree(typ DataTypeId, child, parent uint32) error {
	if existing, ok := w.treeParent[typ][child]; ok && existing != parent {
		return &ErrTreeMultipleParents{
			Relation:  typ,
			Entity:    w.entityFromIndex(child),
			Current:   w.entityFromIndex(existing),
			Attempted: w.entityFromIndex(parent),
		}
	}
	for cur := parent; ; {
		if cur == child {
			return &ErrTreeCycle{Relation: typ, From: w.entityFromIndex(child), To: w.entityFromIndex(parent)}
		}
		next, ok := w.treeParent[typ][cur]
		if !ok {
			return nil
		}
		cur = next
	}
}

// SetRelation inserts or overwrites the T relation edge from -> to. For a
// Symmetric relation the pair is stored once under its canonical
// (min,max) ordering, per spec.md §4.5. For a TreeLike relation, from may
// not already have a different outgoing edge, and the edge may not close a
// cycle; either violation is reported without mutating the table. If either
// endpoint is dead, it's a no-op reported as ErrRelationEndpointDead.
func SetRelation[T any](w *World, from, to Entity, value T) error {
	typ := TypeId[T](w.registry)
	if !w.entities.isLive(from) || !w.entities.isLive(to) {
		return bark.AddTrace(&ErrRelationEndpointDead{Relation: typ, From: from, To: to})
	}
	traits := w.registry.Traits(typ)

	a, b := from.Index, to.Index
	if traits.Symmetric && a > b {
		a, b = b, a
	}
	if traits.TreeLike {
		if err := w.checkTree(typ, a, b); err != nil {
			return bark.AddTrace(err)
		}
	}

	w.relationTable(typ).insert(a, b, value)

	if traits.TreeLike {
		if w.treeParent[typ] == nil {
			w.treeParent[typ] = make(map[uint32]uint32)
			w.treeDepth[typ] = make(map[uint32]uint32)
		}
		w.treeParent[typ][a] = b
		w.treeDepth[typ][a] = w.treeDepthOf(typ, b) + 1
	}
	return nil
}

// UnsetRelation removes the T edge between from and to, reporting whether
// one existed.
func UnsetRelation[T any](w *World, from, to Entity) bool {
	if !w.entities.isLive(from) || !w.entities.isLive(to) {
		return false
	}
	typ := TypeId[T](w.registry)
	traits := w.registry.Traits(typ)

	a, b := from.Index, to.Index
	if traits.Symmetric && a > b {
		a, b = b, a
	}

	removed := w.relationTable(typ).erase(a, b)
	if removed && traits.TreeLike {
		delete(w.treeParent[typ], a)
		delete(w.treeDepth[typ], a)
	}
	return removed
}

// HasRelation reports whether a T edge exists between from and to.
func HasRelation[T any](w *World, from, to Entity) bool {
	if !w.entities.isLive(from) || !w.entities.isLive(to) {
		return false
	}
	typ := TypeId[T](w.registry)
	traits := w.registry.Traits(typ)
	a, b := from.Index, to.Index
	if traits.Symmetric && a > b {
		a, b = b, a
	}
	return w.relationTable(typ).contains(a, b)
}

// RelationValue returns the T payload stored between from and to.
func RelationValue[T any](w *World, from, to Entity) (*T, bool) {
	if !w.entities.isLive(from) || !w.entities.isLive(to) {
		return nil, false
	}
	typ := TypeId[T](w.registry)
	traits := w.registry.Traits(typ)
	a, b := from.Index, to.Index
	if traits.Symmetric && a > b {
		a, b = b, a
	}
	table := w.relationTable(typ)
	if !table.contains(a, b) {
		return nil, false
	}
	row := table.row(a, b)
	ptr, ok := table.at(row).(*T)
	return ptr, ok
}

// RelationsFrom iterates every (to, *T) edge whose from-endpoint is e.
func RelationsFrom[T any](w *World, e Entity) iter.Seq2[Entity, *T] {
	typ := TypeId[T](w.registry)
	table := w.relationTable(typ)
	return func(yield func(Entity, *T) bool) {
		for to, value := range table.viewFrom(e.Index) {
			ptr, ok := value.(*T)
			if !ok {
				continue
			}
			if !yield(w.entityFromIndex(to), ptr) {
				return
			}
		}
	}
}

// RelationsTo iterates every (from, *T) edge whose to-endpoint is e.
func RelationsTo[T any](w *World, e Entity) iter.Seq2[Entity, *T] {
	typ := TypeId[T](w.registry)
	table := w.relationTable(typ)
	return func(yield func(Entity, *T) bool) {
		for from, value := range table.viewTo(e.Index) {
			ptr, ok := value.(*T)
			if !ok {
				continue
			}
			if !yield(w.entityFromIndex(from), ptr) {
				return
			}
		}
	}
}

// SetResource installs value as the singleton instance of T, replacing any
// existing one.
func SetResource[T any](w *World, value T) {
	typ := TypeId[T](w.registry)
	w.resources[typ] = &value
}

// Resource returns the T singleton, if one has been set.
func Resource[T any](w *World) (*T, bool) {
	typ := TypeId[T](w.registry)
	v, ok := w.resources[typ]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// RemoveResource clears the T singleton.
func RemoveResource[T any](w *World) {
	typ := TypeId[T](w.registry)
	delete(w.resources, typ)
}
