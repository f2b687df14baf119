package ecs

import (
	"iter"

	"github.com/TheBitDrifter/mask"
)

// Query wraps a View with the same per-frame archetype caching plus3-ooftn's
// Query[T] provides: the set of matching archetypes is only recomputed when
// the world's archetype count changes, and Execute() snapshots entities and
// component views once so systems can iterate a stable frame of data.
type Query[T any] struct {
	world       *World
	view        *View[T]
	excludeMask mask.Mask

	cachedArchetypes   []*Archetype
	lastArchetypeCount int

	cachedEntities   []Entity
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a Query over w for struct type T. Entities carrying any
// of the excluded component types are skipped even if they satisfy T,
// implementing spec.md's WithoutComponent term.
func NewQuery[T any](w *World, exclude ...DataTypeId) *Query[T] {
	q := &Query[T]{
		world:              w,
		view:               NewView[T](w.registry),
		lastArchetypeCount: -1,
	}
	for _, typ := range exclude {
		q.excludeMask.Mark(uint32(typ))
	}
	return q
}

func (q *Query[T]) matches(archetype *Archetype) bool {
	return q.view.matches(archetype) && archetype.sig.ContainsNone(q.excludeMask)
}

func (q *Query[T]) ensureArchetypeCache() {
	count := len(q.world.archetypes)
	if q.cachedArchetypes != nil && count == q.lastArchetypeCount {
		return
	}
	q.cachedArchetypes = q.cachedArchetypes[:0]
	for _, archetype := range q.world.archetypes {
		if q.matches(archetype) {
			q.cachedArchetypes = append(q.cachedArchetypes, archetype)
		}
	}
	q.lastArchetypeCount = count
}

// Execute (re)builds this query's snapshot of matching entities. Systems
// call it, directly or via RefreshSystemQueries, before reading Iter or
// Values; the Scheduler does not call it.
func (q *Query[T]) Execute() {
	q.ensureArchetypeCache()

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for _, archetype := range q.cachedArchetypes {
		for row := uint32(0); row < uint32(archetype.Len()); row++ {
			var value T
			if !q.view.fill(archetype, row, &value) {
				continue
			}
			q.cachedEntities = append(q.cachedEntities, archetype.Entity(row))
			q.cachedComponents = append(q.cachedComponents, value)
		}
	}
	q.cacheValid = true
}

// Iter yields (Entity, T) pairs from the last Execute snapshot.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	if !q.cacheValid {
		panic("ecs: Query.Iter called before Query.Execute")
	}
	return func(yield func(Entity, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values yields component views only from the last Execute snapshot.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("ecs: Query.Values called before Query.Execute")
	}
	return func(yield func(T) bool) {
		for _, v := range q.cachedComponents {
			if !yield(v) {
				return
			}
		}
	}
}

// Len returns how many entities matched the last Execute.
func (q *Query[T]) Len() int { return len(q.cachedEntities) }

// RelatedQuery finds every pair (from, to) joined by a TR relation, further
// filtered so `from` and `to` each satisfy their own View, implementing the
// "Related" query term from spec.md §4.9: a join across a relation table
// rather than a single archetype scan.
type RelatedQuery[TR any, From any, To any] struct {
	world    *World
	fromView *View[From]
	toView   *View[To]
}

// NewRelatedQuery builds a relation join query over w.
func NewRelatedQuery[TR any, From any, To any](w *World) *RelatedQuery[TR, From, To] {
	return &RelatedQuery[TR, From, To]{
		world:    w,
		fromView: NewView[From](w.registry),
		toView:   NewView[To](w.registry),
	}
}

// relatedRow is one matched (from, relation, to) triple.
type relatedRow[From any, To any] struct {
	From   Entity
	To     Entity
	FromV  From
	ToV    To
}

// All evaluates the join freshly (no caching: relation tables are sparse
// enough that a full scan is typically cheaper than archetype-style
// snapshotting) and yields every matching triple.
func (q *RelatedQuery[TR, From, To]) All() iter.Seq[relatedRow[From, To]] {
	typ := TypeId[TR](q.world.registry)
	table := q.world.relationTable(typ)
	return func(yield func(relatedRow[From, To]) bool) {
		for pair, _ := range table.all {
			fromEntity := q.world.entityFromIndex(pair.From)
			toEntity := q.world.entityFromIndex(pair.To)

			fromLoc := q.world.entities.location(fromEntity)
			toLoc := q.world.entities.location(toEntity)
			fromArch := q.world.archetypes[fromLoc.archetype]
			toArch := q.world.archetypes[toLoc.archetype]

			if !q.fromView.matches(fromArch) || !q.toView.matches(toArch) {
				continue
			}

			var row relatedRow[From, To]
			row.From, row.To = fromEntity, toEntity
			if !q.fromView.fill(fromArch, fromLoc.row, &row.FromV) {
				continue
			}
			if !q.toView.fill(toArch, toLoc.row, &row.ToV) {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}
