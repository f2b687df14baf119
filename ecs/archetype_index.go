package ecs

import (
	"github.com/kamstrup/intmap"
)

// archetypeIndex interns component-type sets into ArchetypeIds and caches
// the single-component add/remove transitions between archetypes, per
// spec.md §4.3. The transition cache is the hot path (an entity gaining or
// losing one component), so it is backed by kamstrup/intmap — the same
// dependency the teacher (plus3-ooftn) already uses for its archetype
// entity-ref maps — keyed by a packed (archetype, component) integer, with
// one cache for adds and one for removes.
type archetypeIndex struct {
	registry *Registry
	byKey    map[string]ArchetypeId
	addCache *intmap.Map[uint64, ArchetypeId]
	remCache *intmap.Map[uint64, ArchetypeId]
}

func newArchetypeIndex(registry *Registry) *archetypeIndex {
	return &archetypeIndex{
		registry: registry,
		byKey:    make(map[string]ArchetypeId),
		addCache: intmap.New[uint64, ArchetypeId](256),
		remCache: intmap.New[uint64, ArchetypeId](256),
	}
}

func sortedTypeKey(types []DataTypeId) string {
	// Type ids are small and dense; a four-bytes-per-id key is cheap and exact,
	// avoiding the hash-collision risk of the teacher's FNV-over-pointer
	// scheme (storage.go's hashTypesToUint32) now that ids are compact
	// integers rather than reflect.Type pointers.
	buf := make([]byte, 0, len(types)*4)
	for _, t := range types {
		buf = append(buf, byte(t), byte(t>>8), byte(t>>16), byte(t>>24))
	}
	return string(buf)
}

// intern returns the archetype for the given (already sorted) component
// set, creating a fresh empty archetype the first time that set is seen.
func (x *archetypeIndex) intern(world *World, types []DataTypeId) *Archetype {
	key := sortedTypeKey(types)
	if id, ok := x.lookup(key); ok {
		return world.archetypes[id]
	}

	id := ArchetypeId(len(x.byKey) + 1)
	x.byKey[key] = id
	archetype := newArchetype(id, types, world.registry)
	world.archetypes[id] = archetype
	return archetype
}

func (x *archetypeIndex) lookup(key string) (ArchetypeId, bool) {
	id, ok := x.byKey[key]
	return id, ok
}

func packTransitionKey(archetype ArchetypeId, dataType DataTypeId) uint64 {
	return uint64(archetype)<<32 | uint64(dataType)
}

// transitionAdd returns the archetype reached from `from` by adding
// component `typ`, computing and caching it on first use.
func (x *archetypeIndex) transitionAdd(world *World, from *Archetype, typ DataTypeId) *Archetype {
	key := packTransitionKey(from.id, typ)
	if cached, ok := x.addCache.Get(key); ok {
		return world.archetypes[cached]
	}

	types := insertSorted(from.types, typ)
	dest := x.intern(world, types)
	x.addCache.Put(key, dest.id)
	return dest
}

// transitionRemove returns the archetype reached from `from` by removing
// component `typ`, computing and caching it on first use.
func (x *archetypeIndex) transitionRemove(world *World, from *Archetype, typ DataTypeId) *Archetype {
	key := packTransitionKey(from.id, typ)
	if cached, ok := x.remCache.Get(key); ok {
		return world.archetypes[cached]
	}

	types := removeSorted(from.types, typ)
	dest := x.intern(world, types)
	x.remCache.Put(key, dest.id)
	return dest
}

func insertSorted(types []DataTypeId, typ DataTypeId) []DataTypeId {
	out := make([]DataTypeId, 0, len(types)+1)
	inserted := false
	for _, t := range types {
		if !inserted && typ < t {
			out = append(out, typ)
			inserted = true
		}
		if t == typ {
			// Already present: no-op transition.
			return types
		}
		out = append(out, t)
	}
	if !inserted {
		out = append(out, typ)
	}
	return out
}

func removeSorted(types []DataTypeId, typ DataTypeId) []DataTypeId {
	out := make([]DataTypeId, 0, len(types))
	for _, t := range types {
		if t != typ {
			out = append(out, t)
		}
	}
	return out
}
