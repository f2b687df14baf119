package ecs

import "github.com/TheBitDrifter/mask"

// ArchetypeId names a canonical component-type set, per spec.md §3.
type ArchetypeId uint64

// Archetype is a dense table: one row per entity, one column per component
// type in the set. Rows are addressed by position; row r of every column
// and of the entities slice refers to the same entity (spec.md §4.4).
//
// sig is a bitmask over DataTypeId, one bit per component type the
// archetype carries — the same mask.Mask the warehouse example repo's
// storage/query layer uses to test archetype membership. Query and View
// matching use it to reject an archetype with a single mask comparison
// before falling back to the columns map for actual data access.
type Archetype struct {
	id       ArchetypeId
	types    []DataTypeId // sorted ascending
	columns  map[DataTypeId]column
	entities []Entity
	sig      mask.Mask
}

func newArchetype(id ArchetypeId, types []DataTypeId, registry *Registry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make(map[DataTypeId]column, len(types)),
	}
	for _, t := range types {
		a.columns[t] = registry.newColumn(t)
		a.sig.Mark(uint32(t))
	}
	return a
}

// ID returns the archetype's identifier.
func (a *Archetype) ID() ArchetypeId { return a.id }

// Types returns the sorted component type ids making up this archetype.
func (a *Archetype) Types() []DataTypeId { return a.types }

// Has reports whether this archetype includes component type id.
func (a *Archetype) Has(id DataTypeId) bool {
	_, ok := a.columns[id]
	return ok
}

// Signature returns the archetype's component-set bitmask.
func (a *Archetype) Signature() mask.Mask { return a.sig }

// Len returns the number of entities (rows) currently stored.
func (a *Archetype) Len() int { return len(a.entities) }

// Entity returns the entity occupying row.
func (a *Archetype) Entity(row uint32) Entity { return a.entities[row] }

// push appends a new row for e, leaving every column's new slot
// uninitialized — callers must immediately populate every column, per
// spec.md §4.4 ("push(entity) -> row ... caller is expected to construct
// each column value immediately").
func (a *Archetype) push(e Entity) uint32 {
	row := uint32(len(a.entities))
	a.entities = append(a.entities, e)
	return row
}

// removeSwap destructs row's values and swap-removes it: the last row
// takes its place, and the table shrinks. Returns the entity that was
// moved into row, or Nil if row was already the last row.
func (a *Archetype) removeSwap(row uint32) Entity {
	last := uint32(len(a.entities)) - 1
	var moved Entity
	if row != last {
		moved = a.entities[last]
		a.entities[row] = moved
	}
	a.entities = a.entities[:last]
	for _, col := range a.columns {
		col.swapRemove(row)
	}
	return moved
}

// moveTo migrates the entity at row into other, a destination archetype
// that may add or drop component types. For every column shared by both
// archetypes, the value is move-constructed across; columns present only in
// this archetype are dropped; columns present only in other are left for
// the caller to populate (spec.md §4.4 "moveTo"). The source row is
// swap-removed afterwards. Returns the new row in other and, if a row had
// to be swapped into the vacated source slot, the entity that now owns it.
func (a *Archetype) moveTo(row uint32, other *Archetype) (newRow uint32, swappedIn Entity) {
	e := a.entities[row]
	for _, t := range other.types {
		if srcCol, ok := a.columns[t]; ok {
			other.columns[t].moveFrom(srcCol, row)
		}
	}
	other.entities = append(other.entities, e)
	newRow = uint32(len(other.entities)) - 1
	swappedIn = a.removeSwap(row)
	return newRow, swappedIn
}

// column returns the column storing component type id, or nil if this
// archetype lacks it.
func (a *Archetype) column(id DataTypeId) column {
	return a.columns[id]
}
