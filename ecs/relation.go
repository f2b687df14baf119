package ecs

import "github.com/kamstrup/intmap"

const nullRow = ^uint32(0)

// relationTableKey identifies a sparse relation table by relation type.
// spec.md §3 describes keying by (relationType, fromArchetype,
// toArchetype); World keys only by relationType instead, for the reason
// recorded on World's doc comment (world.go) and in DESIGN.md.
type relationTableKey struct {
	dataType DataTypeId
}

type listHead struct {
	first, last uint32
}

type relationLink struct {
	prev, next uint32
}

type relationRow struct {
	from, to uint32
	fromLink relationLink
	toLink   relationLink
}

// relationTable stores every instance of one relation type, whatever the
// archetypes of its endpoints (see relationTableKey). It provides
// O(1) pair lookup via pairRows and O(k) "all rows with this from/to"
// enumeration via two intrusive doubly linked lists, translated from
// original_source/core/src/cubos/core/ecs/relation/table.cpp into Go.
type relationTable struct {
	key    relationTableKey
	values column
	rows   []relationRow

	pairRows  *intmap.Map[uint64, uint32]
	fromHeads *intmap.Map[uint32, listHead]
	toHeads   *intmap.Map[uint32, listHead]

	// depth is not read anywhere in this package: insert/erase do not
	// consult it, and tree-like depth is tracked in World.treeDepth.
	depth int
}

func newRelationTable(key relationTableKey, registry *Registry) *relationTable {
	return &relationTable{
		key:       key,
		values:    registry.newColumn(key.dataType),
		pairRows:  intmap.New[uint64, uint32](64),
		fromHeads: intmap.New[uint32, listHead](64),
		toHeads:   intmap.New[uint32, listHead](64),
	}
}

func pairId(from, to uint32) uint64 {
	return uint64(from) | uint64(to)<<32
}

func (t *relationTable) size() int { return len(t.rows) }

// contains reports whether a row exists for (from, to).
func (t *relationTable) contains(from, to uint32) bool {
	_, ok := t.pairRows.Get(pairId(from, to))
	return ok
}

// row returns the row index for (from, to), or size() if absent.
func (t *relationTable) row(from, to uint32) uint32 {
	if r, ok := t.pairRows.Get(pairId(from, to)); ok {
		return r
	}
	return uint32(t.size())
}

// at returns the relation payload stored at row.
func (t *relationTable) at(row uint32) any {
	return t.values.get(row)
}

// insert adds or overwrites the relation between from and to, returning
// whether a row already existed (spec.md §4.5 "insert").
func (t *relationTable) insert(from, to uint32, value any) bool {
	pair := pairId(from, to)
	if r, ok := t.pairRows.Get(pair); ok {
		t.values.set(r, value)
		return true
	}

	index := uint32(len(t.rows))
	t.rows = append(t.rows, relationRow{
		from:     from,
		to:       to,
		fromLink: relationLink{prev: nullRow, next: nullRow},
		toLink:   relationLink{prev: nullRow, next: nullRow},
	})
	t.values.push(value)
	t.pairRows.Put(pair, index)
	t.appendLink(index)
	return false
}

// erase removes the relation between from and to, reporting whether it
// existed.
func (t *relationTable) erase(from, to uint32) bool {
	pair := pairId(from, to)
	index, ok := t.pairRows.Get(pair)
	if !ok {
		return false
	}

	t.pairRows.Del(pair)
	t.eraseLink(index)

	last := uint32(len(t.rows)) - 1
	if index != last {
		t.rows[index] = t.rows[last]
		t.pairRows.Put(pairId(t.rows[index].from, t.rows[index].to), index)
		t.updateLink(index)
		t.values.swapRemove(index)
	} else {
		t.values.swapRemove(index)
	}
	t.rows = t.rows[:last]
	return true
}

// eraseFrom removes every relation whose from index matches, returning how
// many rows were removed.
func (t *relationTable) eraseFrom(from uint32) int {
	count := 0
	for {
		head, ok := t.fromHeads.Get(from)
		if !ok {
			break
		}
		row := t.rows[head.first]
		t.erase(row.from, row.to)
		count++
	}
	return count
}

// eraseTo removes every relation whose to index matches, returning how many
// rows were removed.
func (t *relationTable) eraseTo(to uint32) int {
	count := 0
	for {
		head, ok := t.toHeads.Get(to)
		if !ok {
			break
		}
		row := t.rows[head.first]
		t.erase(row.from, row.to)
		count++
	}
	return count
}

// viewFrom returns every (to, value) pair currently stored for from,
// walking the from-linked list rather than the whole table.
func (t *relationTable) viewFrom(from uint32) func(yield func(to uint32, value any) bool) {
	return func(yield func(uint32, any) bool) {
		head, ok := t.fromHeads.Get(from)
		if !ok {
			return
		}
		for row := head.first; row != nullRow; {
			r := t.rows[row]
			next := r.fromLink.next
			if !yield(r.to, t.values.get(row)) {
				return
			}
			row = next
		}
	}
}

// viewTo returns every (from, value) pair currently stored for to, walking
// the to-linked list rather than the whole table.
func (t *relationTable) viewTo(to uint32) func(yield func(from uint32, value any) bool) {
	return func(yield func(uint32, any) bool) {
		head, ok := t.toHeads.Get(to)
		if !ok {
			return
		}
		for row := head.first; row != nullRow; {
			r := t.rows[row]
			next := r.toLink.next
			if !yield(r.from, t.values.get(row)) {
				return
			}
			row = next
		}
	}
}

// relPair names the endpoints of a relation row for bulk iteration.
type relPair struct {
	From, To uint32
}

// all iterates every row in the table as (endpoints, value).
func (t *relationTable) all(yield func(relPair, any) bool) {
	for row := range t.rows {
		r := t.rows[row]
		if !yield(relPair{From: r.from, To: r.to}, t.values.get(uint32(row))) {
			return
		}
	}
}

func (t *relationTable) appendLink(index uint32) {
	row := &t.rows[index]

	if head, ok := t.fromHeads.Get(row.from); ok {
		row.fromLink.prev = head.last
		t.rows[head.last].fromLink.next = index
		head.last = index
		t.fromHeads.Put(row.from, head)
	} else {
		t.fromHeads.Put(row.from, listHead{first: index, last: index})
	}

	if head, ok := t.toHeads.Get(row.to); ok {
		row.toLink.prev = head.last
		t.rows[head.last].toLink.next = index
		head.last = index
		t.toHeads.Put(row.to, head)
	} else {
		t.toHeads.Put(row.to, listHead{first: index, last: index})
	}
}

func (t *relationTable) eraseLink(index uint32) {
	row := t.rows[index]

	fromHead, _ := t.fromHeads.Get(row.from)
	if row.fromLink.prev == nullRow {
		fromHead.first = row.fromLink.next
	} else {
		t.rows[row.fromLink.prev].fromLink.next = row.fromLink.next
	}
	if row.fromLink.next == nullRow {
		fromHead.last = row.fromLink.prev
	} else {
		t.rows[row.fromLink.next].fromLink.prev = row.fromLink.prev
	}
	if fromHead.first == nullRow {
		t.fromHeads.Del(row.from)
	} else {
		t.fromHeads.Put(row.from, fromHead)
	}

	toHead, _ := t.toHeads.Get(row.to)
	if row.toLink.prev == nullRow {
		toHead.first = row.toLink.next
	} else {
		t.rows[row.toLink.prev].toLink.next = row.toLink.next
	}
	if row.toLink.next == nullRow {
		toHead.last = row.toLink.prev
	} else {
		t.rows[row.toLink.next].toLink.prev = row.toLink.prev
	}
	if toHead.first == nullRow {
		t.toHeads.Del(row.to)
	} else {
		t.toHeads.Put(row.to, toHead)
	}
}

func (t *relationTable) updateLink(index uint32) {
	row := t.rows[index]

	if row.fromLink.prev == nullRow {
		head, _ := t.fromHeads.Get(row.from)
		head.first = index
		t.fromHeads.Put(row.from, head)
	} else {
		t.rows[row.fromLink.prev].fromLink.next = index
	}
	if row.fromLink.next == nullRow {
		head, _ := t.fromHeads.Get(row.from)
		head.last = index
		t.fromHeads.Put(row.from, head)
	} else {
		t.rows[row.fromLink.next].fromLink.prev = index
	}

	if row.toLink.prev == nullRow {
		head, _ := t.toHeads.Get(row.to)
		head.first = index
		t.toHeads.Put(row.to, head)
	} else {
		t.rows[row.toLink.prev].toLink.next = index
	}
	if row.toLink.next == nullRow {
		head, _ := t.toHeads.Get(row.to)
		head.last = index
		t.toHeads.Put(row.to, head)
	} else {
		t.rows[row.toLink.next].toLink.prev = index
	}
}
