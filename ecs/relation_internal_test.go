package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelationTable() *relationTable {
	registry := NewRegistry()
	typ := RegisterRelation[int](registry, RelationTraits{})
	return newRelationTable(relationTableKey{dataType: typ}, registry)
}

func TestRelationTableInsertContainsAt(t *testing.T) {
	table := newTestRelationTable()

	overwritten := table.insert(1, 2, 100)
	assert.False(t, overwritten)
	assert.True(t, table.contains(1, 2))
	assert.Equal(t, 100, *table.at(table.row(1, 2)).(*int))

	overwritten = table.insert(1, 2, 200)
	assert.True(t, overwritten)
	assert.Equal(t, 200, *table.at(table.row(1, 2)).(*int))
	assert.Equal(t, 1, table.size())
}

func TestRelationTableEraseUnlinksAndSwapRemoves(t *testing.T) {
	table := newTestRelationTable()
	table.insert(1, 2, 1)
	table.insert(1, 3, 2)
	table.insert(2, 3, 3)

	require.True(t, table.erase(1, 2))
	assert.False(t, table.contains(1, 2))
	assert.True(t, table.contains(1, 3))
	assert.True(t, table.contains(2, 3))
	assert.Equal(t, 2, table.size())

	assert.False(t, table.erase(1, 2))
}

func TestRelationTableViewFromWalksOnlyMatchingRows(t *testing.T) {
	table := newTestRelationTable()
	table.insert(1, 10, 1)
	table.insert(1, 11, 2)
	table.insert(2, 12, 3)

	seen := map[uint32]int{}
	for to, value := range table.viewFrom(1) {
		seen[to] = *value.(*int)
	}
	assert.Equal(t, map[uint32]int{10: 1, 11: 2}, seen)

	seen = map[uint32]int{}
	for to, value := range table.viewFrom(2) {
		seen[to] = *value.(*int)
	}
	assert.Equal(t, map[uint32]int{12: 3}, seen)
}

func TestRelationTableViewToWalksOnlyMatchingRows(t *testing.T) {
	table := newTestRelationTable()
	table.insert(1, 100, 1)
	table.insert(2, 100, 2)
	table.insert(3, 200, 3)

	seen := map[uint32]int{}
	for from, value := range table.viewTo(100) {
		seen[from] = *value.(*int)
	}
	assert.Equal(t, map[uint32]int{1: 1, 2: 2}, seen)
}

func TestRelationTableEraseFromRemovesEveryMatchingRow(t *testing.T) {
	table := newTestRelationTable()
	table.insert(1, 10, 1)
	table.insert(1, 11, 2)
	table.insert(2, 12, 3)

	count := table.eraseFrom(1)
	assert.Equal(t, 2, count)
	assert.False(t, table.contains(1, 10))
	assert.False(t, table.contains(1, 11))
	assert.True(t, table.contains(2, 12))
}

func TestRelationTableEraseToRemovesEveryMatchingRow(t *testing.T) {
	table := newTestRelationTable()
	table.insert(1, 100, 1)
	table.insert(2, 100, 2)
	table.insert(3, 200, 3)

	count := table.eraseTo(100)
	assert.Equal(t, 2, count)
	assert.False(t, table.contains(1, 100))
	assert.False(t, table.contains(2, 100))
	assert.True(t, table.contains(3, 200))
}

func TestRelationTableAllVisitsEveryRowExactlyOnce(t *testing.T) {
	table := newTestRelationTable()
	table.insert(1, 2, 10)
	table.insert(3, 4, 20)
	table.insert(5, 6, 30)

	seen := map[relPair]int{}
	for pair, value := range table.all {
		seen[pair] = *value.(*int)
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, 10, seen[relPair{From: 1, To: 2}])
	assert.Equal(t, 30, seen[relPair{From: 5, To: 6}])
}

func TestRelationTableSwapRemoveFixesUpLinkedListAfterMiddleErase(t *testing.T) {
	table := newTestRelationTable()
	for i := uint32(0); i < 5; i++ {
		table.insert(1, i, int(i))
	}

	require.True(t, table.erase(1, 2))

	var tos []uint32
	for to := range table.viewFrom(1) {
		tos = append(tos, to)
	}
	assert.ElementsMatch(t, []uint32{0, 1, 3, 4}, tos)
}
