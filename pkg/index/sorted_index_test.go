package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skipdb/pkg/types"
)

func intKey(v int64) []types.Field {
	return []types.Field{types.NewIntField(v)}
}

func nullKey() []types.Field {
	return []types.Field{types.NewNullField(types.IntType)}
}

func buildIndex(t *testing.T, reverse, nullsFirst bool) *SortedIndex {
	t.Helper()
	si := NewSortedIndex(IndexMeta{
		Name:        "t_k_idx",
		Table:       "t",
		Columns:     []int{0},
		ColumnTypes: []types.Type{types.IntType},
		Reverse:     reverse,
		NullsFirst:  nullsFirst,
	})
	// Inserted out of order on purpose.
	require.NoError(t, si.Insert(intKey(2), 10))
	require.NoError(t, si.Insert(nullKey(), 11))
	require.NoError(t, si.Insert(intKey(1), 12))
	require.NoError(t, si.Insert(intKey(3), 13))
	return si
}

func drainRids(t *testing.T, si *SortedIndex, dir ScanDirection, keys []ScanKey) []int {
	t.Helper()
	cur, err := si.BeginScan(dir, keys)
	require.NoError(t, err)
	defer cur.Close()

	var rids []int
	for {
		e, err := cur.Next()
		require.NoError(t, err)
		if e == nil {
			return rids
		}
		rids = append(rids, e.Rid)
	}
}

func TestIndexOrderNullsLast(t *testing.T) {
	si := buildIndex(t, false, false)
	assert.Equal(t, []int{12, 10, 13, 11}, drainRids(t, si, ForwardScan, nil))
}

func TestIndexOrderNullsFirst(t *testing.T) {
	si := buildIndex(t, false, true)
	assert.Equal(t, []int{11, 12, 10, 13}, drainRids(t, si, ForwardScan, nil))
}

func TestIndexOrderDescending(t *testing.T) {
	si := buildIndex(t, true, false)
	assert.Equal(t, []int{13, 10, 12, 11}, drainRids(t, si, ForwardScan, nil))
}

func TestBackwardScanReversesStoredOrder(t *testing.T) {
	si := buildIndex(t, false, false)
	assert.Equal(t, []int{11, 13, 10, 12}, drainRids(t, si, BackwardScan, nil))
}

func TestScanKeyStrictBound(t *testing.T) {
	si := buildIndex(t, false, false)
	keys := []ScanKey{{Column: 0, Op: types.GreaterThan, Value: types.NewIntField(1)}}
	// NULL rows never satisfy an ordering bound.
	assert.Equal(t, []int{10, 13}, drainRids(t, si, ForwardScan, keys))
}

func TestScanKeySearchNull(t *testing.T) {
	si := buildIndex(t, false, true)
	keys := []ScanKey{{Column: 0, Flags: KeySearchNull | KeyIsNull}}
	assert.Equal(t, []int{11}, drainRids(t, si, ForwardScan, keys))
}

func TestScanKeySearchNotNull(t *testing.T) {
	si := buildIndex(t, false, true)
	keys := []ScanKey{{Column: 0, Flags: KeySearchNotNull | KeyIsNull}}
	assert.Equal(t, []int{12, 10, 13}, drainRids(t, si, ForwardScan, keys))
}

func TestNullBoundWithoutSearchModeMatchesNothing(t *testing.T) {
	si := buildIndex(t, false, false)
	keys := []ScanKey{{Column: 0, Op: types.GreaterThan, Flags: KeyIsNull}}
	assert.Empty(t, drainRids(t, si, ForwardScan, keys))
}

func TestSeekOnDescendingIndex(t *testing.T) {
	si := buildIndex(t, true, false)
	keys := []ScanKey{{Column: 0, Op: types.LessThan, Value: types.NewIntField(3)}}
	assert.Equal(t, []int{10, 12}, drainRids(t, si, ForwardScan, keys))
}

func TestCompositeIndexOrdering(t *testing.T) {
	si := NewSortedIndex(IndexMeta{
		Name:        "t_a_k_idx",
		Table:       "t",
		Columns:     []int{0, 1},
		ColumnTypes: []types.Type{types.IntType, types.IntType},
	})
	add := func(a, k int64, rid int) {
		require.NoError(t, si.Insert([]types.Field{types.NewIntField(a), types.NewIntField(k)}, rid))
	}
	add(2, 1, 20)
	add(1, 2, 21)
	add(1, 1, 22)

	assert.Equal(t, []int{22, 21, 20}, drainRids(t, si, ForwardScan, nil))

	eqA := []ScanKey{{Column: 0, Op: types.Equals, Value: types.NewIntField(1)}}
	assert.Equal(t, []int{22, 21}, drainRids(t, si, ForwardScan, eqA))
}

func TestInsertRejectsWrongKeyShape(t *testing.T) {
	si := buildIndex(t, false, false)
	assert.Error(t, si.Insert([]types.Field{types.NewStringField("x", types.StringMaxSize)}, 1))
	assert.Error(t, si.Insert([]types.Field{types.NewIntField(1), types.NewIntField(2)}, 1))
}

func TestEqualKeys(t *testing.T) {
	a := []ScanKey{{Column: 0, Op: types.GreaterThan, Value: types.NewIntField(1)}}
	b := []ScanKey{{Column: 0, Op: types.GreaterThan, Value: types.NewIntField(1)}}
	c := []ScanKey{{Column: 0, Op: types.GreaterThan, Value: types.NewIntField(2)}}

	assert.True(t, EqualKeys(a, b))
	assert.False(t, EqualKeys(a, c))
	assert.False(t, EqualKeys(a, nil))
}
