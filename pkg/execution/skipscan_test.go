package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skipdb/pkg/catalog"
	"skipdb/pkg/dberr"
	"skipdb/pkg/index"
	"skipdb/pkg/iterator"
	"skipdb/pkg/storage"
	"skipdb/pkg/tuple"
	"skipdb/pkg/types"
)

func TestSkipScanDistinctOrderMatrix(t *testing.T) {
	cases := []struct {
		name       string
		nullsFirst bool
		dir        index.ScanDirection
		wantDevs   []string
		wantVals   []string
	}{
		{"forward nulls last", false, index.ForwardScan,
			[]string{"1", "2", "NULL"}, []string{"10", "30", "40"}},
		{"forward nulls first", true, index.ForwardScan,
			[]string{"NULL", "1", "2"}, []string{"40", "10", "30"}},
		{"backward nulls last", false, index.BackwardScan,
			[]string{"NULL", "2", "1"}, []string{"40", "30", "20"}},
		{"backward nulls first", true, index.BackwardScan,
			[]string{"2", "1", "NULL"}, []string{"30", "20", "40"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.nullsFirst)
			f.loadStandardRows(t)

			ss, _ := f.newSkipScan(t, tc.dir, nil)
			rows := drain(t, ss)

			assert.Equal(t, tc.wantDevs, col(t, rows, 0))
			assert.Equal(t, tc.wantVals, col(t, rows, 1))
			assert.Equal(t, StageDone, ss.Stage())
		})
	}
}

func TestSkipScanDescendingIndexOrderMatrix(t *testing.T) {
	cases := []struct {
		name       string
		nullsFirst bool
		dir        index.ScanDirection
		wantOp     types.Predicate
		wantDevs   []string
		wantVals   []string
	}{
		{"forward nulls first", true, index.ForwardScan, types.LessThan,
			[]string{"NULL", "2", "1"}, []string{"40", "30", "10"}},
		{"forward nulls last", false, index.ForwardScan, types.LessThan,
			[]string{"2", "1", "NULL"}, []string{"30", "10", "40"}},
		{"backward nulls first", true, index.BackwardScan, types.GreaterThan,
			[]string{"1", "2", "NULL"}, []string{"20", "30", "40"}},
		{"backward nulls last", false, index.BackwardScan, types.GreaterThan,
			[]string{"NULL", "1", "2"}, []string{"40", "20", "30"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			td, err := tuple.NewTupleDesc(
				[]types.Type{types.IntType, types.IntType},
				[]string{"dev", "val"})
			require.NoError(t, err)
			table := storage.NewMemTable("samples", td)
			idx := index.NewSortedIndex(index.IndexMeta{
				Name:        "samples_dev_desc_idx",
				Table:       "samples",
				Columns:     []int{0},
				ColumnTypes: []types.Type{types.IntType},
				Reverse:     true,
				NullsFirst:  tc.nullsFirst,
			})
			ctx := NewExecContext()

			insert := func(dev types.Field, val int64) {
				tup := tuple.NewTuple(td)
				require.NoError(t, tup.SetField(0, dev))
				require.NoError(t, tup.SetField(1, types.NewIntField(val)))
				rid, err := table.Insert(tup)
				require.NoError(t, err)
				require.NoError(t, idx.Insert([]types.Field{dev}, rid))
			}
			insert(types.NewIntField(1), 10)
			insert(types.NewIntField(1), 20)
			insert(types.NewIntField(2), 30)
			insert(types.NewNullField(types.IntType), 40)

			// A descending column advances with "<" on a forward scan
			// and the commuted ">" on a backward one.
			op, err := catalog.OrderingOperator(types.IntType, true, tc.dir)
			require.NoError(t, err)
			require.Equal(t, tc.wantOp, op)

			conds := []index.ScanKey{{Column: 0, Op: op, Flags: index.KeyIsNull}}
			is, err := NewIndexScan(ctx, idx, table, tc.dir, conds, nil)
			require.NoError(t, err)
			ss, err := NewSkipScan(ctx, is, 0, true, 8)
			require.NoError(t, err)

			rows := drain(t, ss)
			assert.Equal(t, tc.wantDevs, col(t, rows, 0))
			assert.Equal(t, tc.wantVals, col(t, rows, 1))
			assert.Equal(t, StageDone, ss.Stage())
		})
	}
}

func TestSkipScanMatchesUniqueReference(t *testing.T) {
	for _, nullsFirst := range []bool{false, true} {
		for _, dir := range []index.ScanDirection{index.ForwardScan, index.BackwardScan} {
			f := newFixture(t, nullsFirst)
			f.loadStandardRows(t)
			f.insert(t, types.NewIntField(7), 50)
			f.insert(t, types.NewIntField(7), 60)
			f.insert(t, types.NewNullField(types.IntType), 70)

			ss, _ := f.newSkipScan(t, dir, nil)
			skipRows := drain(t, ss)

			ref, err := NewIndexScan(f.ctx, f.idx, f.table, dir, nil, nil)
			require.NoError(t, err)
			uq, err := NewUnique(ref, []int{0})
			require.NoError(t, err)
			refRows := drain(t, uq)

			assert.Equal(t, col(t, refRows, 0), col(t, skipRows, 0),
				"nullsFirst=%t dir=%s", nullsFirst, dir)
			assert.Equal(t, col(t, refRows, 1), col(t, skipRows, 1),
				"nullsFirst=%t dir=%s", nullsFirst, dir)
		}
	}
}

func TestSkipScanResidualFilter(t *testing.T) {
	f := newFixture(t, false)
	f.loadStandardRows(t)

	filters := []index.ScanKey{{Column: 1, Op: types.GreaterThan, Value: types.NewIntField(25)}}
	ss, _ := f.newSkipScan(t, index.ForwardScan, filters)
	rows := drain(t, ss)

	// dev=1 has no row passing the filter, so the distinct set shrinks.
	assert.Equal(t, []string{"2", "NULL"}, col(t, rows, 0))
	assert.Equal(t, []string{"30", "40"}, col(t, rows, 1))
}

func TestSkipScanEmptyTable(t *testing.T) {
	f := newFixture(t, false)
	ss, is := f.newSkipScan(t, index.ForwardScan, nil)
	rows := drain(t, ss)

	assert.Empty(t, rows)
	assert.Equal(t, StageDone, ss.Stage())
	// One reposition at open, one for the first probe; an empty first
	// pass must not trigger the boundary probes.
	assert.LessOrEqual(t, is.Restarts(), 2)
}

func TestSkipScanNoMatchingRows(t *testing.T) {
	f := newFixture(t, false)
	f.loadStandardRows(t)

	filters := []index.ScanKey{{Column: 1, Op: types.GreaterThan, Value: types.NewIntField(100)}}
	ss, is := f.newSkipScan(t, index.ForwardScan, filters)
	rows := drain(t, ss)

	assert.Empty(t, rows)
	assert.LessOrEqual(t, is.Restarts(), 2)
}

func TestSkipScanAllNullColumn(t *testing.T) {
	for _, nullsFirst := range []bool{false, true} {
		f := newFixture(t, nullsFirst)
		f.insert(t, types.NewNullField(types.IntType), 10)
		f.insert(t, types.NewNullField(types.IntType), 20)
		f.insert(t, types.NewNullField(types.IntType), 30)

		ss, is := f.newSkipScan(t, index.ForwardScan, nil)
		rows := drain(t, ss)

		assert.Equal(t, []string{"NULL"}, col(t, rows, 0))
		assert.Equal(t, []string{"10"}, col(t, rows, 1))
		// One NULL group plus a single failed probe for values.
		assert.LessOrEqual(t, is.Restarts(), 5)
	}
}

func TestSkipScanRewindRepeats(t *testing.T) {
	f := newFixture(t, false)
	f.loadStandardRows(t)

	ss, _ := f.newSkipScan(t, index.ForwardScan, nil)
	require.NoError(t, ss.Open())

	first, err := iterator.Collect(ss)
	require.NoError(t, err)
	require.NoError(t, ss.Rewind())
	second, err := iterator.Collect(ss)
	require.NoError(t, err)
	require.NoError(t, ss.Close())

	assert.Equal(t, col(t, first, 0), col(t, second, 0))
	assert.Equal(t, col(t, first, 1), col(t, second, 1))
}

func TestSkipScanRewindWithNewParameters(t *testing.T) {
	f := newFixture(t, false)
	f.loadStandardRows(t)

	filters := []index.ScanKey{{Column: 1, Op: types.GreaterThan, Value: types.NewIntField(15)}}
	ss, is := f.newSkipScan(t, index.ForwardScan, filters)
	require.NoError(t, ss.Open())

	first, err := iterator.Collect(ss)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "NULL"}, col(t, first, 0))
	assert.Equal(t, []string{"20", "30", "40"}, col(t, first, 1))

	// Re-bind the residual predicate and re-run the same operator tree.
	is.SetFilters([]index.ScanKey{{Column: 1, Op: types.GreaterThan, Value: types.NewIntField(35)}})
	require.NoError(t, ss.Rewind())
	second, err := iterator.Collect(ss)
	require.NoError(t, err)
	require.NoError(t, ss.Close())

	assert.Equal(t, []string{"NULL"}, col(t, second, 0))
	assert.Equal(t, []string{"40"}, col(t, second, 1))
}

func TestSkipScanCompositeIndexKeyOrder(t *testing.T) {
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.IntType, types.IntType},
		[]string{"book", "page", "val"})
	require.NoError(t, err)
	table := storage.NewMemTable("pages", td)
	idx := index.NewSortedIndex(index.IndexMeta{
		Name:        "pages_book_page_idx",
		Table:       "pages",
		Columns:     []int{0, 1},
		ColumnTypes: []types.Type{types.IntType, types.IntType},
	})
	ctx := NewExecContext()

	insert := func(book, page, val int64) {
		tup := tuple.NewTuple(td)
		require.NoError(t, tup.SetField(0, types.NewIntField(book)))
		require.NoError(t, tup.SetField(1, types.NewIntField(page)))
		require.NoError(t, tup.SetField(2, types.NewIntField(val)))
		rid, err := table.Insert(tup)
		require.NoError(t, err)
		require.NoError(t, idx.Insert([]types.Field{types.NewIntField(book), types.NewIntField(page)}, rid))
	}
	insert(1, 1, 100)
	insert(2, 5, 200)
	insert(2, 5, 201)
	insert(2, 7, 202)
	insert(3, 9, 300)

	// The skip bound arrives spliced in front of the equality on the
	// earlier index column; open must push it past that key.
	conds := []index.ScanKey{
		{Column: 1, Op: types.GreaterThan, Flags: index.KeyIsNull},
		{Column: 0, Op: types.Equals, Value: types.NewIntField(2)},
	}
	is, err := NewIndexScan(ctx, idx, table, index.ForwardScan, conds, nil)
	require.NoError(t, err)
	ss, err := NewSkipScan(ctx, is, 1, true, 8)
	require.NoError(t, err)

	rows := drain(t, ss)
	assert.Equal(t, []string{"5", "7"}, col(t, rows, 1))
	assert.Equal(t, []string{"200", "202"}, col(t, rows, 2))
}

func TestSkipScanOverIndexOnlyScan(t *testing.T) {
	f := newFixture(t, false)
	f.loadStandardRows(t)

	desc, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"dev"})
	require.NoError(t, err)
	conds := []index.ScanKey{{Column: 0, Op: types.GreaterThan, Flags: index.KeyIsNull}}
	ios, err := NewIndexOnlyScan(f.ctx, f.idx, index.ForwardScan, conds, desc)
	require.NoError(t, err)
	ss, err := NewSkipScan(f.ctx, ios, 0, true, 8)
	require.NoError(t, err)

	rows := drain(t, ss)
	// Results must stay valid after the scan moved on, even though the
	// child rebuilds its output in a shared buffer.
	assert.Equal(t, []string{"1", "2", "NULL"}, col(t, rows, 0))
}

func TestSkipScanRejectsOrderByKeys(t *testing.T) {
	f := newFixture(t, false)
	f.loadStandardRows(t)

	ss, is := f.newSkipScan(t, index.ForwardScan, nil)
	is.SetOrderByKeyCount(1)
	err := ss.Open()
	require.Error(t, err)
	assert.True(t, dberr.IsCategory(err, dberr.CategoryInternal))
}

func TestSkipScanRequiresSkipBound(t *testing.T) {
	f := newFixture(t, false)
	f.loadStandardRows(t)

	is, err := NewIndexScan(f.ctx, f.idx, f.table, index.ForwardScan, nil, nil)
	require.NoError(t, err)
	ss, err := NewSkipScan(f.ctx, is, 0, true, 8)
	require.NoError(t, err)

	err = ss.Open()
	require.Error(t, err)
	assert.True(t, dberr.IsCategory(err, dberr.CategoryInternal))
}

func TestSkipScanReleasesCapturedValues(t *testing.T) {
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.StringType, types.IntType},
		[]string{"tag", "val"})
	require.NoError(t, err)
	table := storage.NewMemTable("tags", td)
	idx := index.NewSortedIndex(index.IndexMeta{
		Name:        "tags_tag_idx",
		Table:       "tags",
		Columns:     []int{0},
		ColumnTypes: []types.Type{types.StringType},
	})
	ctx := NewExecContext()

	insert := func(tag types.Field, val int64) {
		tup := tuple.NewTuple(td)
		require.NoError(t, tup.SetField(0, tag))
		require.NoError(t, tup.SetField(1, types.NewIntField(val)))
		rid, err := table.Insert(tup)
		require.NoError(t, err)
		require.NoError(t, idx.Insert([]types.Field{tag}, rid))
	}
	insert(types.NewStringField("alpha", types.StringMaxSize), 1)
	insert(types.NewStringField("alpha", types.StringMaxSize), 2)
	insert(types.NewStringField("beta", types.StringMaxSize), 3)
	insert(types.NewNullField(types.StringType), 4)

	conds := []index.ScanKey{{Column: 0, Op: types.GreaterThan, Flags: index.KeyIsNull}}
	is, err := NewIndexScan(ctx, idx, table, index.ForwardScan, conds, nil)
	require.NoError(t, err)
	ss, err := NewSkipScan(ctx, is, 0, false, types.StringType.StorageSize())
	require.NoError(t, err)

	rows := drain(t, ss)
	assert.Equal(t, []string{"alpha", "beta", "NULL"}, col(t, rows, 0))
	assert.Zero(t, ctx.Arena.Size(), "captured copies must be released")
}

func TestSkipScanBoundedRepositionsPerRow(t *testing.T) {
	f := newFixture(t, false)
	for i := int64(0); i < 20; i++ {
		f.insert(t, types.NewIntField(i%5), i)
	}

	ss, is := f.newSkipScan(t, index.ForwardScan, nil)
	rows := drain(t, ss)

	require.Len(t, rows, 5)
	// One reposition per produced row plus open, the first probe, and
	// the two boundary probes.
	assert.LessOrEqual(t, is.Restarts(), len(rows)+4)
}
