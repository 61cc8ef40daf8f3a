package execution

import (
	"fmt"

	"go.uber.org/zap"

	"skipdb/pkg/dberr"
	"skipdb/pkg/index"
	"skipdb/pkg/iterator"
	"skipdb/pkg/storage"
	"skipdb/pkg/tuple"
)

// IndexScan walks an ordered index and fetches the matching heap tuples
// from the backing table. Conditions are evaluated against index
// columns by the cursor; Filters are residual predicates on arbitrary
// table columns, applied after the heap fetch.
type IndexScan struct {
	base  *iterator.BaseIterator
	ctx   *ExecContext
	idx   index.OrderedIndex
	table *storage.MemTable
	dir   index.ScanDirection

	conditions []index.ScanKey
	filters    []index.ScanKey
	orderBys   int

	cursor     index.Cursor
	reachedEnd bool
	restarts   int
}

// NewIndexScan creates a heap-fetching scan over idx. The index must
// belong to table; conditions use index-column offsets, filters use
// table attribute numbers.
func NewIndexScan(ctx *ExecContext, idx index.OrderedIndex, table *storage.MemTable,
	dir index.ScanDirection, conditions, filters []index.ScanKey) (*IndexScan, error) {
	if idx == nil || table == nil {
		return nil, fmt.Errorf("index scan requires both an index and a table")
	}
	if idx.Meta().Table != table.Name() {
		return nil, fmt.Errorf("index %s is not defined on table %s",
			idx.Meta().Name, table.Name())
	}
	is := &IndexScan{
		ctx:        ctx,
		idx:        idx,
		table:      table,
		dir:        dir,
		conditions: conditions,
		filters:    filters,
	}
	is.base = iterator.NewBaseIterator(is.readNext)
	return is, nil
}

func (is *IndexScan) Open() error {
	if err := is.BeginScan(); err != nil {
		return err
	}
	is.base.MarkOpened()
	return nil
}

// BeginScan drops the current cursor and repositions at the first entry
// satisfying the current condition list.
func (is *IndexScan) BeginScan() error {
	if is.cursor != nil {
		is.cursor.Close()
	}
	cur, err := is.idx.BeginScan(is.dir, is.conditions)
	if err != nil {
		return dberr.Wrap(err, dberr.CategorySystem, "SCAN_BEGIN_FAILED", "IndexScan",
			fmt.Sprintf("cannot position cursor on index %s", is.idx.Meta().Name))
	}
	is.cursor = cur
	is.reachedEnd = false
	is.restarts++
	is.base.ClearCache()
	return nil
}

func (is *IndexScan) readNext() (*tuple.Tuple, error) {
	if is.reachedEnd || is.cursor == nil {
		return nil, nil
	}
	for {
		entry, err := is.cursor.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			is.reachedEnd = true
			return nil, nil
		}
		t, err := is.table.FetchTuple(entry.Rid)
		if err != nil {
			return nil, dberr.Wrap(err, dberr.CategorySystem, "HEAP_FETCH_FAILED", "IndexScan",
				fmt.Sprintf("index %s points at missing row %d", is.idx.Meta().Name, entry.Rid))
		}
		ok, err := is.matchesFilters(t)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
}

func (is *IndexScan) matchesFilters(t *tuple.Tuple) (bool, error) {
	for _, f := range is.filters {
		fld, err := t.GetField(f.Column)
		if err != nil {
			return false, err
		}
		ok, err := f.Matches(fld)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (is *IndexScan) HasNext() (bool, error) { return is.base.HasNext() }
func (is *IndexScan) Next() (*tuple.Tuple, error) {
	return is.base.Next()
}

func (is *IndexScan) Rewind() error {
	if err := is.BeginScan(); err != nil {
		return err
	}
	is.base.ClearCache()
	return nil
}

func (is *IndexScan) Close() error {
	if is.cursor != nil {
		is.cursor.Close()
		is.cursor = nil
	}
	is.base.Close()
	return nil
}

func (is *IndexScan) GetTupleDesc() *tuple.TupleDescription {
	return is.table.GetTupleDesc()
}

func (is *IndexScan) Conditions() []index.ScanKey { return is.conditions }

func (is *IndexScan) SetConditions(keys []index.ScanKey) {
	is.conditions = keys
	if is.ctx != nil {
		is.ctx.Log.Debug("index scan conditions replaced",
			zap.String("index", is.idx.Meta().Name),
			zap.Int("keys", len(keys)))
	}
}

// Filters returns the residual predicate list. Callers may mutate the
// bound values in place and Rewind to re-run with new parameters.
func (is *IndexScan) Filters() []index.ScanKey { return is.filters }

func (is *IndexScan) SetFilters(keys []index.ScanKey) { is.filters = keys }

func (is *IndexScan) ClearReachedEnd() { is.reachedEnd = false }

func (is *IndexScan) IsIndexOnly() bool { return false }

func (is *IndexScan) OrderByKeyCount() int { return is.orderBys }

// SetOrderByKeyCount is used when materializing plans that carry ORDER
// BY distance keys, so downstream operators can reject them.
func (is *IndexScan) SetOrderByKeyCount(n int) { is.orderBys = n }

func (is *IndexScan) Restarts() int { return is.restarts }
