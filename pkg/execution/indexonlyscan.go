package execution

import (
	"fmt"

	"skipdb/pkg/dberr"
	"skipdb/pkg/index"
	"skipdb/pkg/iterator"
	"skipdb/pkg/tuple"
	"skipdb/pkg/types"
)

// IndexOnlyScan answers queries from index entries alone, skipping the
// heap fetch. Every returned row is assembled in a single reusable
// buffer tuple, so consumers that keep a row across a reposition must
// take their own copy first.
type IndexOnlyScan struct {
	base *iterator.BaseIterator
	ctx  *ExecContext
	idx  index.OrderedIndex
	dir  index.ScanDirection
	desc *tuple.TupleDescription

	conditions []index.ScanKey

	cursor     index.Cursor
	buf        *tuple.Tuple
	reachedEnd bool
	restarts   int
}

// NewIndexOnlyScan creates a scan that projects the index columns
// directly. desc must describe the index columns in index order.
func NewIndexOnlyScan(ctx *ExecContext, idx index.OrderedIndex,
	dir index.ScanDirection, conditions []index.ScanKey,
	desc *tuple.TupleDescription) (*IndexOnlyScan, error) {
	if idx == nil {
		return nil, fmt.Errorf("index-only scan requires an index")
	}
	if desc.NumFields() != len(idx.Meta().ColumnTypes) {
		return nil, fmt.Errorf("schema has %d fields but index %s has %d columns",
			desc.NumFields(), idx.Meta().Name, len(idx.Meta().ColumnTypes))
	}
	ios := &IndexOnlyScan{
		ctx:        ctx,
		idx:        idx,
		dir:        dir,
		desc:       desc,
		conditions: conditions,
	}
	ios.base = iterator.NewBaseIterator(ios.readNext)
	return ios, nil
}

func (ios *IndexOnlyScan) Open() error {
	ios.buf = tuple.NewTuple(ios.desc)
	if err := ios.BeginScan(); err != nil {
		return err
	}
	ios.base.MarkOpened()
	return nil
}

func (ios *IndexOnlyScan) BeginScan() error {
	if ios.cursor != nil {
		ios.cursor.Close()
	}
	cur, err := ios.idx.BeginScan(ios.dir, ios.conditions)
	if err != nil {
		return dberr.Wrap(err, dberr.CategorySystem, "SCAN_BEGIN_FAILED", "IndexOnlyScan",
			fmt.Sprintf("cannot position cursor on index %s", ios.idx.Meta().Name))
	}
	ios.cursor = cur
	ios.reachedEnd = false
	ios.restarts++
	ios.base.ClearCache()
	return nil
}

func (ios *IndexOnlyScan) readNext() (*tuple.Tuple, error) {
	if ios.reachedEnd || ios.cursor == nil {
		return nil, nil
	}
	entry, err := ios.cursor.Next()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		ios.reachedEnd = true
		return nil, nil
	}
	for i, f := range entry.Keys {
		v := f
		if v == nil {
			typ, err := ios.desc.TypeAtIndex(i)
			if err != nil {
				return nil, err
			}
			v = types.NewNullField(typ)
		}
		if err := ios.buf.SetField(i, v); err != nil {
			return nil, err
		}
	}
	ios.buf.RecordID = entry.Rid
	return ios.buf, nil
}

func (ios *IndexOnlyScan) HasNext() (bool, error) { return ios.base.HasNext() }
func (ios *IndexOnlyScan) Next() (*tuple.Tuple, error) {
	return ios.base.Next()
}

func (ios *IndexOnlyScan) Rewind() error {
	if err := ios.BeginScan(); err != nil {
		return err
	}
	ios.base.ClearCache()
	return nil
}

// Close releases the cursor and the retrieval buffer.
func (ios *IndexOnlyScan) Close() error {
	if ios.cursor != nil {
		ios.cursor.Close()
		ios.cursor = nil
	}
	ios.buf = nil
	ios.base.Close()
	return nil
}

func (ios *IndexOnlyScan) GetTupleDesc() *tuple.TupleDescription { return ios.desc }

func (ios *IndexOnlyScan) Conditions() []index.ScanKey { return ios.conditions }

func (ios *IndexOnlyScan) SetConditions(keys []index.ScanKey) { ios.conditions = keys }

func (ios *IndexOnlyScan) ClearReachedEnd() { ios.reachedEnd = false }

func (ios *IndexOnlyScan) IsIndexOnly() bool { return true }

func (ios *IndexOnlyScan) OrderByKeyCount() int { return 0 }

func (ios *IndexOnlyScan) Restarts() int { return ios.restarts }
