package execution

import (
	"fmt"

	"skipdb/pkg/iterator"
	"skipdb/pkg/tuple"
	"skipdb/pkg/types"
)

// MergeAppend combines several children that each produce rows ordered
// on the same sort column, yielding a single stream in that order. The
// children are typically per-partition scans over compatible schemas.
type MergeAppend struct {
	base     *iterator.BaseIterator
	children []iterator.DbIterator

	sortColumn int
	reverse    bool
	nullsFirst bool

	// heads[i] is the next undelivered row from children[i], nil when
	// that child is exhausted.
	heads []*tuple.Tuple
}

func NewMergeAppend(children []iterator.DbIterator, sortColumn int,
	reverse, nullsFirst bool) (*MergeAppend, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("merge append requires at least one child")
	}
	desc := children[0].GetTupleDesc()
	for _, c := range children[1:] {
		if !desc.Equals(c.GetTupleDesc()) {
			return nil, fmt.Errorf("merge append children have mismatched schemas")
		}
	}
	if sortColumn < 0 || sortColumn >= desc.NumFields() {
		return nil, fmt.Errorf("sort column %d out of range", sortColumn)
	}
	ma := &MergeAppend{
		children:   children,
		sortColumn: sortColumn,
		reverse:    reverse,
		nullsFirst: nullsFirst,
	}
	ma.base = iterator.NewBaseIterator(ma.readNext)
	return ma, nil
}

func (ma *MergeAppend) Open() error {
	for _, c := range ma.children {
		if err := c.Open(); err != nil {
			return err
		}
	}
	ma.heads = make([]*tuple.Tuple, len(ma.children))
	for i := range ma.children {
		if err := ma.refill(i); err != nil {
			return err
		}
	}
	ma.base.MarkOpened()
	return nil
}

// refill pulls the next row from child i into its head slot. Rows are
// copied because a child may rebuild its output in place.
func (ma *MergeAppend) refill(i int) error {
	row, err := iterator.FetchNext(ma.children[i])
	if err != nil {
		return err
	}
	if row == nil {
		ma.heads[i] = nil
		return nil
	}
	kept, err := row.Clone()
	if err != nil {
		return err
	}
	ma.heads[i] = kept
	return nil
}

func (ma *MergeAppend) readNext() (*tuple.Tuple, error) {
	best := -1
	for i, h := range ma.heads {
		if h == nil {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		before, err := ma.sortsBefore(h, ma.heads[best])
		if err != nil {
			return nil, err
		}
		if before {
			best = i
		}
	}
	if best == -1 {
		return nil, nil
	}
	out := ma.heads[best]
	if err := ma.refill(best); err != nil {
		return nil, err
	}
	return out, nil
}

func (ma *MergeAppend) sortsBefore(a, b *tuple.Tuple) (bool, error) {
	fa, err := a.GetField(ma.sortColumn)
	if err != nil {
		return false, err
	}
	fb, err := b.GetField(ma.sortColumn)
	if err != nil {
		return false, err
	}
	an, bn := types.IsNull(fa), types.IsNull(fb)
	if an || bn {
		if an == bn {
			return false, nil
		}
		return an == ma.nullsFirst, nil
	}
	op := types.LessThan
	if ma.reverse {
		op = types.GreaterThan
	}
	return fa.Compare(op, fb)
}

func (ma *MergeAppend) HasNext() (bool, error) { return ma.base.HasNext() }
func (ma *MergeAppend) Next() (*tuple.Tuple, error) {
	return ma.base.Next()
}

func (ma *MergeAppend) Rewind() error {
	for i, c := range ma.children {
		if err := c.Rewind(); err != nil {
			return err
		}
		if err := ma.refill(i); err != nil {
			return err
		}
	}
	ma.base.ClearCache()
	return nil
}

func (ma *MergeAppend) Close() error {
	var firstErr error
	for _, c := range ma.children {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	ma.heads = nil
	ma.base.Close()
	return firstErr
}

func (ma *MergeAppend) GetTupleDesc() *tuple.TupleDescription {
	return ma.children[0].GetTupleDesc()
}
