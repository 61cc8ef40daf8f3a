package execution

import (
	"fmt"

	"skipdb/pkg/iterator"
	"skipdb/pkg/tuple"
	"skipdb/pkg/types"
)

// Unique deduplicates an already-ordered input on a set of key columns,
// keeping the first row of each group. All NULLs in a key column count
// as one group. This is the fallback for distinct queries the skip
// strategy cannot serve, and the reference the skip strategy is checked
// against.
type Unique struct {
	base       *iterator.BaseIterator
	child      iterator.DbIterator
	keyColumns []int

	prev     *tuple.Tuple
	havePrev bool
}

func NewUnique(child iterator.DbIterator, keyColumns []int) (*Unique, error) {
	if child == nil {
		return nil, fmt.Errorf("unique requires a child iterator")
	}
	if len(keyColumns) == 0 {
		return nil, fmt.Errorf("unique requires at least one key column")
	}
	for _, c := range keyColumns {
		if c < 0 || c >= child.GetTupleDesc().NumFields() {
			return nil, fmt.Errorf("key column %d out of range", c)
		}
	}
	u := &Unique{child: child, keyColumns: keyColumns}
	u.base = iterator.NewBaseIterator(u.readNext)
	return u, nil
}

func (u *Unique) Open() error {
	if err := u.child.Open(); err != nil {
		return err
	}
	u.base.MarkOpened()
	return nil
}

func (u *Unique) readNext() (*tuple.Tuple, error) {
	for {
		row, err := iterator.FetchNext(u.child)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		same, err := u.sameGroup(row)
		if err != nil {
			return nil, err
		}
		if same {
			continue
		}
		// Keep a private copy; buffer-backed children reuse their slot.
		kept, err := row.Clone()
		if err != nil {
			return nil, err
		}
		u.prev = kept
		u.havePrev = true
		return kept, nil
	}
}

func (u *Unique) sameGroup(row *tuple.Tuple) (bool, error) {
	if !u.havePrev {
		return false, nil
	}
	for _, c := range u.keyColumns {
		a, err := u.prev.GetField(c)
		if err != nil {
			return false, err
		}
		b, err := row.GetField(c)
		if err != nil {
			return false, err
		}
		if !fieldsEqualForDistinct(a, b) {
			return false, nil
		}
	}
	return true, nil
}

// fieldsEqualForDistinct treats two NULLs as equal, matching distinct
// grouping rather than comparison semantics.
func fieldsEqualForDistinct(a, b types.Field) bool {
	an, bn := types.IsNull(a), types.IsNull(b)
	if an || bn {
		return an && bn
	}
	return a.Equals(b)
}

func (u *Unique) HasNext() (bool, error) { return u.base.HasNext() }
func (u *Unique) Next() (*tuple.Tuple, error) {
	return u.base.Next()
}

func (u *Unique) Rewind() error {
	if err := u.child.Rewind(); err != nil {
		return err
	}
	u.prev = nil
	u.havePrev = false
	u.base.ClearCache()
	return nil
}

func (u *Unique) Close() error {
	if err := u.child.Close(); err != nil {
		return err
	}
	u.prev = nil
	u.havePrev = false
	u.base.Close()
	return nil
}

func (u *Unique) GetTupleDesc() *tuple.TupleDescription {
	return u.child.GetTupleDesc()
}
