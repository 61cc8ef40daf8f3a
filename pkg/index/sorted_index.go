package index

import (
	"fmt"
	"sort"

	"skipdb/pkg/types"
)

// SortedIndex is an in-memory key-ordered index: entries are kept sorted by
// their key columns according to the index's declared direction and NULL
// placement. It is the reference access method the executor runs over.
type SortedIndex struct {
	meta    IndexMeta
	entries []Entry
	dirty   bool
}

func NewSortedIndex(meta IndexMeta) *SortedIndex {
	return &SortedIndex{meta: meta}
}

func (si *SortedIndex) Meta() IndexMeta {
	return si.meta
}

// Insert adds an index record. NULL key values are represented by
// types.NullField so the entry keeps its column type.
func (si *SortedIndex) Insert(keys []types.Field, rid int) error {
	if len(keys) != si.meta.NumColumns() {
		return fmt.Errorf("expected %d key columns, got %d", si.meta.NumColumns(), len(keys))
	}
	for i, k := range keys {
		if k == nil {
			keys[i] = types.NewNullField(si.meta.ColumnTypes[i])
			continue
		}
		if k.Type() != si.meta.ColumnTypes[i] {
			return fmt.Errorf("key column %d type mismatch: expected %v, got %v",
				i, si.meta.ColumnTypes[i], k.Type())
		}
	}

	si.entries = append(si.entries, Entry{Keys: keys, Rid: rid})
	si.dirty = true
	return nil
}

// NumEntries returns the number of index records.
func (si *SortedIndex) NumEntries() int {
	return len(si.entries)
}

// BeginScan opens a cursor over the index in the given direction. Every
// returned entry satisfies all the scan keys. The cursor seeks past
// entries a leading-column strict inequality already excludes, which is
// what makes re-scanning with a moving bound cheap.
func (si *SortedIndex) BeginScan(dir ScanDirection, keys []ScanKey) (Cursor, error) {
	for _, k := range keys {
		if k.Column < 0 || k.Column >= si.meta.NumColumns() {
			return nil, fmt.Errorf("scan key column %d out of range for index %s", k.Column, si.meta.Name)
		}
	}
	si.ensureSorted()

	c := &sortedCursor{idx: si, dir: dir, keys: keys}
	c.pos = c.seekStart()
	return c, nil
}

func (si *SortedIndex) ensureSorted() {
	if !si.dirty {
		return
	}
	sort.SliceStable(si.entries, func(i, j int) bool {
		return si.lessInIndexOrder(si.entries[i].Keys, si.entries[j].Keys)
	})
	si.dirty = false
}

// lessInIndexOrder compares two key vectors in stored index order:
// column by column, honoring Reverse and NullsFirst.
func (si *SortedIndex) lessInIndexOrder(a, b []types.Field) bool {
	for col := range a {
		an, bn := types.IsNull(a[col]), types.IsNull(b[col])
		switch {
		case an && bn:
			continue
		case an:
			return si.meta.NullsFirst
		case bn:
			return !si.meta.NullsFirst
		}

		less, _ := a[col].Compare(types.LessThan, b[col])
		greater, _ := a[col].Compare(types.GreaterThan, b[col])
		if !less && !greater {
			continue
		}
		if si.meta.Reverse {
			return greater
		}
		return less
	}
	return false
}

type sortedCursor struct {
	idx  *SortedIndex
	dir  ScanDirection
	keys []ScanKey
	pos  int // next scan position to examine
}

// entryAt maps a scan position to an entry, reversing for backward scans.
func (c *sortedCursor) entryAt(pos int) *Entry {
	if c.dir == BackwardScan {
		return &c.idx.entries[len(c.idx.entries)-1-pos]
	}
	return &c.idx.entries[pos]
}

func (c *sortedCursor) Next() (*Entry, error) {
	n := len(c.idx.entries)
	for ; c.pos < n; c.pos++ {
		e := c.entryAt(c.pos)

		matched := true
		for _, k := range c.keys {
			ok, err := k.Matches(e.Keys[k.Column])
			if err != nil {
				return nil, fmt.Errorf("evaluating scan key %s: %w", k, err)
			}
			if !ok {
				matched = false
				break
			}
		}

		if matched {
			c.pos++
			return e, nil
		}
	}
	return nil, nil
}

func (c *sortedCursor) Close() error {
	return nil
}

// seekStart binary-searches the first scan position a leading-column
// strict inequality can match, instead of walking entries it excludes.
// Only a plain value bound aligned with the scan direction qualifies;
// everything else falls back to position 0 and relies on filtering.
func (c *sortedCursor) seekStart() int {
	var skip *ScanKey
	for i := range c.keys {
		k := &c.keys[i]
		if k.Column == 0 && k.Flags == 0 && (k.Op == types.GreaterThan || k.Op == types.LessThan) {
			skip = k
			break
		}
	}
	if skip == nil || skip.Value == nil || types.IsNull(skip.Value) {
		return 0
	}

	// Leading keys ascend in scan order when direction and index order
	// agree; the bound must open toward the tail of the scan.
	effAscending := (c.dir == ForwardScan) != c.idx.meta.Reverse
	if effAscending != (skip.Op == types.GreaterThan) {
		return 0
	}

	nulls := 0
	for _, e := range c.idx.entries {
		if types.IsNull(e.Keys[0]) {
			nulls++
		}
	}

	// The non-NULL run sits after or before the NULL block depending on
	// where the scan direction puts NULLs.
	nullsAtStart := c.idx.meta.NullsFirst == (c.dir == ForwardScan)
	lo, hi := 0, len(c.idx.entries)-nulls
	if nullsAtStart {
		lo, hi = nulls, len(c.idx.entries)
	}

	offset := sort.Search(hi-lo, func(i int) bool {
		ok, _ := c.entryAt(lo+i).Keys[0].Compare(skip.Op, skip.Value)
		return ok
	})
	return lo + offset
}
