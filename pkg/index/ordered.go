// Package index defines the key-ordered index abstraction the execution
// engine scans over, and an in-memory reference implementation.
package index

import "skipdb/pkg/types"

// ScanDirection selects which way a cursor walks the index order.
type ScanDirection int

const (
	ForwardScan ScanDirection = iota
	BackwardScan
)

func (d ScanDirection) String() string {
	if d == BackwardScan {
		return "backward"
	}
	return "forward"
}

// IndexMeta describes an ordered index over a table.
type IndexMeta struct {
	Name  string
	Table string

	// Columns holds, per index column, the position of the backing table
	// attribute. A value of -1 marks an expression column, which cannot
	// back attribute-level optimizations.
	Columns []int

	// ColumnTypes holds the declared type of each index column.
	ColumnTypes []types.Type

	// Reverse indicates the index stores keys in descending order.
	Reverse bool

	// NullsFirst indicates NULL keys sort before non-NULL keys in the
	// stored order.
	NullsFirst bool
}

// NumColumns returns the number of key columns in the index.
func (m IndexMeta) NumColumns() int {
	return len(m.Columns)
}

// Entry is one index record: the key column values plus the record id of
// the heap row it points at.
type Entry struct {
	Keys []types.Field
	Rid  int
}

// Cursor walks index entries in scan order. Next returns nil when the scan
// is exhausted.
type Cursor interface {
	Next() (*Entry, error)
	Close() error
}

// OrderedIndex is the narrow interface the executor consumes from an index
// access method: metadata plus the ability to open a cursor constrained by
// a condition list.
type OrderedIndex interface {
	Meta() IndexMeta
	BeginScan(dir ScanDirection, keys []ScanKey) (Cursor, error)
}
