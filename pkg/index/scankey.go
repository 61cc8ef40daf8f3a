package index

import (
	"fmt"

	"skipdb/pkg/types"
)

// ScanKeyFlags qualify how a ScanKey treats NULLs.
type ScanKeyFlags uint8

const (
	// KeyIsNull marks a key whose bound value is the NULL placeholder.
	// Without a search flag such a key is unsatisfiable: an ordering
	// operator never relates anything to NULL.
	KeyIsNull ScanKeyFlags = 1 << iota

	// KeySearchNull matches exactly the rows whose key column IS NULL.
	KeySearchNull

	// KeySearchNotNull matches exactly the rows whose key column IS NOT NULL.
	KeySearchNotNull
)

// ScanKey is one entry in an index scan's condition list: a constraint on a
// single index column. Keys are kept ordered by column offset; an index
// scan row must satisfy every key.
type ScanKey struct {
	// Column is the index column offset this key constrains (0 = leading).
	Column int

	// Op is the comparison applied as "column Op Value".
	Op types.Predicate

	// Value is the bound. It is ignored when a search flag is set and nil
	// when KeyIsNull is set.
	Value types.Field

	Flags ScanKeyFlags
}

// Matches evaluates the key against a column value.
func (k ScanKey) Matches(f types.Field) (bool, error) {
	switch {
	case k.Flags&KeySearchNull != 0:
		return types.IsNull(f), nil

	case k.Flags&KeySearchNotNull != 0:
		return !types.IsNull(f), nil

	case k.Flags&KeyIsNull != 0:
		// NULL bound, no search mode: never satisfiable.
		return false, nil

	case types.IsNull(f):
		return false, nil

	default:
		return f.Compare(k.Op, k.Value)
	}
}

func (k ScanKey) String() string {
	switch {
	case k.Flags&KeySearchNull != 0:
		return fmt.Sprintf("col%d IS NULL", k.Column)
	case k.Flags&KeySearchNotNull != 0:
		return fmt.Sprintf("col%d IS NOT NULL", k.Column)
	case k.Flags&KeyIsNull != 0:
		return fmt.Sprintf("col%d %s NULL", k.Column, k.Op)
	default:
		return fmt.Sprintf("col%d %s %s", k.Column, k.Op, k.Value)
	}
}

// EqualKeys reports whether two condition lists are identical. Scans use
// this to decide whether a restart is required after a SetConditions.
func EqualKeys(a, b []ScanKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Column != b[i].Column || a[i].Op != b[i].Op || a[i].Flags != b[i].Flags {
			return false
		}
		av, bv := a[i].Value, b[i].Value
		if (av == nil) != (bv == nil) {
			return false
		}
		if av != nil && !av.Equals(bv) {
			return false
		}
	}
	return true
}
