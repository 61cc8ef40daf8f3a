package catalog

import (
	"fmt"

	"skipdb/pkg/index"
	"skipdb/pkg/types"
)

// Orderable reports whether a type carries an ordering operator family.
// Booleans compare for equality only, so indexes over them cannot back
// order-dependent rewrites.
func Orderable(t types.Type) bool {
	switch t {
	case types.IntType, types.FloatType, types.StringType:
		return true
	default:
		return false
	}
}

// OrderingOperator resolves the strict comparison that advances a scan past
// a known key value, for a column of the given type in an index with the
// given sort direction, scanned in the given direction.
//
// An ascending column scanned forward advances with ">", a descending one
// with "<"; a backward scan flips the choice. Types without an ordering
// operator family yield an error.
func OrderingOperator(t types.Type, reverse bool, dir index.ScanDirection) (types.Predicate, error) {
	if !Orderable(t) {
		return 0, fmt.Errorf("type %s has no ordering operator family", t)
	}

	op := types.GreaterThan
	if reverse {
		op = types.LessThan
	}
	if dir == index.BackwardScan {
		op = op.Commute()
	}
	return op, nil
}
