package execution

import (
	"skipdb/pkg/index"
	"skipdb/pkg/iterator"
)

// OrderedScan is the capability an operator must offer to serve as the
// inner child of a SkipScan. It extends the plain iterator contract with
// control over the condition list and the scan position, allowing the
// parent to tighten the leading-column bound and reposition the cursor
// between rows.
//
// Conditions returns the live condition list; SetConditions replaces it.
// Both operate on index-column offsets. A changed list takes effect at
// the next BeginScan.
type OrderedScan interface {
	iterator.DbIterator

	// BeginScan (re)positions the cursor using the current condition
	// list. Safe to call repeatedly; each call discards the previous
	// cursor position.
	BeginScan() error

	Conditions() []index.ScanKey
	SetConditions(keys []index.ScanKey)

	// ClearReachedEnd resets the exhaustion flag so the scan can be
	// driven again after a reposition.
	ClearReachedEnd()

	// IsIndexOnly reports whether rows are built from index entries
	// alone. Such rows live in a reusable buffer and must be copied by
	// any consumer that keeps them across a reposition.
	IsIndexOnly() bool

	// OrderByKeyCount reports the number of ORDER BY distance keys on
	// the scan. Skip scanning does not support them.
	OrderByKeyCount() int

	// Restarts counts cursor repositions since Open, for tests that
	// bound the probe work per result row.
	Restarts() int
}
