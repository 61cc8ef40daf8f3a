// Package plan holds the planner's candidate paths and the executable plan
// nodes they materialize into. Paths live only during planning; plan nodes
// carry everything execution needs so operators never consult the catalog.
package plan

import (
	"fmt"

	"skipdb/pkg/index"
)

// Path is a candidate way of producing a relation's output, with an
// estimated cost. The cheapest surviving path gets materialized.
type Path interface {
	TotalCost() float64
	Describe() string
}

// IndexPath scans an ordered index, optionally fetching heap rows.
type IndexPath struct {
	IndexName string
	Table     string

	// SortColumnOffset is the index column offset of the path's leading
	// runtime sort key. Earlier index columns, if any, are pinned by
	// equality conditions and contribute no runtime ordering.
	SortColumnOffset int

	// Conditions are index quals by index column offset.
	Conditions []index.ScanKey

	// Filters are residual quals on table columns, applied after the heap
	// fetch. Index-only paths cannot carry them.
	Filters []index.ScanKey

	Dir       index.ScanDirection
	IndexOnly bool

	// OrderBys counts requested secondary runtime ordering keys.
	// Paths carrying any are rejected by order-sensitive rewrites.
	OrderBys int

	Cost float64
}

func (p *IndexPath) TotalCost() float64 { return p.Cost }

func (p *IndexPath) Describe() string {
	kind := "IndexScan"
	if p.IndexOnly {
		kind = "IndexOnlyScan"
	}
	return fmt.Sprintf("%s(%s, cost=%.2f)", kind, p.IndexName, p.Cost)
}

// UniquePath deduplicates an already-sorted subpath: the standard plan
// shape for "first row per distinct key" before any rewrite.
type UniquePath struct {
	Sub Path

	// NumKeys is the number of leading distinct keys.
	NumKeys int

	Cost float64
}

func (p *UniquePath) TotalCost() float64 { return p.Cost }

func (p *UniquePath) Describe() string {
	return fmt.Sprintf("Unique(keys=%d, cost=%.2f) -> %s", p.NumKeys, p.Cost, p.Sub.Describe())
}

// MergeAppendPath combines several sorted subpaths into one globally
// sorted stream.
type MergeAppendPath struct {
	Subs []Path
	Cost float64
}

func (p *MergeAppendPath) TotalCost() float64 { return p.Cost }

func (p *MergeAppendPath) Describe() string {
	return fmt.Sprintf("MergeAppend(%d subpaths, cost=%.2f)", len(p.Subs), p.Cost)
}

// SkipScanPath wraps an index path with a synthetic inequality that jumps
// past rows whose distinct key was already returned.
type SkipScanPath struct {
	Index *IndexPath

	// SkipClause is the synthetic "column <op> NULL-placeholder" qual in
	// plan-time form: its Column is the table attribute number. The
	// materializer translates it to the index-tuple reference form.
	SkipClause index.ScanKey

	// DistinctColumn is the index column offset of the distinct key.
	DistinctColumn int

	DistinctByVal  bool
	DistinctTypLen uint32

	Cost float64
}

func (p *SkipScanPath) TotalCost() float64 { return p.Cost }

func (p *SkipScanPath) Describe() string {
	return fmt.Sprintf("SkipScan(cost=%.2f) -> %s", p.Cost, p.Index.Describe())
}

// PathSet is a relation's candidate output-path set. Hooks may add
// alternatives; nothing is ever removed, so the standard paths remain as
// fallback.
type PathSet struct {
	paths []Path
}

func NewPathSet(paths ...Path) *PathSet {
	return &PathSet{paths: paths}
}

func (ps *PathSet) Paths() []Path {
	return ps.paths
}

func (ps *PathSet) Add(p Path) {
	ps.paths = append(ps.paths, p)
}

// Cheapest returns the lowest-cost path, or nil for an empty set.
func (ps *PathSet) Cheapest() Path {
	var best Path
	for _, p := range ps.paths {
		if best == nil || p.TotalCost() < best.TotalCost() {
			best = p
		}
	}
	return best
}
