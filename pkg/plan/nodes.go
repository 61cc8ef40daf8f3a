package plan

import (
	"fmt"

	"skipdb/pkg/index"
)

// PlanNode represents a node in the executable query plan tree.
type PlanNode interface {
	// GetCost returns the estimated total cost of this node and its children
	GetCost() float64

	// GetChildren returns the child plan nodes
	GetChildren() []PlanNode

	// GetNodeType returns the type of this node (for debugging/visualization)
	GetNodeType() string

	// String returns a human-readable representation of the plan
	String() string
}

// BasePlanNode provides common functionality for all plan nodes
type BasePlanNode struct {
	Cost     float64
	Children []PlanNode
}

func (b *BasePlanNode) GetCost() float64 {
	return b.Cost
}

func (b *BasePlanNode) GetChildren() []PlanNode {
	return b.Children
}

// IndexScanPlanNode scans an ordered index. Conditions reference index
// column offsets (the index-tuple form); Filters reference table columns
// and are applied after the heap fetch.
type IndexScanPlanNode struct {
	BasePlanNode
	IndexName  string
	Table      string
	Conditions []index.ScanKey
	Filters    []index.ScanKey
	Dir        index.ScanDirection
	IndexOnly  bool
	OrderBys   int
}

func (n *IndexScanPlanNode) GetNodeType() string {
	if n.IndexOnly {
		return "IndexOnlyScan"
	}
	return "IndexScan"
}

func (n *IndexScanPlanNode) String() string {
	return fmt.Sprintf("%s(%s, conds=%d, filters=%d, dir=%s, cost=%.2f)",
		n.GetNodeType(), n.IndexName, len(n.Conditions), len(n.Filters), n.Dir, n.Cost)
}

// SkipScanPlanNode wraps an index scan whose condition list has the skip
// qual spliced in front. The distinct column metadata is materialized here
// so the operator never consults the catalog.
type SkipScanPlanNode struct {
	BasePlanNode
	Inner *IndexScanPlanNode

	// DistinctAttr is the distinct column's position in the output tuple.
	DistinctAttr int

	DistinctByVal  bool
	DistinctTypLen uint32
}

func (n *SkipScanPlanNode) GetNodeType() string {
	return "SkipScan"
}

func (n *SkipScanPlanNode) String() string {
	return fmt.Sprintf("SkipScan(attr=%d, byval=%t, cost=%.2f) -> %s",
		n.DistinctAttr, n.DistinctByVal, n.Cost, n.Inner)
}

// UniquePlanNode removes consecutive duplicates from a sorted input.
type UniquePlanNode struct {
	BasePlanNode
	Inner PlanNode

	// KeyColumns are the output positions the dedup compares on.
	KeyColumns []int
}

func (n *UniquePlanNode) GetNodeType() string {
	return "Unique"
}

func (n *UniquePlanNode) String() string {
	return fmt.Sprintf("Unique(keys=%v, cost=%.2f) -> %s", n.KeyColumns, n.Cost, n.Inner)
}

// MergeAppendPlanNode merges several sorted inputs into one globally
// sorted stream, comparing on a single output column.
type MergeAppendPlanNode struct {
	BasePlanNode
	Inners []PlanNode

	SortColumn int
	Reverse    bool
	NullsFirst bool
}

func (n *MergeAppendPlanNode) GetNodeType() string {
	return "MergeAppend"
}

func (n *MergeAppendPlanNode) String() string {
	return fmt.Sprintf("MergeAppend(%d inputs, col=%d, cost=%.2f)", len(n.Inners), n.SortColumn, n.Cost)
}
