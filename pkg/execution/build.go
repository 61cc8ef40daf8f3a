package execution

import (
	"fmt"

	"skipdb/pkg/catalog"
	"skipdb/pkg/dberr"
	"skipdb/pkg/index"
	"skipdb/pkg/iterator"
	"skipdb/pkg/plan"
	"skipdb/pkg/tuple"
)

// BuildFunc constructs the operator for one plan node type. Child nodes
// are built through the supplied builder so registered overrides apply
// at every level of the tree.
type BuildFunc func(ctx *ExecContext, b *Builder, node plan.PlanNode) (iterator.DbIterator, error)

// Builder turns plan trees into operator trees, resolving table and
// index names through the catalog. The node-type registry is open:
// callers can add node types or replace how the built-in ones are
// constructed.
type Builder struct {
	cat    *catalog.SystemCatalog
	byType map[string]BuildFunc
}

func NewBuilder(cat *catalog.SystemCatalog) *Builder {
	b := &Builder{cat: cat, byType: make(map[string]BuildFunc)}
	b.Register("IndexScan", buildIndexScan)
	b.Register("IndexOnlyScan", buildIndexOnlyScan)
	b.Register("SkipScan", buildSkipScan)
	b.Register("Unique", buildUnique)
	b.Register("MergeAppend", buildMergeAppend)
	return b
}

func (b *Builder) Register(nodeType string, fn BuildFunc) {
	b.byType[nodeType] = fn
}

func (b *Builder) Catalog() *catalog.SystemCatalog { return b.cat }

func (b *Builder) Build(ctx *ExecContext, node plan.PlanNode) (iterator.DbIterator, error) {
	fn, ok := b.byType[node.GetNodeType()]
	if !ok {
		return nil, dberr.Internal("UNKNOWN_PLAN_NODE", "Builder",
			fmt.Sprintf("no operator registered for node type %q", node.GetNodeType()))
	}
	return fn(ctx, b, node)
}

func buildIndexScan(ctx *ExecContext, b *Builder, node plan.PlanNode) (iterator.DbIterator, error) {
	n, ok := node.(*plan.IndexScanPlanNode)
	if !ok {
		return nil, dberr.Internal("PLAN_NODE_MISMATCH", "Builder",
			fmt.Sprintf("expected index scan node, got %T", node))
	}
	idx, err := b.cat.GetIndex(n.IndexName)
	if err != nil {
		return nil, err
	}
	table, err := b.cat.GetTable(n.Table)
	if err != nil {
		return nil, err
	}
	// The operator mutates its condition list at runtime; give it a
	// private copy so the plan stays reusable.
	conds := append([]index.ScanKey(nil), n.Conditions...)
	filters := append([]index.ScanKey(nil), n.Filters...)
	is, err := NewIndexScan(ctx, idx, table, n.Dir, conds, filters)
	if err != nil {
		return nil, err
	}
	is.SetOrderByKeyCount(n.OrderBys)
	return is, nil
}

func buildIndexOnlyScan(ctx *ExecContext, b *Builder, node plan.PlanNode) (iterator.DbIterator, error) {
	n, ok := node.(*plan.IndexScanPlanNode)
	if !ok {
		return nil, dberr.Internal("PLAN_NODE_MISMATCH", "Builder",
			fmt.Sprintf("expected index scan node, got %T", node))
	}
	if len(n.Filters) > 0 {
		return nil, dberr.New(dberr.CategoryPlanning, "FILTERS_NEED_HEAP", "Builder",
			"index-only scan cannot evaluate table-column filters")
	}
	idx, err := b.cat.GetIndex(n.IndexName)
	if err != nil {
		return nil, err
	}
	desc, err := indexTupleDesc(b.cat, idx)
	if err != nil {
		return nil, err
	}
	conds := append([]index.ScanKey(nil), n.Conditions...)
	return NewIndexOnlyScan(ctx, idx, n.Dir, conds, desc)
}

// indexTupleDesc derives the output schema of an index-only scan from
// the index columns, borrowing names from the base table where the
// column maps to a real attribute.
func indexTupleDesc(cat *catalog.SystemCatalog, idx index.OrderedIndex) (*tuple.TupleDescription, error) {
	meta := idx.Meta()
	table, err := cat.GetTable(meta.Table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(meta.ColumnTypes))
	for i, attr := range meta.Columns {
		if attr >= 0 && attr < table.GetTupleDesc().NumFields() {
			names[i], _ = table.GetTupleDesc().GetFieldName(attr)
		} else {
			names[i] = fmt.Sprintf("expr%d", i)
		}
	}
	return tuple.NewTupleDesc(meta.ColumnTypes, names)
}

func buildSkipScan(ctx *ExecContext, b *Builder, node plan.PlanNode) (iterator.DbIterator, error) {
	n, ok := node.(*plan.SkipScanPlanNode)
	if !ok {
		return nil, dberr.Internal("PLAN_NODE_MISMATCH", "Builder",
			fmt.Sprintf("expected skip scan node, got %T", node))
	}
	child, err := b.Build(ctx, n.Inner)
	if err != nil {
		return nil, err
	}
	ordered, ok := child.(OrderedScan)
	if !ok {
		return nil, dberr.Internal("INNER_SCAN_UNSUPPORTED", "Builder",
			fmt.Sprintf("skip scan inner operator %T lacks ordered scan control", child))
	}
	return NewSkipScan(ctx, ordered, n.DistinctAttr, n.DistinctByVal, n.DistinctTypLen)
}

func buildUnique(ctx *ExecContext, b *Builder, node plan.PlanNode) (iterator.DbIterator, error) {
	n, ok := node.(*plan.UniquePlanNode)
	if !ok {
		return nil, dberr.Internal("PLAN_NODE_MISMATCH", "Builder",
			fmt.Sprintf("expected unique node, got %T", node))
	}
	child, err := b.Build(ctx, n.Inner)
	if err != nil {
		return nil, err
	}
	return NewUnique(child, n.KeyColumns)
}

func buildMergeAppend(ctx *ExecContext, b *Builder, node plan.PlanNode) (iterator.DbIterator, error) {
	n, ok := node.(*plan.MergeAppendPlanNode)
	if !ok {
		return nil, dberr.Internal("PLAN_NODE_MISMATCH", "Builder",
			fmt.Sprintf("expected merge append node, got %T", node))
	}
	children := make([]iterator.DbIterator, 0, len(n.Inners))
	for _, inner := range n.Inners {
		child, err := b.Build(ctx, inner)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return NewMergeAppend(children, n.SortColumn, n.Reverse, n.NullsFirst)
}
