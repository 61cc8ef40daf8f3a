package optimizer

import (
	"fmt"

	"skipdb/pkg/catalog"
	"skipdb/pkg/dberr"
	"skipdb/pkg/index"
	"skipdb/pkg/plan"
)

// CreatePlan materializes a surviving path into an executable plan node
// tree. Everything an operator will need at runtime is resolved here,
// against the same catalog state that produced the path.
func CreatePlan(cat *catalog.SystemCatalog, p plan.Path) (plan.PlanNode, error) {
	switch p := p.(type) {
	case *plan.IndexPath:
		return indexScanNode(p), nil

	case *plan.SkipScanPath:
		return skipScanNode(p)

	case *plan.UniquePath:
		return uniqueNode(cat, p)

	case *plan.MergeAppendPath:
		return mergeAppendNode(cat, p)

	default:
		return nil, dberr.New(dberr.CategoryPlanning, "UNKNOWN_PATH", "Materializer",
			fmt.Sprintf("no plan shape for path %T", p))
	}
}

func indexScanNode(p *plan.IndexPath) *plan.IndexScanPlanNode {
	return &plan.IndexScanPlanNode{
		BasePlanNode: plan.BasePlanNode{Cost: p.Cost},
		IndexName:    p.IndexName,
		Table:        p.Table,
		Conditions:   append([]index.ScanKey(nil), p.Conditions...),
		Filters:      append([]index.ScanKey(nil), p.Filters...),
		Dir:          p.Dir,
		IndexOnly:    p.IndexOnly,
		OrderBys:     p.OrderBys,
	}
}

// skipScanNode builds the skip node and its inner scan. The skip clause
// moves from plan-time form, which names the table attribute, to the
// index-tuple form the scan evaluates, and is spliced ahead of the
// existing conditions. The operator fixes up per-column ordering at
// open time.
func skipScanNode(p *plan.SkipScanPath) (*plan.SkipScanPlanNode, error) {
	inner := indexScanNode(p.Index)

	skipKey := p.SkipClause
	skipKey.Column = p.DistinctColumn
	inner.Conditions = append([]index.ScanKey{skipKey}, inner.Conditions...)
	inner.BasePlanNode.Cost = p.Cost

	// The distinct column's position in the output tuple depends on the
	// row shape: heap rows use table attribute numbers, index-only rows
	// use index column offsets.
	distinctAttr := p.SkipClause.Column
	if p.Index.IndexOnly {
		distinctAttr = p.DistinctColumn
	}

	return &plan.SkipScanPlanNode{
		BasePlanNode:   plan.BasePlanNode{Cost: p.Cost, Children: []plan.PlanNode{inner}},
		Inner:          inner,
		DistinctAttr:   distinctAttr,
		DistinctByVal:  p.DistinctByVal,
		DistinctTypLen: p.DistinctTypLen,
	}, nil
}

func uniqueNode(cat *catalog.SystemCatalog, p *plan.UniquePath) (*plan.UniquePlanNode, error) {
	child, err := CreatePlan(cat, p.Sub)
	if err != nil {
		return nil, err
	}
	keys, err := leadingSortAttrs(cat, p.Sub, p.NumKeys)
	if err != nil {
		return nil, err
	}
	return &plan.UniquePlanNode{
		BasePlanNode: plan.BasePlanNode{Cost: p.Cost, Children: []plan.PlanNode{child}},
		Inner:        child,
		KeyColumns:   keys,
	}, nil
}

func mergeAppendNode(cat *catalog.SystemCatalog, p *plan.MergeAppendPath) (*plan.MergeAppendPlanNode, error) {
	if len(p.Subs) == 0 {
		return nil, dberr.New(dberr.CategoryPlanning, "EMPTY_MERGE", "Materializer",
			"merge append path has no subpaths")
	}
	children := make([]plan.PlanNode, 0, len(p.Subs))
	for _, sub := range p.Subs {
		child, err := CreatePlan(cat, sub)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	attrs, err := leadingSortAttrs(cat, p.Subs[0], 1)
	if err != nil {
		return nil, err
	}
	descending, nullsFirst, err := outputOrder(cat, p.Subs[0])
	if err != nil {
		return nil, err
	}
	return &plan.MergeAppendPlanNode{
		BasePlanNode: plan.BasePlanNode{Cost: p.Cost, Children: children},
		Inners:       children,
		SortColumn:   attrs[0],
		Reverse:      descending,
		NullsFirst:   nullsFirst,
	}, nil
}

// baseIndexPath unwraps a path to the index scan that defines its row
// shape and ordering.
func baseIndexPath(p plan.Path) (*plan.IndexPath, error) {
	switch p := p.(type) {
	case *plan.IndexPath:
		return p, nil
	case *plan.SkipScanPath:
		return p.Index, nil
	case *plan.MergeAppendPath:
		if len(p.Subs) == 0 {
			return nil, dberr.New(dberr.CategoryPlanning, "EMPTY_MERGE", "Materializer",
				"merge append path has no subpaths")
		}
		return baseIndexPath(p.Subs[0])
	default:
		return nil, dberr.New(dberr.CategoryPlanning, "UNKNOWN_PATH", "Materializer",
			fmt.Sprintf("cannot resolve row shape of path %T", p))
	}
}

// leadingSortAttrs resolves the first n sort columns of a path to
// output tuple positions.
func leadingSortAttrs(cat *catalog.SystemCatalog, p plan.Path, n int) ([]int, error) {
	ip, err := baseIndexPath(p)
	if err != nil {
		return nil, err
	}
	idx, err := cat.GetIndex(ip.IndexName)
	if err != nil {
		return nil, err
	}
	meta := idx.Meta()

	attrs := make([]int, 0, n)
	for i := 0; i < n; i++ {
		offset := ip.SortColumnOffset + i
		if offset >= meta.NumColumns() {
			return nil, dberr.New(dberr.CategoryPlanning, "SORT_KEYS_EXHAUSTED", "Materializer",
				fmt.Sprintf("index %s has no sort column at offset %d", meta.Name, offset))
		}
		if ip.IndexOnly {
			attrs = append(attrs, offset)
			continue
		}
		attr := meta.Columns[offset]
		if attr < 0 {
			return nil, dberr.New(dberr.CategoryPlanning, "EXPRESSION_SORT_KEY", "Materializer",
				fmt.Sprintf("index %s sorts on an expression at offset %d", meta.Name, offset))
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// outputOrder resolves the direction rows actually leave a path in,
// folding the index's stored order into the scan direction.
func outputOrder(cat *catalog.SystemCatalog, p plan.Path) (descending, nullsFirst bool, err error) {
	ip, err := baseIndexPath(p)
	if err != nil {
		return false, false, err
	}
	idx, err := cat.GetIndex(ip.IndexName)
	if err != nil {
		return false, false, err
	}
	meta := idx.Meta()

	forward := ip.Dir == index.ForwardScan
	ascending := forward != meta.Reverse
	return !ascending, meta.NullsFirst == forward, nil
}
