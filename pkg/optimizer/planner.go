package optimizer

import (
	"go.uber.org/zap"

	"skipdb/pkg/catalog"
	"skipdb/pkg/config"
	"skipdb/pkg/index"
	"skipdb/pkg/logging"
	"skipdb/pkg/plan"
)

// DistinctRequest describes a "first row per distinct leading key"
// query over one index.
type DistinctRequest struct {
	Table     string
	Index     string
	Dir       index.ScanDirection
	IndexOnly bool

	// SortColumnOffset is the index column offset of the distinct key,
	// usually 0. Composite indexes with equality conditions on earlier
	// columns shift it right.
	SortColumnOffset int

	// Conditions are index quals by index column offset.
	Conditions []index.ScanKey

	// Filters are residual table-column quals, heap paths only.
	Filters []index.ScanKey
}

// startupCost charges cursor setup; perRowCost charges walking one
// index entry. Crude, but only relative order matters here.
const (
	startupCost = 10.0
	perRowCost  = 1.0
)

// BuildDistinctPaths constructs the standard candidate set for a
// distinct request: a full ordered walk with a dedup on top. The path
// selector then gets its chance to add skip variants.
func BuildDistinctPaths(cat *catalog.SystemCatalog, req DistinctRequest) (*plan.PathSet, error) {
	table, err := cat.GetTable(req.Table)
	if err != nil {
		return nil, err
	}
	if _, err := cat.GetIndex(req.Index); err != nil {
		return nil, err
	}

	scanCost := startupCost + perRowCost*float64(table.NumRows())
	ip := &plan.IndexPath{
		IndexName:        req.Index,
		Table:            req.Table,
		SortColumnOffset: req.SortColumnOffset,
		Conditions:       req.Conditions,
		Filters:          req.Filters,
		Dir:              req.Dir,
		IndexOnly:        req.IndexOnly,
		Cost:             scanCost,
	}
	up := &plan.UniquePath{Sub: ip, NumKeys: 1, Cost: scanCost + perRowCost*float64(table.NumRows())}
	return plan.NewPathSet(ip, up), nil
}

// PlanDistinct runs the full planning pipeline for a distinct request:
// baseline paths, the skip rewrite, cost choice, materialization.
func PlanDistinct(settings *config.Settings, cat *catalog.SystemCatalog, req DistinctRequest) (plan.PlanNode, error) {
	ps, err := BuildDistinctPaths(cat, req)
	if err != nil {
		return nil, err
	}
	AddSkipScanPaths(settings, cat, ps)

	// Only distinct-producing shapes compete here; the bare index path
	// exists to carry its cost into the rewrite.
	var best plan.Path
	for _, p := range ps.Paths() {
		if _, ok := p.(*plan.UniquePath); !ok {
			continue
		}
		if best == nil || p.TotalCost() < best.TotalCost() {
			best = p
		}
	}
	logging.GetLogger().Debug("distinct plan chosen",
		zap.String("table", req.Table),
		zap.String("path", best.Describe()))
	return CreatePlan(cat, best)
}
