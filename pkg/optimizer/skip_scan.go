// Package optimizer holds the distinct-scan rewrite: a path selector that
// offers skip variants of single-key distinct paths, and the materializer
// that turns the surviving paths into executable plan nodes.
package optimizer

import (
	"math"

	"go.uber.org/zap"

	"skipdb/pkg/catalog"
	"skipdb/pkg/config"
	"skipdb/pkg/index"
	"skipdb/pkg/logging"
	"skipdb/pkg/plan"
)

// minSkipCost keeps the log2 estimate positive. Without a floor, cheap
// inputs would produce zero or negative costs and win every comparison
// regardless of merit.
const minSkipCost = 0.01

// skipCost estimates a skip variant from the cost of the path it
// rewrites. The log2 shape reflects that each distinct value is reached
// by one descent instead of a range walk, but it ignores the actual
// number of distinct values, so selective columns are overcharged and
// near-unique columns undercharged.
func skipCost(base float64) float64 {
	return math.Max(minSkipCost, math.Log2(math.Max(base, 1)))
}

// AddSkipScanPaths scans a relation's candidate output paths and adds a
// skip variant for every single-key distinct path whose scan qualifies.
// The set is only ever extended; the original paths stay as fallback and
// cost comparison decides the winner.
func AddSkipScanPaths(settings *config.Settings, cat *catalog.SystemCatalog, ps *plan.PathSet) {
	if settings != nil && !settings.EnableSkipScan {
		return
	}
	log := logging.GetLogger().Named("pathselector")

	for _, p := range ps.Paths() {
		up, ok := p.(*plan.UniquePath)
		if !ok {
			continue
		}
		if up.NumKeys != 1 {
			log.Debug("distinct path declined", zap.Int("num_keys", up.NumKeys))
			continue
		}

		switch sub := up.Sub.(type) {
		case *plan.IndexPath:
			sp := createSkipScanPath(log, cat, sub, up.TotalCost())
			if sp == nil {
				continue
			}
			ps.Add(&plan.UniquePath{Sub: sp, NumKeys: 1, Cost: sp.Cost})

		case *plan.MergeAppendPath:
			ma := createMergeSkipPath(log, cat, sub)
			if ma == nil {
				continue
			}
			ps.Add(&plan.UniquePath{Sub: ma, NumKeys: 1, Cost: skipCost(up.TotalCost())})
		}
	}
}

// createMergeSkipPath rewrites every branch of a sorted merge to a skip
// variant. All branches must qualify: a single ineligible branch would
// break the merged ordering contract, so the rewrite is all or nothing.
func createMergeSkipPath(log *zap.Logger, cat *catalog.SystemCatalog, ma *plan.MergeAppendPath) *plan.MergeAppendPath {
	subs := make([]plan.Path, 0, len(ma.Subs))
	total := 0.0
	for _, sub := range ma.Subs {
		ip, ok := sub.(*plan.IndexPath)
		if !ok {
			log.Debug("merge branch is not an index scan, abandoning rewrite")
			return nil
		}
		sp := createSkipScanPath(log, cat, ip, ip.TotalCost())
		if sp == nil {
			return nil
		}
		subs = append(subs, sp)
		total += sp.Cost
	}
	return &plan.MergeAppendPath{Subs: subs, Cost: total}
}

// createSkipScanPath builds the skip variant of one index path, or nil
// when the scan shape cannot support skipping.
func createSkipScanPath(log *zap.Logger, cat *catalog.SystemCatalog, ip *plan.IndexPath, baseCost float64) *plan.SkipScanPath {
	if ip.OrderBys > 0 {
		log.Debug("index path declined: carries order-by keys",
			zap.String("index", ip.IndexName))
		return nil
	}

	idx, err := cat.GetIndex(ip.IndexName)
	if err != nil {
		log.Warn("index lookup failed, abandoning candidate",
			zap.String("index", ip.IndexName), zap.Error(err))
		return nil
	}
	meta := idx.Meta()

	offset := ip.SortColumnOffset
	if offset < 0 || offset >= meta.NumColumns() {
		log.Debug("index path declined: sort column offset out of range",
			zap.String("index", ip.IndexName), zap.Int("offset", offset))
		return nil
	}

	attr := meta.Columns[offset]
	if attr < 0 {
		// Expression columns have no table attribute to bind the skip
		// clause to.
		log.Debug("index path declined: distinct key is an expression",
			zap.String("index", ip.IndexName))
		return nil
	}

	ctype := meta.ColumnTypes[offset]
	op, err := catalog.OrderingOperator(ctype, meta.Reverse, ip.Dir)
	if err != nil {
		log.Debug("index path declined: no ordering operator",
			zap.String("index", ip.IndexName), zap.Error(err))
		return nil
	}

	col, err := cat.AttributeMeta(ip.Table, attr)
	if err != nil {
		log.Warn("attribute lookup failed, abandoning candidate",
			zap.String("table", ip.Table), zap.Int("attr", attr), zap.Error(err))
		return nil
	}

	return &plan.SkipScanPath{
		Index: ip,
		SkipClause: index.ScanKey{
			// Plan-time form: table attribute number, NULL placeholder
			// value. The materializer translates and the operator
			// rebinds it before every reposition.
			Column: attr,
			Op:     op,
			Flags:  index.KeyIsNull,
		},
		DistinctColumn: offset,
		DistinctByVal:  col.ByVal,
		DistinctTypLen: col.StorageLen,
		Cost:           skipCost(baseCost),
	}
}
