package execution

import (
	"fmt"

	"go.uber.org/zap"

	"skipdb/pkg/dberr"
	"skipdb/pkg/index"
	"skipdb/pkg/iterator"
	"skipdb/pkg/tuple"
	"skipdb/pkg/types"
)

// SkipScan returns one row per distinct value of the leading sort
// column of its inner ordered scan. Instead of reading every row and
// deduplicating, it repositions the inner cursor past the current value
// after each result, so the work done is proportional to the number of
// distinct values rather than the number of rows.
//
// The first condition on the inner scan is the skip bound. It is
// removed for the initial unconstrained probe, then re-bound before
// every subsequent reposition: a strict comparison against the previous
// value, or a NULL-side search when one side of the column is still
// unexplored.
type SkipScan struct {
	base  *iterator.BaseIterator
	ctx   *ExecContext
	inner OrderedScan
	log   *zap.Logger

	skipKey        index.ScanKey
	skipKeyPos     int
	skipKeyRemoved bool

	stage      Stage
	prevValue  types.Field
	prevIsNull bool
	prevOwned  bool

	distinctAttr   int
	distinctByVal  bool
	distinctTypLen uint32
}

// NewSkipScan wraps inner, producing distinct values of the column at
// output position distinctAttr. byVal and typLen describe the column's
// storage so previous values can be captured with the right ownership.
func NewSkipScan(ctx *ExecContext, inner OrderedScan, distinctAttr int,
	byVal bool, typLen uint32) (*SkipScan, error) {
	if ctx == nil {
		return nil, fmt.Errorf("skip scan requires an execution context")
	}
	if inner == nil {
		return nil, fmt.Errorf("skip scan requires an inner ordered scan")
	}
	if distinctAttr < 0 || distinctAttr >= inner.GetTupleDesc().NumFields() {
		return nil, fmt.Errorf("distinct column %d out of range for inner schema", distinctAttr)
	}
	ss := &SkipScan{
		ctx:            ctx,
		inner:          inner,
		log:            ctx.Log.Named("skipscan"),
		distinctAttr:   distinctAttr,
		distinctByVal:  byVal,
		distinctTypLen: typLen,
	}
	ss.base = iterator.NewBaseIterator(ss.readNext)
	return ss, nil
}

func (ss *SkipScan) Open() error {
	if n := ss.inner.OrderByKeyCount(); n > 0 {
		return dberr.Internal("ORDER_BY_KEYS_UNSUPPORTED", "SkipScan",
			fmt.Sprintf("cannot skip over a scan with %d order-by keys", n))
	}
	conds := ss.inner.Conditions()
	if len(conds) == 0 {
		return dberr.Internal("MISSING_SKIP_BOUND", "SkipScan",
			"inner scan carries no skip bound")
	}
	ss.skipKey = conds[0]
	ss.skipKeyPos = 0
	ss.fixupKeyOrder(conds)

	ss.stage = StageSearchingFirst
	ss.dropPrevValue()
	ss.prevIsNull = false
	ss.skipKeyRemoved = false

	if err := ss.inner.Open(); err != nil {
		return err
	}
	ss.base.MarkOpened()
	return nil
}

// fixupKeyOrder keeps conditions sorted by column. The skip bound is
// spliced in at the front at plan time, but with a composite index it
// may have to sit after equality bounds on earlier columns. Its final
// slot is remembered so removal and re-insertion stay cheap.
func (ss *SkipScan) fixupKeyOrder(conds []index.ScanKey) {
	pos := 0
	for i := 1; i < len(conds); i++ {
		if conds[i].Column < ss.skipKey.Column {
			pos = i
		} else {
			break
		}
	}
	if pos > 0 {
		copy(conds[0:pos], conds[1:pos+1])
		conds[pos] = ss.skipKey
		ss.inner.SetConditions(conds)
	}
	ss.skipKeyPos = pos
}

func (ss *SkipScan) readNext() (*tuple.Tuple, error) {
	for {
		if ss.stage == StageDone {
			return nil, nil
		}

		if ss.stage == StageSearchingFirst {
			// Initial probe: run without the skip bound so whichever
			// group sorts first is found.
			if !ss.skipKeyRemoved {
				ss.removeSkipKey()
			}
			if err := ss.inner.BeginScan(); err != nil {
				return nil, err
			}
		} else {
			ss.readdSkipKeyIfNeeded()
			if err := ss.populateSkipKey(); err != nil {
				return nil, err
			}
			if err := ss.inner.BeginScan(); err != nil {
				return nil, err
			}
		}

		row, err := iterator.FetchNext(ss.inner)
		if err != nil {
			return nil, err
		}
		if row != nil {
			// Repositioning invalidates buffer-backed rows, so every
			// result is materialized before the bound moves on.
			mat, err := row.Clone()
			if err != nil {
				return nil, err
			}
			if err := ss.captureDistinctValue(mat); err != nil {
				return nil, err
			}
			return mat, nil
		}

		if ss.stage.exhaustedIsTerminal() {
			ss.log.Debug("scan finished", zap.Stringer("stage", ss.stage))
			ss.stage = StageDone
			return nil, nil
		}
		// One side of the column is exhausted; probe once for the other.
		if !ss.stage.foundNull() {
			ss.stage = StageSearchingAdditionalNull
		} else {
			ss.stage = StageSearchingAdditionalValue
		}
		ss.inner.ClearReachedEnd()
		ss.log.Debug("probing other side", zap.Stringer("stage", ss.stage))
	}
}

// captureDistinctValue records the produced row's distinct column as
// the bound for the next reposition and advances the stage.
func (ss *SkipScan) captureDistinctValue(row *tuple.Tuple) error {
	f, err := row.GetField(ss.distinctAttr)
	if err != nil {
		return err
	}
	ss.dropPrevValue()
	if types.IsNull(f) {
		ss.prevIsNull = true
		ss.prevValue = nil
		ss.stage = ss.stage.withNullFound()
		return nil
	}
	ss.prevIsNull = false
	if ss.distinctByVal {
		ss.prevValue = f
	} else {
		cp := f.Copy()
		ss.ctx.Arena.Hold(cp)
		ss.prevValue = cp
		ss.prevOwned = true
	}
	ss.stage = ss.stage.withValueFound()
	return nil
}

func (ss *SkipScan) dropPrevValue() {
	if ss.prevOwned && ss.prevValue != nil {
		ss.ctx.Arena.Drop(ss.prevValue)
	}
	ss.prevOwned = false
	ss.prevValue = nil
}

// populateSkipKey rewrites the skip bound in place for the next
// reposition.
func (ss *SkipScan) populateSkipKey() error {
	conds := ss.inner.Conditions()
	if ss.skipKeyPos >= len(conds) {
		return dberr.Internal("SKIP_BOUND_LOST", "SkipScan",
			"skip bound slot missing from inner conditions")
	}
	k := &conds[ss.skipKeyPos]
	switch {
	case ss.stage.searchingForNull():
		k.Flags = index.KeySearchNull | index.KeyIsNull
		k.Value = nil
	case ss.stage.searchingForValue():
		k.Flags = index.KeySearchNotNull | index.KeyIsNull
		k.Value = nil
	case ss.prevIsNull:
		// The NULL group was just produced and both sides are known.
		// A bare NULL bound matches nothing, ending this pass without
		// touching the index.
		k.Flags = index.KeyIsNull
		k.Value = nil
	default:
		k.Flags = 0
		k.Value = ss.prevValue
	}
	ss.inner.SetConditions(conds)
	return nil
}

func (ss *SkipScan) removeSkipKey() {
	conds := ss.inner.Conditions()
	trimmed := make([]index.ScanKey, 0, len(conds)-1)
	trimmed = append(trimmed, conds[:ss.skipKeyPos]...)
	trimmed = append(trimmed, conds[ss.skipKeyPos+1:]...)
	ss.inner.SetConditions(trimmed)
	ss.skipKeyRemoved = true
}

// readdSkipKeyIfNeeded restores the skip bound at its recorded slot
// after the unconstrained first probe. Reports whether the condition
// list changed.
func (ss *SkipScan) readdSkipKeyIfNeeded() bool {
	if !ss.skipKeyRemoved {
		return false
	}
	conds := ss.inner.Conditions()
	restored := make([]index.ScanKey, 0, len(conds)+1)
	restored = append(restored, conds[:ss.skipKeyPos]...)
	restored = append(restored, ss.skipKey)
	restored = append(restored, conds[ss.skipKeyPos:]...)
	ss.inner.SetConditions(restored)
	ss.skipKeyRemoved = false
	return true
}

func (ss *SkipScan) HasNext() (bool, error) { return ss.base.HasNext() }
func (ss *SkipScan) Next() (*tuple.Tuple, error) {
	return ss.base.Next()
}

// Rewind restores the skip bound if the scan never got past the first
// probe, resets the stage machine, and restarts the inner scan.
func (ss *SkipScan) Rewind() error {
	ss.readdSkipKeyIfNeeded()
	ss.stage = StageSearchingFirst
	ss.dropPrevValue()
	ss.prevIsNull = false
	if err := ss.inner.Rewind(); err != nil {
		return err
	}
	ss.base.ClearCache()
	return nil
}

func (ss *SkipScan) Close() error {
	ss.dropPrevValue()
	if err := ss.inner.Close(); err != nil {
		return err
	}
	ss.base.Close()
	return nil
}

func (ss *SkipScan) GetTupleDesc() *tuple.TupleDescription {
	return ss.inner.GetTupleDesc()
}

// Stage exposes the current lifecycle stage for tests and diagnostics.
func (ss *SkipScan) Stage() Stage { return ss.stage }
