package execution

// Stage tracks where a distinct-value scan is in its lifecycle. The
// interesting asymmetry is the NULL group: depending on index order the
// NULL group sits before or after all values, so after exhausting one
// side the scan probes once for the other before finishing.
type Stage int

const (
	// StageSearchingFirst means no row has been produced yet; the scan
	// runs unconstrained to find whichever group comes first.
	StageSearchingFirst Stage = iota
	// StageFoundNullOnly means the NULL group was produced but no
	// non-null value yet.
	StageFoundNullOnly
	// StageFoundValueOnly means at least one value was produced but the
	// NULL group was not seen yet.
	StageFoundValueOnly
	// StageFoundBoth means both the NULL group and at least one value
	// were produced; exhaustion is now final.
	StageFoundBoth
	// StageSearchingAdditionalNull means all values are exhausted and
	// the scan is probing once for a NULL group.
	StageSearchingAdditionalNull
	// StageSearchingAdditionalValue means the NULL group was produced
	// and the scan is probing once for the first non-null value.
	StageSearchingAdditionalValue
	// StageDone means the scan has terminated.
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageSearchingFirst:
		return "searching-first"
	case StageFoundNullOnly:
		return "found-null"
	case StageFoundValueOnly:
		return "found-value"
	case StageFoundBoth:
		return "found-both"
	case StageSearchingAdditionalNull:
		return "probing-null"
	case StageSearchingAdditionalValue:
		return "probing-value"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// foundNull reports whether the NULL group has already been produced.
func (s Stage) foundNull() bool {
	return s == StageFoundNullOnly || s == StageFoundBoth || s == StageSearchingAdditionalValue
}

// foundValue reports whether a non-null value has already been produced.
func (s Stage) foundValue() bool {
	return s == StageFoundValueOnly || s == StageFoundBoth || s == StageSearchingAdditionalNull
}

func (s Stage) searchingForNull() bool  { return s == StageSearchingAdditionalNull }
func (s Stage) searchingForValue() bool { return s == StageSearchingAdditionalValue }

// withNullFound returns the stage after producing a NULL-group row. Any
// pending probe is resolved by the find.
func (s Stage) withNullFound() Stage {
	switch s {
	case StageSearchingFirst, StageFoundNullOnly:
		return StageFoundNullOnly
	case StageSearchingAdditionalValue:
		// A NULL showing up while probing for values leaves only the
		// NULL side confirmed.
		return StageFoundNullOnly
	default:
		return StageFoundBoth
	}
}

// withValueFound returns the stage after producing a non-null row.
func (s Stage) withValueFound() Stage {
	switch s {
	case StageSearchingFirst, StageFoundValueOnly:
		return StageFoundValueOnly
	case StageSearchingAdditionalNull:
		return StageFoundValueOnly
	default:
		return StageFoundBoth
	}
}

// exhaustedIsTerminal reports whether running out of rows in the
// current stage finishes the scan. An empty first pass means the whole
// relation is empty; a failed probe means the probed side does not
// exist; finding both sides leaves nothing to look for.
func (s Stage) exhaustedIsTerminal() bool {
	switch s {
	case StageSearchingFirst, StageFoundBoth,
		StageSearchingAdditionalNull, StageSearchingAdditionalValue, StageDone:
		return true
	default:
		return false
	}
}
