package iterator

import "skipdb/pkg/tuple"

// Iterate encapsulates the common iteration pattern. It handles the
// HasNext/Next ceremony and skips nil tuples. The processFunc controls the
// flow: return (false, nil) to stop early, (true, nil) to continue,
// (_, error) to stop with an error.
func Iterate(iter DbIterator, processFunc func(*tuple.Tuple) (continueLooping bool, err error)) error {
	for {
		hasNext, err := iter.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			break
		}

		tup, err := iter.Next()
		if err != nil {
			return err
		}
		if tup == nil {
			continue
		}

		shouldContinue, err := processFunc(tup)
		if err != nil {
			return err
		}
		if !shouldContinue {
			break
		}
	}

	return nil
}

// ForEach applies a processing function to each tuple in the iterator.
func ForEach(iter DbIterator, processFunc func(*tuple.Tuple) error) error {
	return Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		err := processFunc(tup)
		return true, err
	})
}

// Collect returns all tuples from the iterator as a slice.
// Note: this consumes the entire iterator.
func Collect(iter DbIterator) ([]*tuple.Tuple, error) {
	var results []*tuple.Tuple

	err := Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		results = append(results, tup)
		return true, nil
	})

	return results, err
}

// FetchNext retrieves one tuple from a child operator, translating
// exhaustion into a nil tuple.
func FetchNext(child DbIterator) (*tuple.Tuple, error) {
	hasNext, err := child.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, nil
	}
	return child.Next()
}
