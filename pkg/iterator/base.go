package iterator

import (
	"fmt"

	"skipdb/pkg/tuple"
)

// ReadNextFunc is the function signature for reading the next tuple from an
// iterator. It returns nil with no error when the source is exhausted.
type ReadNextFunc func() (*tuple.Tuple, error)

// BaseIterator implements the caching logic and state management shared by
// all iterator implementations: it caches one tuple of lookahead for
// HasNext and delegates actual row production to a readNext function.
type BaseIterator struct {
	nextTuple    *tuple.Tuple // Cached next tuple for lookahead operations
	opened       bool         // Flag indicating if the iterator has been opened
	readNextFunc ReadNextFunc // Function to read the next tuple from the underlying source
}

// NewBaseIterator creates a new base iterator with the given readNext
// function. The iterator starts closed and must be opened before use.
func NewBaseIterator(readNextFunc ReadNextFunc) *BaseIterator {
	return &BaseIterator{
		readNextFunc: readNextFunc,
	}
}

// HasNext checks if there is a next tuple available without consuming it.
func (it *BaseIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, fmt.Errorf("iterator not opened")
	}

	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return false, err
		}
	}
	return it.nextTuple != nil, nil
}

// Next returns the next tuple and advances the iterator position.
func (it *BaseIterator) Next() (*tuple.Tuple, error) {
	if !it.opened {
		return nil, fmt.Errorf("iterator not opened")
	}

	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return nil, err
		}
		if it.nextTuple == nil {
			return nil, fmt.Errorf("no more tuples")
		}
	}

	result := it.nextTuple
	it.nextTuple = nil
	return result, nil
}

// Close releases the cached tuple and marks the iterator closed.
func (it *BaseIterator) Close() error {
	it.nextTuple = nil
	it.opened = false
	return nil
}

// MarkOpened marks the iterator as opened and ready for use.
func (it *BaseIterator) MarkOpened() {
	it.opened = true
	it.nextTuple = nil
}

// ClearCache drops any cached lookahead tuple, so the next HasNext/Next
// call reaches the readNext function again. Used by Rewind implementations.
func (it *BaseIterator) ClearCache() {
	it.nextTuple = nil
}

// Opened reports whether the iterator is currently open.
func (it *BaseIterator) Opened() bool {
	return it.opened
}
