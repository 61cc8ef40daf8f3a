package iterator

import "skipdb/pkg/tuple"

// DbIterator defines the contract for all database iterators in the
// execution engine. It is the standard pull-operator protocol: Open
// prepares the operator, HasNext/Next drive it one row at a time, Rewind
// restarts the current generation, Close releases resources.
type DbIterator interface {
	// Open initializes the iterator and prepares it for tuple retrieval.
	// This method must be called before any other iterator operations.
	Open() error

	// HasNext checks if there are more tuples available without consuming
	// them. Provides lookahead and can be called repeatedly without
	// advancing the iterator.
	HasNext() (bool, error)

	// Next retrieves and returns the next tuple, advancing the position.
	// Use HasNext() to check availability before calling Next().
	Next() (*tuple.Tuple, error)

	// Rewind resets the iterator position to the beginning of the data
	// sequence. The iterator must be opened before calling this method.
	Rewind() error

	// Close releases all resources associated with the iterator and marks
	// it as closed. Calling Close() on an already closed iterator is safe.
	Close() error

	// GetTupleDesc returns the schema of tuples produced by this iterator.
	// May be called regardless of iterator state.
	GetTupleDesc() *tuple.TupleDescription
}
