package types

import "io"

// Field is a single typed value stored in a tuple.
//
// Comparison semantics follow SQL ordering: ordering predicates relate two
// non-NULL values of the same type; a NULL never compares true against
// anything, including another NULL. Callers that need NULL-aware matching
// (IS NULL / IS NOT NULL) must check IsNull before comparing.
type Field interface {
	Serialize(w io.Writer) error

	// Compare evaluates "this op other". Comparing against a NULL or a
	// value of a different type yields false, never an error.
	Compare(op Predicate, other Field) (bool, error)

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() (uint32, error)

	// Length returns the serialized size of this value in bytes.
	Length() uint32

	// Copy returns a field that shares no storage with the receiver.
	// Pass-by-value types may return the receiver itself.
	Copy() Field
}

// IsNull reports whether f holds the SQL NULL of its declared type.
// A nil Field is treated as NULL as well.
func IsNull(f Field) bool {
	if f == nil {
		return true
	}
	_, ok := f.(*NullField)
	return ok
}
