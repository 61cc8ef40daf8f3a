package tuple

import (
	"fmt"
	"strings"

	"skipdb/pkg/types"
)

// Tuple represents a row of data flowing through the execution engine.
type Tuple struct {
	TupleDesc *TupleDescription // Schema of this tuple
	fields    []types.Field     // The actual field values
	RecordID  int               // Heap slot this tuple came from, -1 if not stored
}

// NewTuple creates a new tuple with the given schema
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
		RecordID:  -1,
	}
}

// SetField stores a value into the ith slot. NULLs are stored as a
// types.NullField carrying the slot's declared type.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}

	expectedType, _ := t.TupleDesc.TypeAtIndex(i)
	if field != nil && field.Type() != expectedType {
		return fmt.Errorf("field type mismatch: expected %v, got %v",
			expectedType, field.Type())
	}

	t.fields[i] = field
	return nil
}

// GetField returns the value of the ith field
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// Clone creates a deep copy of this tuple. Reference-typed fields are
// copied, so the clone stays valid when the source tuple's buffer is reused
// by a scan restart. This is the materialization mechanism operators use to
// pin a produced row.
func (t *Tuple) Clone() (*Tuple, error) {
	newTup := NewTuple(t.TupleDesc)
	newTup.RecordID = t.RecordID

	for i := 0; i < t.TupleDesc.NumFields(); i++ {
		field, err := t.GetField(i)
		if err != nil {
			return nil, fmt.Errorf("failed to get field %d: %w", i, err)
		}

		if field == nil {
			continue
		}
		if err := newTup.SetField(i, field.Copy()); err != nil {
			return nil, fmt.Errorf("failed to copy field %d: %w", i, err)
		}
	}

	return newTup, nil
}

// CopyFrom overwrites this tuple's slots with another tuple's values.
// Both tuples must share an equal schema. Used by operators that hand out
// a single reusable buffer.
func (t *Tuple) CopyFrom(src *Tuple) error {
	if !t.TupleDesc.Equals(src.TupleDesc) {
		return fmt.Errorf("cannot copy between differing schemas")
	}
	copy(t.fields, src.fields)
	t.RecordID = src.RecordID
	return nil
}

// String returns a string representation of this tuple
func (t *Tuple) String() string {
	parts := make([]string, 0, len(t.fields))
	for _, field := range t.fields {
		if field != nil {
			parts = append(parts, field.String())
		} else {
			parts = append(parts, "NULL")
		}
	}
	return strings.Join(parts, "\t")
}
