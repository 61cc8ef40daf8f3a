package tuple

import (
	"fmt"
	"strings"

	"skipdb/pkg/types"
)

// TupleDescription describes the schema of a tuple (like a table schema).
// It contains the types and names of fields in a tuple.
type TupleDescription struct {
	// Types contains the data type of each field in order
	Types []types.Type
	// FieldNames contains the name of each field (optional, may be nil)
	FieldNames []string
}

// NewTupleDesc creates a new TupleDescription given field types and optional
// field names. If fieldNames is nil, fields have no names.
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, fmt.Errorf("must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, fmt.Errorf("field names length (%d) must match field types length (%d)",
				len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{
		Types:      typesCopy,
		FieldNames: namesCopy,
	}, nil
}

// NumFields returns the number of fields in this tuple descriptor.
func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// GetFieldName returns the name of the ith field, or empty string if no
// names were provided.
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}

	if td.FieldNames == nil {
		return "", nil
	}

	return td.FieldNames[i], nil
}

// TypeAtIndex returns the type of the ith field.
func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// IndexOfField returns the position of the named field.
func (td *TupleDescription) IndexOfField(name string) (int, error) {
	for i, n := range td.FieldNames {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no field named %q", name)
}

// Equals checks whether two descriptors have identical field types.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil || len(td.Types) != len(other.Types) {
		return false
	}
	for i, t := range td.Types {
		if other.Types[i] != t {
			return false
		}
	}
	return true
}

func (td *TupleDescription) String() string {
	parts := make([]string, len(td.Types))
	for i, t := range td.Types {
		name := ""
		if td.FieldNames != nil {
			name = td.FieldNames[i]
		}
		parts[i] = fmt.Sprintf("%s(%s)", name, t)
	}
	return strings.Join(parts, ", ")
}
