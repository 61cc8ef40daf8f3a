package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"strconv"
)

// IntField represents a 64-bit signed integer field
type IntField struct {
	Value int64
}

func NewIntField(value int64) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	bytes := make([]byte, 8)
	binary.BigEndian.PutUint64(bytes, uint64(f.Value)) // #nosec G115
	_, err := w.Write(bytes)
	return err
}

func (f *IntField) Compare(op Predicate, other Field) (bool, error) {
	otherField, ok := other.(*IntField)
	if !ok {
		return false, nil
	}
	return compareOrdered(f.Value, otherField.Value, op), nil
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(f.Value, 10)
}

func (f *IntField) Equals(other Field) bool {
	otherField, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherField.Value
}

func (f *IntField) Hash() (uint32, error) {
	h := fnv.New32a()
	bytes := make([]byte, 8)
	binary.BigEndian.PutUint64(bytes, uint64(f.Value)) // #nosec G115
	_, _ = h.Write(bytes)
	return h.Sum32(), nil
}

func (f *IntField) Length() uint32 {
	return 8
}

// Copy returns the receiver; integers are pass-by-value.
func (f *IntField) Copy() Field {
	return f
}
