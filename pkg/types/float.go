package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math"
	"strconv"
)

// Float64Field represents a 64-bit floating point field
type Float64Field struct {
	Value float64
}

func NewFloat64Field(value float64) *Float64Field {
	return &Float64Field{Value: value}
}

func (f *Float64Field) Serialize(w io.Writer) error {
	bytes := make([]byte, 8)
	binary.BigEndian.PutUint64(bytes, math.Float64bits(f.Value))
	_, err := w.Write(bytes)
	return err
}

func (f *Float64Field) Compare(op Predicate, other Field) (bool, error) {
	otherField, ok := other.(*Float64Field)
	if !ok {
		return false, nil
	}
	return compareOrdered(f.Value, otherField.Value, op), nil
}

func (f *Float64Field) Type() Type {
	return FloatType
}

func (f *Float64Field) String() string {
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

func (f *Float64Field) Equals(other Field) bool {
	otherField, ok := other.(*Float64Field)
	if !ok {
		return false
	}
	return f.Value == otherField.Value
}

func (f *Float64Field) Hash() (uint32, error) {
	h := fnv.New32a()
	bytes := make([]byte, 8)
	binary.BigEndian.PutUint64(bytes, math.Float64bits(f.Value))
	_, _ = h.Write(bytes)
	return h.Sum32(), nil
}

func (f *Float64Field) Length() uint32 {
	return 8
}

// Copy returns the receiver; floats are pass-by-value.
func (f *Float64Field) Copy() Field {
	return f
}
