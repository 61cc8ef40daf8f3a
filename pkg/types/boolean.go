package types

import (
	"hash/fnv"
	"io"
	"strconv"
)

// BoolField represents a boolean field. Booleans support equality but carry
// no ordering operator family, which makes indexes on them ineligible for
// order-dependent optimizations.
type BoolField struct {
	Value bool
}

func NewBoolField(value bool) *BoolField {
	return &BoolField{Value: value}
}

func (f *BoolField) Serialize(w io.Writer) error {
	b := []byte{0}
	if f.Value {
		b[0] = 1
	}
	_, err := w.Write(b)
	return err
}

func (f *BoolField) Compare(op Predicate, other Field) (bool, error) {
	otherField, ok := other.(*BoolField)
	if !ok {
		return false, nil
	}

	switch op {
	case Equals:
		return f.Value == otherField.Value, nil
	case NotEqual:
		return f.Value != otherField.Value, nil
	default:
		return false, nil
	}
}

func (f *BoolField) Type() Type {
	return BoolType
}

func (f *BoolField) String() string {
	return strconv.FormatBool(f.Value)
}

func (f *BoolField) Equals(other Field) bool {
	otherField, ok := other.(*BoolField)
	if !ok {
		return false
	}
	return f.Value == otherField.Value
}

func (f *BoolField) Hash() (uint32, error) {
	h := fnv.New32a()
	if f.Value {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
	return h.Sum32(), nil
}

func (f *BoolField) Length() uint32 {
	return 1
}

func (f *BoolField) Copy() Field {
	return f
}
