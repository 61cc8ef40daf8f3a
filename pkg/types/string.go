package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"strings"
)

// StringMaxSize defines the default maximum size for string fields in bytes.
const StringMaxSize = 256

// StringField represents a variable-length string field type.
// Strings are the only reference type in the engine: operators that keep a
// string value past the producing tuple's lifetime must take a Copy.
type StringField struct {
	Value   string
	MaxSize int
}

// NewStringField creates a new StringField with the specified value and
// maximum size. A value longer than maxSize is truncated to fit.
func NewStringField(value string, maxSize int) *StringField {
	if len(value) > maxSize {
		value = value[:maxSize]
	}

	return &StringField{
		Value:   value,
		MaxSize: maxSize,
	}
}

// Compare performs a lexicographic comparison against another StringField.
func (s *StringField) Compare(op Predicate, other Field) (bool, error) {
	otherField, ok := other.(*StringField)
	if !ok {
		return false, nil
	}
	return compareOrdered(s.Value, otherField.Value, op), nil
}

// Serialize writes the string in binary format: 4 bytes of length
// (big-endian), the string bytes, then padding up to MaxSize.
func (s *StringField) Serialize(w io.Writer) error {
	length := min(len(s.Value), s.MaxSize)

	lengthBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthBytes, uint32(length)) // #nosec G115

	if _, err := w.Write(lengthBytes); err != nil {
		return err
	}

	if _, err := w.Write([]byte(s.Value[:length])); err != nil {
		return err
	}

	padding := make([]byte, s.MaxSize-length)
	_, err := w.Write(padding)
	return err
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

func (s *StringField) Equals(other Field) bool {
	otherField, ok := other.(*StringField)
	if !ok {
		return false
	}
	return s.Value == otherField.Value && s.MaxSize == otherField.MaxSize
}

func (s *StringField) Hash() (uint32, error) {
	h := fnv.New32a()
	h.Write([]byte(s.Value))
	return h.Sum32(), nil
}

func (s *StringField) Length() uint32 {
	return 4 + StringMaxSize
}

// Copy returns a StringField whose backing bytes are independent of the
// receiver's, so mutating or dropping the source tuple cannot invalidate it.
func (s *StringField) Copy() Field {
	return &StringField{
		Value:   strings.Clone(s.Value),
		MaxSize: s.MaxSize,
	}
}
