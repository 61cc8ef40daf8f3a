package types

import "io"

// NullField is the SQL NULL of a declared type. It takes the place of a
// concrete field value inside a tuple so the slot keeps its schema type.
//
// NULL does not participate in value ordering: Compare is false for every
// predicate, against every operand, including another NULL. Index scans
// that need to locate NULLs match them through explicit search flags, never
// through a comparison operator.
type NullField struct {
	Of Type
}

func NewNullField(of Type) *NullField {
	return &NullField{Of: of}
}

// Serialize writes nothing; NULLs occupy no value storage.
func (f *NullField) Serialize(io.Writer) error {
	return nil
}

func (f *NullField) Compare(Predicate, Field) (bool, error) {
	return false, nil
}

func (f *NullField) Type() Type {
	return f.Of
}

func (f *NullField) String() string {
	return "NULL"
}

// Equals is false even against another NULL, mirroring Compare.
func (f *NullField) Equals(Field) bool {
	return false
}

func (f *NullField) Hash() (uint32, error) {
	return 0, nil
}

func (f *NullField) Length() uint32 {
	return 0
}

func (f *NullField) Copy() Field {
	return f
}
