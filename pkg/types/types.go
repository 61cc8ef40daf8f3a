package types

// Type identifies the data type of a field value.
type Type int

const (
	IntType Type = iota
	FloatType
	StringType
	BoolType
)

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case FloatType:
		return "FLOAT_TYPE"
	case StringType:
		return "STRING_TYPE"
	case BoolType:
		return "BOOL_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// PassByValue reports whether values of this type are stored inline.
// Reference types (strings) must be copied when an operator wants to
// keep a value beyond the lifetime of the tuple it came from.
func (t Type) PassByValue() bool {
	switch t {
	case IntType, FloatType, BoolType:
		return true
	default:
		return false
	}
}

// StorageSize returns the serialized size in bytes for values of this type.
func (t Type) StorageSize() uint32 {
	switch t {
	case IntType, FloatType:
		return 8
	case BoolType:
		return 1
	case StringType:
		return 4 + StringMaxSize
	default:
		return 0
	}
}
