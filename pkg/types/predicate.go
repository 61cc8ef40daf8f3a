package types

// Predicate is a comparison operator applied between two field values.
type Predicate int

const (
	Equals Predicate = iota
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	NotEqual
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="

	case LessThan:
		return "<"

	case GreaterThan:
		return ">"

	case LessThanOrEqual:
		return "<="

	case GreaterThanOrEqual:
		return ">="

	case NotEqual:
		return "!="

	default:
		return "UNKNOWN"
	}
}

// Commute returns the predicate with its operand order flipped,
// so a Commute(b) holds exactly when b p a holds.
func (p Predicate) Commute() Predicate {
	switch p {
	case LessThan:
		return GreaterThan
	case GreaterThan:
		return LessThan
	case LessThanOrEqual:
		return GreaterThanOrEqual
	case GreaterThanOrEqual:
		return LessThanOrEqual
	default:
		return p
	}
}
