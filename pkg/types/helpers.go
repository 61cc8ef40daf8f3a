package types

import "cmp"

// compareOrdered evaluates op over any ordered Go type.
func compareOrdered[T cmp.Ordered](a, b T, op Predicate) bool {
	switch op {
	case Equals:
		return a == b
	case LessThan:
		return a < b
	case GreaterThan:
		return a > b
	case LessThanOrEqual:
		return a <= b
	case GreaterThanOrEqual:
		return a >= b
	case NotEqual:
		return a != b
	default:
		return false
	}
}
