// Package dberr provides structured errors for the query engine.
//
// Errors carry a category that tells callers how to react. The planner
// treats Planning errors as "abandon this candidate path, keep the query";
// Internal errors signal a planner/executor contract breach that must never
// occur in correct operation and are not retriable.
package dberr

import (
	"errors"
	"fmt"
)

// Category classifies errors by their nature and appropriate handling.
type Category int

const (
	// CategoryUser represents errors caused by invalid user input.
	CategoryUser Category = iota

	// CategoryPlanning represents resource lookup failures during path
	// generation. The affected candidate is abandoned; the query proceeds
	// on other paths.
	CategoryPlanning

	// CategorySystem represents errors requiring operator intervention,
	// such as unreadable configuration.
	CategorySystem

	// CategoryInternal represents invariant violations: a plan shape
	// reaching execution that planning promised never to produce.
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "USER"
	case CategoryPlanning:
		return "PLANNING"
	case CategorySystem:
		return "SYSTEM"
	case CategoryInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// DBError is a structured engine error.
type DBError struct {
	// Code is a stable identifier for this error type, e.g. "UNSUPPORTED_SCAN_SHAPE".
	Code string

	// Category classifies the error for handling strategy.
	Category Category

	// Message is a human-readable description of what went wrong.
	Message string

	// Component identifies where the error originated, e.g. "SkipScan", "PathSelector".
	Component string

	// Cause is the wrapped underlying error, if any.
	Cause error
}

func (e *DBError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Code, e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Code, e.Component, e.Message)
}

func (e *DBError) Unwrap() error {
	return e.Cause
}

// New creates a DBError with the given classification.
func New(category Category, code, component, message string) *DBError {
	return &DBError{
		Code:      code,
		Category:  category,
		Component: component,
		Message:   message,
	}
}

// Wrap attaches classification to an underlying error.
func Wrap(cause error, category Category, code, component, message string) *DBError {
	return &DBError{
		Code:      code,
		Category:  category,
		Component: component,
		Message:   message,
		Cause:     cause,
	}
}

// Internal creates a contract-violation error. These are fatal for the
// running query and indicate a bug, not a recoverable condition.
func Internal(code, component, message string) *DBError {
	return New(CategoryInternal, code, component, message)
}

// IsCategory reports whether err is a DBError of the given category.
func IsCategory(err error, c Category) bool {
	var dbe *DBError
	if errors.As(err, &dbe) {
		return dbe.Category == c
	}
	return false
}
