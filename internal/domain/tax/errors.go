package tax

import (
	"errors"
	"fmt"
)

var (
	ErrSettingsNotFound    = errors.New("tax settings not found")
	ErrSettingsUnavailable = errors.New("tax settings unavailable")
	ErrProfileNotFound     = errors.New("taxpayer profile not found")
	ErrInvalidInput        = errors.New("invalid calculation input")
	ErrCalculationFailed   = errors.New("tax calculation failed")
	ErrInvalidSettings     = errors.New("invalid tax settings")
)

// ErrorKind classifies a CalculationError.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindCalculation ErrorKind = "calculation"
	KindDependency  ErrorKind = "dependency"
)

// CalculationError is returned when a calculation cannot produce a result.
// The pay period passed in is left as it was before the call.
type CalculationError struct {
	Kind       ErrorKind
	Op         string
	Field      string
	EmployeeID string
	Err        error
}

func (e *CalculationError) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	if e.Field != "" {
		msg += fmt.Sprintf(" on %s", e.Field)
	}
	if e.EmployeeID != "" {
		msg += fmt.Sprintf(" (employee %s)", e.EmployeeID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation CalculationError for a named field.
func NewValidationError(op, field, employeeID string, err error) *CalculationError {
	if err == nil {
		err = ErrInvalidInput
	}
	return &CalculationError{Kind: KindValidation, Op: op, Field: field, EmployeeID: employeeID, Err: err}
}

// NewCalculationError wraps an unrecoverable failure during computation.
func NewCalculationError(op, employeeID string, err error) *CalculationError {
	if err == nil {
		err = ErrCalculationFailed
	}
	return &CalculationError{Kind: KindCalculation, Op: op, EmployeeID: employeeID, Err: err}
}

// NewDependencyError wraps a failure of a store the engine reads from.
func NewDependencyError(op, employeeID string, err error) *CalculationError {
	return &CalculationError{Kind: KindDependency, Op: op, EmployeeID: employeeID, Err: err}
}

// IsKind reports whether err is a CalculationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CalculationError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
