package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/xmsync/internal/catalog"
)

// PlanError reports a failure to plan one entity.
type PlanError struct {
	// Code identifies the error category.
	Code PlanErrorCode

	Entity catalog.Entity

	// Path is the input file involved, if any.
	Path string

	Err error
}

// PlanErrorCode categorizes planning errors.
type PlanErrorCode string

const (
	// ErrCodeInputFailed indicates the entity's input file could not be read.
	ErrCodeInputFailed PlanErrorCode = "INPUT_FAILED"

	// ErrCodeCancelled indicates the run was cancelled between entities.
	ErrCodeCancelled PlanErrorCode = "CANCELLED"
)

// Error implements the error interface.
func (e *PlanError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Code, e.Entity, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *PlanError) Unwrap() error {
	return e.Err
}

// IsInputError returns true if err is an input read failure.
// Uses errors.As to handle wrapped errors.
func IsInputError(err error) bool {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeInputFailed
	}
	return false
}
