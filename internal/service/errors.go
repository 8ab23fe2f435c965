package service

import (
	"errors"
	"fmt"
)

// ErrStorageDisabled is returned by report lookups when no report store is configured.
var ErrStorageDisabled = errors.New("report storage is disabled")

// ValidationError represents invalid analysis request parameters.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProcessingError represents an unexpected failure while producing an analysis.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
