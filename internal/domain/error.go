package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrConfiguration   = errors.New("invalid or missing configuration")
	ErrProvider        = errors.New("completion provider error")
	ErrBatchFailed     = errors.New("batch job failed")
	ErrReconciliation  = errors.New("batch result reconciliation failed")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("entity not found")
)

// BatchError carries the terminal status and provider detail of a batch
// that did not complete. It unwraps to ErrBatchFailed so callers can match
// with errors.Is without caring about the specific terminal state.
type BatchError struct {
	Status string
	Detail string
}

func (e *BatchError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("batch terminated with status %q", e.Status)
	}
	return fmt.Sprintf("batch terminated with status %q: %s", e.Status, e.Detail)
}

func (e *BatchError) Unwrap() error { return ErrBatchFailed }
