package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals invalid parameters; fatal for the build step that hit it.
	ErrConfiguration = errors.New("configuration error")
	// ErrVectorDimMismatch signals a vector whose length differs from the index dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingService signals an embedding provider failure.
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrGenerationService signals a chat completion provider failure.
	ErrGenerationService = errors.New("generation service error")
	// ErrTimeout signals an external call that exceeded its deadline.
	ErrTimeout = errors.New("external call timed out")
	// ErrDataConsistency signals persisted artifacts that disagree with each other.
	ErrDataConsistency = errors.New("data consistency error")
	// ErrInvalidRequest signals a malformed request from a caller.
	ErrInvalidRequest = errors.New("invalid request")
)

// DimMismatchError reports a dimension mismatch. It matches both ErrVectorDimMismatch
// and ErrConfiguration.
type DimMismatchError struct {
	Want int
	Got  int
}

func (e *DimMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrVectorDimMismatch.Error(), e.Want, e.Got)
}

func (e *DimMismatchError) Unwrap() []error {
	return []error{ErrVectorDimMismatch, ErrConfiguration}
}

// NewDimMismatch creates a dimension mismatch error.
func NewDimMismatch(want, got int) error {
	return &DimMismatchError{Want: want, Got: got}
}
