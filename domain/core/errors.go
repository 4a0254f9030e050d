package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Normalization errors. Only a structurally absent identifier column is
	// unrecoverable; every other input gap is healed with defaults.
	ErrMissingIdentifier = errors.New("missing required column")

	// Inference errors
	ErrModelNotLoaded    = errors.New("model artifact not loaded")
	ErrArityMismatch     = errors.New("feature vector arity mismatch")
	ErrUnsupportedFamily = errors.New("unsupported model family")
	ErrContractDrift     = errors.New("feature contract version mismatch")

	// Persistence errors
	ErrChunkFailed    = errors.New("persistence chunk failed")
	ErrConflictKey    = errors.New("conflict key violation")
	ErrStoreUnhealthy = errors.New("prediction store unavailable")

	// Input errors
	ErrEmptyDataset     = errors.New("dataset contains no rows")
	ErrUnknownDomain    = errors.New("unknown prediction domain")
	ErrUnreadableUpload = errors.New("uploaded file is unreadable")
)

// Error constructors with context
func NewMissingIdentifierError(column string) error {
	return fmt.Errorf("%w: %s", ErrMissingIdentifier, column)
}

func NewArityMismatchError(expected, got int) error {
	return fmt.Errorf("%w: model expects %d features, got %d", ErrArityMismatch, expected, got)
}

func NewContractDriftError(expected, got string) error {
	return fmt.Errorf("%w: artifact built against %q, engineer declares %q", ErrContractDrift, expected, got)
}

func NewChunkError(first, last int, cause error) error {
	return fmt.Errorf("%w: records %d-%d: %v", ErrChunkFailed, first, last, cause)
}

// Error checking helpers
func IsNormalizationError(err error) bool {
	return errors.Is(err, ErrMissingIdentifier)
}

func IsInferenceError(err error) bool {
	return errors.Is(err, ErrModelNotLoaded) ||
		errors.Is(err, ErrArityMismatch) ||
		errors.Is(err, ErrUnsupportedFamily) ||
		errors.Is(err, ErrContractDrift)
}

func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrChunkFailed) ||
		errors.Is(err, ErrConflictKey) ||
		errors.Is(err, ErrStoreUnhealthy)
}
