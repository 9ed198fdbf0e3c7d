package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrFragmentTooShort = errors.New("deletion fragment is too short to identify a single memory")

	// Not found errors
	ErrProjectNotFound = errors.New("project not found")
	ErrMemoryNotFound  = errors.New("memory not found")
	ErrNoMemories      = errors.New("project has no memories")

	// Access control errors
	ErrAccessDenied = errors.New("access denied")

	// Auth errors
	ErrInvalidToken = errors.New("invalid or expired token")
)
