package gen

import (
	"errors"
	"fmt"
)

// ErrGenerationFailed indicates a code generation failure.
var ErrGenerationFailed = errors.New("gen: code generation failed")

// GenerationError reports the table whose file could not be generated.
type GenerationError struct {
	Table string
	Cause error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("gen: generate %s: %v", e.Table, e.Cause)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}
