package engine

import "fmt"

// ValidationError is returned when a query is rejected before any external
// call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid diagnostic query: %s", e.Reason)
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// SynthesisError wraps a synthesis-service failure on a path that requires
// synthesis. It is fatal to the run: the engine does not substitute
// fabricated diagnoses.
type SynthesisError struct {
	Path string
	Err  error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed on %s path: %v", e.Path, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// IsSynthesis checks if an error is a SynthesisError.
func IsSynthesis(err error) bool {
	_, ok := err.(*SynthesisError)
	return ok
}
