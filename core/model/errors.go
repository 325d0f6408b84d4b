package model

import "fmt"

// ValidationError reports an input field that fails a range or alignment
// check. Inputs are rejected before any optimization work starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
