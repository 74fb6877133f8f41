package model

import "fmt"

// InsufficientDataError signals that a pipeline stage did not have enough
// input to produce a meaningful result. Callers should broaden the period or
// surface "not enough data yet" to the user, not retry unchanged.
type InsufficientDataError struct {
	Op          string
	MinRequired int
	Actual      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data (need %d, got %d)", e.Op, e.MinRequired, e.Actual)
}

// ValidationError reports malformed caller input, rejected before any I/O.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ProviderError wraps an LLM/embedding provider failure that survived the
// retry budget.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("provider %s: %v", e.Op, e.Err) }

func (e *ProviderError) Unwrap() error { return e.Err }
