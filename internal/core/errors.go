package core

import "fmt"

// InferenceError is a transport-level failure talking to the inference
// service: unreachable, timed out, non-2xx, or an unreadable body.
type InferenceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *InferenceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// DecodeError means model output could not be turned into the expected shape.
// Raw holds a prefix of the output for diagnostics.
type DecodeError struct {
	What string
	Raw  string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to parse %s: %v\nResponse: %s", e.What, e.Err, e.Raw)
}

func (e *DecodeError) Unwrap() error { return e.Err }
