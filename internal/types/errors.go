package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidateSlots is returned by slot selection when the candidate
	// list is empty.
	ErrNoCandidateSlots = errors.New("no candidate slots")

	// ErrParseFailure is returned when intent extraction produced no usable
	// structure.
	ErrParseFailure = errors.New("intent parse failure")

	// ErrInvalidRequest is returned when a parsed request fails validation
	// (malformed or out-of-order dates, non-positive duration).
	ErrInvalidRequest = errors.New("invalid event request")

	// ErrInsufficientData is returned when a plan summary is requested but
	// one of the expected accumulated results is missing.
	ErrInsufficientData = errors.New("insufficient data for plan summary")

	// ErrCancelled is returned when the user cancels a running session.
	// It marks a terminal state, not a fault.
	ErrCancelled = errors.New("session cancelled")
)

// UnknownToolError is returned when the reasoning service names a tool
// that is not present in the registry.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}

// ToolExecutionError wraps a fault raised while executing a tool, keeping
// the offending tool name and raw arguments for reproduction.
type ToolExecutionError struct {
	Tool string
	Args map[string]any
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed with args %v: %v", e.Tool, e.Args, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
