// Package aqerrors defines the error taxonomy shared across the enhancement
// engine: invalid input/parameters, cooperative cancellation, degraded
// stages, cache inconsistency, and resource exhaustion.
package aqerrors

import (
	"errors"
	"fmt"
)

// Code classifies an Error into one of the categories the engine
// distinguishes when deciding whether to surface, log, or swallow it.
type Code int

const (
	// InvalidInput marks a malformed image: wrong rank, non-finite pixels,
	// zero size, or an unsupported channel count.
	InvalidInput Code = iota
	// InvalidParameter marks an unknown stage, unknown parameter name, or
	// a value that cannot be clamped into its declared bounds.
	InvalidParameter
	// Cancelled marks a cooperative abort via context cancellation.
	Cancelled
	// StageFailure marks a single stage's Apply or AutoTune returning an
	// error; for Apply the engine passes the intermediate image through
	// unchanged.
	StageFailure
	// CacheInconsistency marks a fingerprint mismatch detected at cache
	// install time; the result is discarded, not raised to the caller.
	CacheInconsistency
	// ResourceExhaustion marks an allocation failure.
	ResourceExhaustion
)

func (c Code) String() string {
	switch c {
	case InvalidInput:
		return "InvalidInput"
	case InvalidParameter:
		return "InvalidParameter"
	case Cancelled:
		return "Cancelled"
	case StageFailure:
		return "StageFailure"
	case CacheInconsistency:
		return "CacheInconsistency"
	case ResourceExhaustion:
		return "ResourceExhaustion"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying failure with the operation that produced it and
// the taxonomy code the engine uses for recovery decisions.
type Error struct {
	Code  Code
	Op    string // e.g. "stages.udcp.Apply", "config.Load"
	Stage string // stage id when the error is stage-scoped, else ""
	Err   error
}

func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s [%s/%s]: %v", e.Code, e.Op, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Code, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no stage context.
func New(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// NewStage builds an Error scoped to a single stage.
func NewStage(code Code, op, stage string, err error) *Error {
	return &Error{Code: code, Op: op, Stage: stage, Err: err}
}

// Is reports whether err carries the given Code, unwrapping as needed.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
