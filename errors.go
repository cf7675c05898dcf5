package goPassword

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goPassword/password"
)

var (
	// ErrInvalidPolicy is wrapped by every [PolicyError].
	ErrInvalidPolicy = errors.New("invalid policy")
	// ErrInvalidInput is wrapped by every [InputError].
	ErrInvalidInput = errors.New("invalid input")
	// ErrPrimitive matches every [PrimitiveError].
	ErrPrimitive = errors.New("hash primitive failure")
	// ErrCancelled is delivered to jobs removed before they started.
	ErrCancelled = errors.New("job cancelled")
	// ErrEngineClosed is returned for submissions after Close. Jobs drained by
	// Close receive an error matching both ErrCancelled and ErrEngineClosed.
	ErrEngineClosed = errors.New("engine closed")
	// ErrEngineNotReady is returned when methods are called on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrUnrecognizedHash is the primitive's signal for hash bytes it cannot
	// parse. The engine turns it into [InvalidUnrecognizedHash].
	ErrUnrecognizedHash = password.ErrUnrecognizedHash
)

// Policy bound names reported in [PolicyError.Bound].
const (
	BoundMemLimitMin = "MEMLIMIT_MIN"
	BoundMemLimitMax = "MEMLIMIT_MAX"
	BoundOpsLimitMin = "OPSLIMIT_MIN"
	BoundOpsLimitMax = "OPSLIMIT_MAX"
)

// PolicyError names the cost field and the bound it violated.
type PolicyError struct {
	Field string
	Bound string
	Value uint64
	Limit uint64
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("invalid policy: %s=%d violates %s (%d)", e.Field, e.Value, e.Bound, e.Limit)
}

func (e *PolicyError) Unwrap() error {
	return ErrInvalidPolicy
}

// InputError reports a password or hash buffer rejected before admission.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Field + ": " + e.Reason
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// PrimitiveError wraps a failure raised by the hashing primitive, including
// recovered panics. Op is "hash", "verify" or "needs_rehash".
type PrimitiveError struct {
	Op  string
	Err error
}

func (e *PrimitiveError) Error() string {
	if e.Err == nil {
		return "hash primitive failure: " + e.Op
	}
	return "hash primitive failure: " + e.Op + ": " + e.Err.Error()
}

func (e *PrimitiveError) Unwrap() error {
	return e.Err
}

func (e *PrimitiveError) Is(target error) bool {
	return target == ErrPrimitive
}

// errClosedDrain is delivered to queued jobs aborted by Engine.Close.
var errClosedDrain = fmt.Errorf("%w: %w", ErrCancelled, ErrEngineClosed)
