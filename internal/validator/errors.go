package validator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed run. Every kind has its own process exit code.
type ErrorKind int

const (
	KindStdinRead ErrorKind = iota + 1
	KindMalformedInput
	KindNoSegments
	KindInvalidGas
	KindGasSum
	KindSerialize
	KindNoConvergence
	KindInvalidGradientFactors
	KindArchive
)

// Exit codes. 1 is reserved for startup failures outside a run.
const (
	ExitOK                     = 0
	ExitStartup                = 1
	ExitStdinRead              = 2
	ExitMalformedInput         = 3
	ExitNoSegments             = 4
	ExitInvalidGas             = 5
	ExitGasSum                 = 6
	ExitSerialize              = 7
	ExitNoConvergence          = 8
	ExitInvalidGradientFactors = 9
	ExitArchive                = 10
)

var exitCodes = map[ErrorKind]int{
	KindStdinRead:              ExitStdinRead,
	KindMalformedInput:         ExitMalformedInput,
	KindNoSegments:             ExitNoSegments,
	KindInvalidGas:             ExitInvalidGas,
	KindGasSum:                 ExitGasSum,
	KindSerialize:              ExitSerialize,
	KindNoConvergence:          ExitNoConvergence,
	KindInvalidGradientFactors: ExitInvalidGradientFactors,
	KindArchive:                ExitArchive,
}

func (k ErrorKind) String() string {
	switch k {
	case KindStdinRead:
		return "stdin read"
	case KindMalformedInput:
		return "malformed input"
	case KindNoSegments:
		return "no segments"
	case KindInvalidGas:
		return "invalid gas"
	case KindGasSum:
		return "gas fractions exceed 1.0"
	case KindSerialize:
		return "serialization"
	case KindNoConvergence:
		return "no convergence"
	case KindInvalidGradientFactors:
		return "invalid gradient factors"
	case KindArchive:
		return "archive"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a run failure tagged with its kind
type Error struct {
	Kind ErrorKind
	Err  error
}

// NewError wraps err with a kind
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf builds an Error from a format string
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status for the error's kind
func (e *Error) ExitCode() int {
	if code, ok := exitCodes[e.Kind]; ok {
		return code
	}
	return ExitStartup
}

// ExitCode maps any error to a process exit status: 0 for nil, the kind's
// code for an *Error anywhere in the chain, 1 otherwise
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.ExitCode()
	}
	return ExitStartup
}
