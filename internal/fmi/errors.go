package fmi

import (
	"fmt"

	"github.com/pkg/errors"
)

// ABIStatus mirrors the FMI 2.0 C ABI's fmi2Status enum (§6.2).
type ABIStatus int

const (
	StatusOK ABIStatus = iota
	StatusWarning
	StatusDiscard
	StatusError
	StatusFatal
	StatusPending
)

func (s ABIStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusDiscard:
		return "discard"
	case StatusError:
		return "error"
	case StatusFatal:
		return "fatal"
	case StatusPending:
		return "pending"
	default:
		return "unknown"
	}
}

// ErrorKind is the closed taxonomy of §7 onto which ABI status is mapped.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindDiscard
	KindWarning
	KindError
	KindFatal
	KindOther
)

// Sentinel errors checked with errors.Is; StatusError wraps one of these.
var (
	ErrDiscard = errors.New("fmi: return discard")
	ErrWarning = errors.New("fmi: return warning")
	ErrFMUError = errors.New("fmi: return error")
	ErrFatal   = errors.New("fmi: return fatal")
)

// StatusError is the error type raised when an ABI status must be surfaced.
type StatusError struct {
	Kind   ErrorKind
	Status ABIStatus
	Op     string
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fmi: %s returned %s", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error { return e.Err }

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindDiscard:
		return ErrDiscard
	case KindWarning:
		return ErrWarning
	case KindError:
		return ErrFMUError
	case KindFatal:
		return ErrFatal
	default:
		return nil
	}
}

// classify maps an ABI status to the §7 taxonomy, honoring the instance's
// exception-on-discard / exception-on-warning policy flags. A nil return
// means "swallow": pending is recorded by the caller but never raises, ok
// never raises, and a policy-disabled discard/warning is dropped silently.
func classify(status ABIStatus, exceptionOnDiscard, exceptionOnWarning bool) error {
	switch status {
	case StatusOK, StatusPending:
		return nil
	case StatusDiscard:
		if !exceptionOnDiscard {
			return nil
		}
		return &StatusError{Kind: KindDiscard, Status: status, Err: ErrDiscard}
	case StatusWarning:
		if !exceptionOnWarning {
			return nil
		}
		return &StatusError{Kind: KindWarning, Status: status, Err: ErrWarning}
	case StatusError:
		return &StatusError{Kind: KindError, Status: status, Err: ErrFMUError}
	case StatusFatal:
		return &StatusError{Kind: KindFatal, Status: status, Err: ErrFatal}
	default:
		return &StatusError{Kind: KindOther, Status: status, Err: fmt.Errorf("fmi: unrecognized status %d", int(status))}
	}
}

// LoadError wraps a failure from archive extraction, XML parsing, shared
// library resolution, symbol binding, or instantiation (§4.3 failure modes).
type LoadError struct {
	Code string
	Op   string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("fmi: load failed (%s) during %s: %v", e.Code, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func newLoadError(code, op string, err error) *LoadError {
	return &LoadError{Code: code, Op: op, Err: errors.Wrapf(err, "fmi load %s", op)}
}

const (
	LoadCodeInvalidArchive = "INVALID_ARCHIVE"
	LoadCodeInvalidXML     = "INVALID_XML"
	LoadCodeMissingLibrary = "MISSING_LIBRARY"
	LoadCodeMissingSymbol  = "MISSING_SYMBOL"
	LoadCodeInstantiate    = "INSTANTIATE_FAILED"
)
