// Package errors defines the error taxonomy of the dashboard client.
//
// Three kinds of failure exist:
//   - ResolutionError: a displayed item could not be mapped to an identifier
//     before submission.
//   - ValidationError: the action was refused locally (non-positive quantity,
//     missing file, role or status gating). No remote call was made.
//   - RemoteCallError: the network or the service failed a call.
//
// Resolution and validation errors are reported straight back to the user.
// Remote errors on reads are logged and the previous snapshot is kept; on
// writes they are surfaced and local state stays untouched.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions so callers need only this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Sentinel errors
var (
	// ErrUnresolvable indicates a product reference matched nothing.
	ErrUnresolvable = New("reference cannot be resolved")
	// ErrInvalidQuantity indicates a non-positive order quantity.
	ErrInvalidQuantity = New("quantity must be positive")
	// ErrMissingFile indicates an analysis was requested without a document.
	ErrMissingFile = New("no file selected")
	// ErrInvalidScenario indicates a negative what-if parameter.
	ErrInvalidScenario = New("invalid scenario parameters")
	// ErrNotPermitted indicates the current role may not perform the action.
	ErrNotPermitted = New("action not permitted for role")
	// ErrInvalidTransition indicates the order is not in a state that allows the action.
	ErrInvalidTransition = New("order status does not allow this action")
	// ErrUnknownOrder indicates the order is not in the last loaded snapshot.
	ErrUnknownOrder = New("order not found")
	// ErrRemote is matched by every RemoteCallError.
	ErrRemote = New("remote call failed")
)

// ResolutionError reports that a display item could not be mapped to an id.
type ResolutionError struct {
	Query string
}

// NewResolutionError creates a ResolutionError for the given query
func NewResolutionError(query string) *ResolutionError {
	return &ResolutionError{Query: query}
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q to a known product", e.Query)
}

// Unwrap returns ErrUnresolvable so errors.Is matches the sentinel.
func (e *ResolutionError) Unwrap() error {
	return ErrUnresolvable
}

// ValidationError reports an action refused before any remote call.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// NewValidationError creates a ValidationError wrapping one of the sentinels
func NewValidationError(field, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed")
	if e.Field != "" {
		sb.WriteString(" for ")
		sb.WriteString(e.Field)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	} else if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RemoteCallError reports a failed call to the remote service.
type RemoteCallError struct {
	// Op names the remote operation, e.g. "list orders".
	Op string
	// StatusCode is the HTTP status, or 0 when no response arrived.
	StatusCode int
	// Detail is the raw error detail returned by the service, if any.
	Detail string
	// Err is the underlying transport or decoding error, if any.
	Err error
}

// NewRemoteCallError creates a RemoteCallError for a transport failure
func NewRemoteCallError(op string, err error) *RemoteCallError {
	return &RemoteCallError{Op: op, Err: err}
}

// NewRemoteStatusError creates a RemoteCallError for a non-success response
func NewRemoteStatusError(op string, statusCode int, detail string) *RemoteCallError {
	return &RemoteCallError{Op: op, StatusCode: statusCode, Detail: detail}
}

func (e *RemoteCallError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	sb.WriteString(" failed")
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	} else if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Is matches ErrRemote for every RemoteCallError.
func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemote
}

// IsRemote reports whether err came from a remote call
func IsRemote(err error) bool {
	return Is(err, ErrRemote)
}

// IsUserFacing reports whether err was raised by a local check and can be
// shown to the user as-is.
func IsUserFacing(err error) bool {
	var resolution *ResolutionError
	var validation *ValidationError
	return As(err, &resolution) || As(err, &validation)
}

// UserMessage returns the text to show for err. The service's raw detail
// wins when present.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteCallError
	if As(err, &remote) && remote.Detail != "" {
		return remote.Detail
	}
	return err.Error()
}
