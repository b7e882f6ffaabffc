package dispatch

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind classifies a dispatch failure.
type Kind string

const (
	// KindInvalidArgument means the caller supplied an incomplete request.
	// It is detected before any provider call and is never transient.
	KindInvalidArgument Kind = "invalid-argument"
	// KindInternal means the provider rejected or failed the send.
	KindInternal Kind = "internal"
)

const (
	msgMissingParameters = "Missing required parameters"
	msgSendFailedPrefix  = "Failed to send notification: "
)

var (
	// ErrReceiptNotFound is returned by a ReceiptStore when no receipt exists for a request ID.
	ErrReceiptNotFound = errors.New("receipt not found")
)

// Error is the only error type returned by Dispatcher.Dispatch.
type Error struct {
	Kind    Kind
	Message string
	// Err is the provider error for KindInternal, nil otherwise.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument builds the caller-error classification.
func InvalidArgument(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

// Internal wraps a provider failure, prefixing its text verbatim.
func Internal(providerErr error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf("%s%s", msgSendFailedPrefix, providerErr.Error()),
		Err:     providerErr,
	}
}

// KindOf extracts the Kind from err. Unclassified non-nil errors are treated as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Code maps the kind onto the canonical gRPC status code.
func (k Kind) Code() codes.Code {
	switch k {
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindInternal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// Status returns the callable-protocol status string (e.g. "INVALID_ARGUMENT").
func (k Kind) Status() string {
	switch k {
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// HTTPStatus returns the HTTP status code a callable endpoint responds with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
