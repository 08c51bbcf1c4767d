package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure the agent can report.
// Callers rendering errors switch over the kind; AllErrorKinds lists them all.
type ErrorKind int

const (
	KindTransport       ErrorKind = iota // network/HTTP failure, generic
	KindNotFound                         // unknown product, checkout or order
	KindNoActiveSession                  // operation requires a checkout that doesn't exist
	KindNotReady                         // completion attempted before the merchant marked ready
	KindValidation                       // field values rejected
	KindVersion                          // protocol version mismatch
	KindBadRequest                       // merchant rejected the request as malformed
)

// AllErrorKinds lists every ErrorKind.
var AllErrorKinds = []ErrorKind{
	KindTransport,
	KindNotFound,
	KindNoActiveSession,
	KindNotReady,
	KindValidation,
	KindVersion,
	KindBadRequest,
}

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindNotFound:
		return "not_found"
	case KindNoActiveSession:
		return "no_active_session"
	case KindNotReady:
		return "not_ready"
	case KindValidation:
		return "validation"
	case KindVersion:
		return "version"
	case KindBadRequest:
		return "bad_request"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinel errors, one per kind. Use errors.Is() to check against these.
var (
	ErrUpstream           = errors.New("upstream error")
	ErrNotFound           = errors.New("not found")
	ErrNoActiveSession    = errors.New("no active checkout session")
	ErrNotReady           = errors.New("checkout not ready")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrVersionUnsupported = errors.New("protocol version unsupported")
	ErrBadRequest         = errors.New("bad request")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindNoActiveSession:
		return ErrNoActiveSession
	case KindNotReady:
		return ErrNotReady
	case KindValidation:
		return ErrInvalidRequest
	case KindVersion:
		return ErrVersionUnsupported
	case KindBadRequest:
		return ErrBadRequest
	default:
		return ErrUpstream
	}
}

// FieldError is a single rejected field reported by the merchant.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured error returned by the gateway and the checkout engine.
// Implements error and unwraps to both the kind's sentinel and the cause.
type Error struct {
	Kind       ErrorKind
	Code       string
	Message    string
	StatusCode int   // HTTP status from the merchant, 0 for local errors
	Err        error // underlying cause, may be nil

	// NotReady
	CheckoutStatus CheckoutStatus
	// Validation
	FieldErrors []FieldError
	// Version
	ClientVersion   string
	MerchantVersion string
	// Transport: raw response body, if any
	Body string
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.FieldErrors) > 0 {
		parts := make([]string, 0, len(e.FieldErrors))
		for _, fe := range e.FieldErrors {
			parts = append(parts, fe.Field+": "+fe.Message)
		}
		msg = strings.Join(parts, "; ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind.sentinel(), e.Err}
	}
	return []error{e.Kind.sentinel()}
}

// KindOf classifies any error. Errors that are not *Error count as transport failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// NewNotFoundError creates an error for a missing product, checkout or order.
func NewNotFoundError(resource string) *Error {
	return &Error{
		Kind:       KindNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
	}
}

// NewNoActiveSessionError is returned when an operation needs a checkout and none exists.
func NewNoActiveSessionError() *Error {
	return &Error{
		Kind:    KindNoActiveSession,
		Code:    "NO_ACTIVE_SESSION",
		Message: "no active checkout session",
	}
}

// NewNotReadyError is returned when completion is attempted in the wrong status.
func NewNotReadyError(status CheckoutStatus) *Error {
	return &Error{
		Kind:           KindNotReady,
		Code:           "NOT_READY",
		Message:        fmt.Sprintf("checkout not ready for completion, status %q", status),
		CheckoutStatus: status,
	}
}

// NewValidationError creates an error for a single invalid input field.
func NewValidationError(field, reason string) *Error {
	return &Error{
		Kind:        KindValidation,
		Code:        "VALIDATION_ERROR",
		Message:     fmt.Sprintf("invalid %s: %s", field, reason),
		FieldErrors: []FieldError{{Field: field, Message: reason}},
	}
}

// NewFieldValidationError creates a validation error carrying the merchant's field list.
func NewFieldValidationError(message string, fields []FieldError) *Error {
	return &Error{
		Kind:        KindValidation,
		Code:        "VALIDATION_ERROR",
		Message:     message,
		StatusCode:  422,
		FieldErrors: fields,
	}
}

// NewVersionError is returned when the agent speaks a newer protocol than the merchant.
func NewVersionError(clientVersion, merchantVersion string) *Error {
	return &Error{
		Kind: KindVersion,
		Code: "VERSION_UNSUPPORTED",
		Message: fmt.Sprintf("UCP version %s is not supported, merchant implements version %s",
			clientVersion, merchantVersion),
		ClientVersion:   clientVersion,
		MerchantVersion: merchantVersion,
	}
}

// NewBadRequestError creates an error for a request the merchant refused as malformed.
func NewBadRequestError(message string) *Error {
	return &Error{
		Kind:       KindBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: 400,
	}
}

// NewTransportError creates an error for network failures and unexpected statuses.
// statusCode is 0 when no response was received.
func NewTransportError(statusCode int, body string, err error) *Error {
	msg := "merchant request failed"
	if statusCode != 0 {
		msg = fmt.Sprintf("merchant returned status %d", statusCode)
	}
	return &Error{
		Kind:       KindTransport,
		Code:       "TRANSPORT_ERROR",
		Message:    msg,
		StatusCode: statusCode,
		Body:       body,
		Err:        err,
	}
}
