package dataverse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind tags the origin of an Error.
type ErrorKind int

const (
	// KindTransport covers connection failures, non-2xx statuses and
	// undecodable responses.
	KindTransport ErrorKind = iota
	// KindValidation covers metadata validation failures. These are raised
	// before any request is sent.
	KindValidation
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Validation sentinels, reachable through errors.Is.
var (
	ErrEntityNotFound     = errors.New("entity not found in metadata")
	ErrEntityTypeNotFound = errors.New("entity type not found in metadata")
	ErrPropertyNotFound   = errors.New("property not found in metadata")
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrServiceURLRequired  = errors.New("service URL is required")
	ErrEntityNameRequired  = errors.New("entity name is required")
	ErrRecordIDRequired    = errors.New("record id is required")
	ErrMissingValueArray   = errors.New("response has no value array")
	ErrUnexpectedStatus    = errors.New("unexpected HTTP status")
	ErrMetadataUnavailable = errors.New("metadata validation is not enabled")
)

// APIError is the error payload returned by the Web API:
//
//	{"error": {"code": "0x80040217", "message": "account With Id = ... Does Not Exist"}}
type APIError struct {
	Code    string `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code: %s)", e.Message, e.Code)
}

// ParseAPIError decodes the Web API error envelope. It returns nil when the
// body does not contain one.
func ParseAPIError(data []byte) *APIError {
	var envelope struct {
		Error *APIError `json:"error"`
	}

	err := json.Unmarshal(data, &envelope)
	if err != nil || envelope.Error == nil {
		return nil
	}

	return envelope.Error
}

// Error is the single error type returned by every client operation.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Response   *Response
	API        *APIError
	Err        error
}

// Error implements the error interface. Validation errors render only their
// message; the sentinel stays reachable through errors.Is.
func (e *Error) Error() string {
	msg := e.Message

	if e.Kind == KindValidation {
		return msg
	}

	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}

	if e.API != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.API.Error())
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError builds a validation error wrapping one of the sentinels.
func NewValidationError(sentinel error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

// NewTransportError builds a transport error. resp may be nil when the
// request never produced a response.
func NewTransportError(message string, resp *Response, cause error) *Error {
	e := &Error{
		Kind:     KindTransport,
		Message:  message,
		Response: resp,
		Err:      cause,
	}

	if resp != nil {
		e.StatusCode = resp.StatusCode
		e.API = ParseAPIError(resp.Body)
	}

	return e
}

// IsValidation reports whether err is a metadata validation failure.
func IsValidation(err error) bool {
	dvErr := &Error{}
	if errors.As(err, &dvErr) {
		return dvErr.Kind == KindValidation
	}

	return false
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	dvErr := &Error{}
	if errors.As(err, &dvErr) {
		return dvErr.Kind == KindTransport
	}

	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	dvErr := &Error{}
	if errors.As(err, &dvErr) {
		return dvErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 from the Web API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
