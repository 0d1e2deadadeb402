package envoimoinscher

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorDetail is one <error> element of a partner response.
type ErrorDetail struct {
	Code    string
	Message string
}

// APIError is returned when the partner rejects a request, either with a
// non-2xx status or with <error> elements in the XML body.
type APIError struct {
	Operation  string
	StatusCode int
	Details    []ErrorDetail
	Cause      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "envoimoinscher %s", e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	for i, d := range e.Details {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		if d.Code != "" {
			fmt.Fprintf(&b, "%s: %s", d.Code, d.Message)
		} else {
			b.WriteString(d.Message)
		}
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is matches status-derived sentinels and other APIErrors carrying the
// same first error code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthenticationFailed:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrServiceUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code() != "" && e.Code() == t.Code()
}

// Code returns the first partner error code, if any.
func (e *APIError) Code() string {
	if len(e.Details) == 0 {
		return ""
	}
	return e.Details[0].Code
}

// NewAPIError creates an APIError for the given operation.
func NewAPIError(operation string, details ...ErrorDetail) *APIError {
	return &APIError{
		Operation: operation,
		Details:   details,
	}
}

// WithStatusCode adds an HTTP status code to the error.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithCause adds a cause to the error.
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}

var (
	// ErrInvalidReference indicates the order response carried no valid
	// order reference, so the order cannot be considered placed.
	ErrInvalidReference = errors.New("invalid order reference")

	// ErrUnknownReason indicates the shipment reason key is not in the
	// reasons table.
	ErrUnknownReason = errors.New("unknown shipment reason")

	// ErrUnknownPalletCode indicates the pallet code is not in the pallet
	// table.
	ErrUnknownPalletCode = errors.New("unknown pallet code")

	// ErrInvalidPerson indicates a shipper or recipient failed validation.
	ErrInvalidPerson = errors.New("invalid person")

	// ErrInvalidPackage indicates package dimensions or weight are invalid.
	ErrInvalidPackage = errors.New("invalid package")

	// ErrNoOrderInfo indicates a double order was requested before any
	// order was placed with the quotation.
	ErrNoOrderInfo = errors.New("no previous order information")

	// ErrAuthenticationFailed indicates the partner refused the credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrServiceUnavailable indicates the partner answered with a 5xx status.
	ErrServiceUnavailable = errors.New("service unavailable")
)
