package model

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired signals that no valid token exists and no refresh
// is possible. The caller must restart the authorization-code flow.
var ErrAuthenticationRequired = errors.New("authentication required: no valid or refreshable token")

// ErrInvalidState signals that an authorization callback carried an unknown,
// expired or already-consumed state value.
var ErrInvalidState = errors.New("invalid or expired authorization state")

// ExchangeReason tags why a token exchange or refresh yielded no token.
type ExchangeReason string

const (
	// ReasonTransport covers network and HTTP-level failures.
	ReasonTransport ExchangeReason = "transport"
	// ReasonMalformedResponse covers token responses that are not valid JSON.
	ReasonMalformedResponse ExchangeReason = "malformed_response"
	// ReasonRejected covers non-2xx answers from the token endpoint.
	ReasonRejected ExchangeReason = "rejected"
)

// ExchangeError represents a failed token exchange or refresh. The Reason tag
// lets callers tell "retry later" (transport) apart from "re-authenticate"
// (rejected) without string matching.
type ExchangeError struct {
	Grant  string
	Reason ExchangeReason
	Status int
	Cause  error
}

func (e *ExchangeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("token %s failed (%s, HTTP %d)", e.Grant, e.Reason, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("token %s failed (%s): %v", e.Grant, e.Reason, e.Cause)
	}
	return fmt.Sprintf("token %s failed (%s)", e.Grant, e.Reason)
}

func (e *ExchangeError) Unwrap() error {
	return e.Cause
}

// NewExchangeError creates a new exchange error
func NewExchangeError(grant string, reason ExchangeReason, status int, cause error) *ExchangeError {
	return &ExchangeError{
		Grant:  grant,
		Reason: reason,
		Status: status,
		Cause:  cause,
	}
}

// IdentityError signals that no user identity could be resolved for a token
// store operation. This is a caller-facing contract: supply a user name or a
// token carrying an identity claim.
type IdentityError struct {
	Message string
}

func (e *IdentityError) Error() string {
	return "cannot resolve user identity: " + e.Message
}

// NewIdentityError creates a new identity error
func NewIdentityError(message string) *IdentityError {
	return &IdentityError{Message: message}
}

// ParseError represents XML parsing failures with document context
type ParseError struct {
	Op      string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Op, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(op, message string, cause error) *ParseError {
	return &ParseError{
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// APIError represents a rejection reported by the e-Factura REST API, carrying
// the remote error text verbatim.
type APIError struct {
	Endpoint string
	Status   int
	Remote   string
}

func (e *APIError) Error() string {
	if e.Remote != "" {
		return fmt.Sprintf("anaf %s failed (HTTP %d): %s", e.Endpoint, e.Status, e.Remote)
	}
	return fmt.Sprintf("anaf %s failed (HTTP %d)", e.Endpoint, e.Status)
}

// NewAPIError creates a new API error
func NewAPIError(endpoint string, status int, remote string) *APIError {
	return &APIError{
		Endpoint: endpoint,
		Status:   status,
		Remote:   remote,
	}
}
