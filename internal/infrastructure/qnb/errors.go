package qnb

import (
	"fmt"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
)

// AuthError means the gateway answered but produced no usable session, or
// rejected the credentials outright. Terminal for the enclosing operation:
// retrying with the same credentials will not help.
type AuthError struct {
	Service einvoice.ServiceType
	Reason  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("qnb: %s login failed: %s", e.Service, e.Reason)
}

// TransportError wraps a network-level failure (no response, read error).
// Safe to retry with backoff; retry policy belongs to the caller.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("qnb: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GatewayRejection means the service refused the submission: a non-2xx HTTP
// status, a SOAP fault, or an explicit failure marker inside a 200 body.
// Body keeps the raw response verbatim for support escalation.
type GatewayRejection struct {
	StatusCode int // 0 when the rejection came from a 2xx body
	Reason     string
	Body       string
}

func (e *GatewayRejection) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("qnb: gateway rejected request (HTTP %d): %s", e.StatusCode, e.Reason)
	}
	return "qnb: gateway rejected request: " + e.Reason
}

// ValidationError rejects a draft before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("qnb: invalid draft: %s %s", e.Field, e.Reason)
}
