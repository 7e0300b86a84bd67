// Package errors implements the gateway's internal failure taxonomy and
// its mapping onto client-facing HTTP error bodies. Classification of
// raw upstream outcomes lives in classify.go; the formatted envelope the
// handlers emit lives here.
package errors

import (
	"fmt"
	"net/http"
)

// Kind is the internal failure taxonomy a dispatch attempt is classified
// into. Only AuthRejected, QuotaExceeded and TransientUpstream are
// retryable across credentials.
type Kind string

const (
	KindOK                      Kind = "ok"
	KindValidationError         Kind = "validation_error"
	KindAuthRejected            Kind = "auth_rejected"
	KindQuotaExceeded           Kind = "quota_exceeded"
	KindTransientUpstream       Kind = "transient_upstream"
	KindContentFiltered         Kind = "content_filtered"
	KindModelNotFound           Kind = "model_not_found"
	KindNoHealthyCredential     Kind = "no_healthy_credential"
	KindAllCredentialsExhausted Kind = "upstream_exhausted"
	KindClientCancelled         Kind = "client_cancelled"
	KindDeadlineExceeded        Kind = "deadline_exceeded"
)

// Retryable reports whether the dispatcher should try another credential
// for this kind of failure.
func (k Kind) Retryable() bool {
	switch k {
	case KindAuthRejected, KindQuotaExceeded, KindTransientUpstream:
		return true
	default:
		return false
	}
}

// CoolsCredential reports whether a failure of this kind counts against
// the credential that served it. Terminal kinds don't cool: the
// credential itself wasn't necessarily at fault.
func (k Kind) CoolsCredential() bool {
	return k.Retryable()
}

// GatewayError is the error type carried through the dispatcher and
// surfaced at the handler boundary. It never embeds the credential
// secret, only the id prefix the caller supplies via Credential.
type GatewayError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Upstream   []byte // raw upstream body excerpt, for diagnostics/logging only
	RetryAfter int    // seconds, best-effort hint for 429 responses
}

func (e *GatewayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a GatewayError with the conventional HTTP status for the
// kind.
func New(kind Kind, message string) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, HTTPStatus: statusFor(kind)}
}

// WithUpstream attaches the raw upstream body excerpt, for logs and
// admin diagnostics. ToEnvelope does not include it, so it is never
// sent to the client.
func (e *GatewayError) WithUpstream(body []byte) *GatewayError {
	e.Upstream = body
	return e
}

// WithRetryAfter attaches a Retry-After hint in seconds.
func (e *GatewayError) WithRetryAfter(seconds int) *GatewayError {
	e.RetryAfter = seconds
	return e
}

func statusFor(kind Kind) int {
	switch kind {
	case KindValidationError:
		return http.StatusBadRequest
	case KindAuthRejected:
		return http.StatusUnauthorized
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindTransientUpstream:
		return http.StatusBadGateway
	case KindContentFiltered:
		return http.StatusOK
	case KindModelNotFound:
		return http.StatusNotFound
	case KindNoHealthyCredential:
		return http.StatusTooManyRequests
	case KindAllCredentialsExhausted:
		return http.StatusBadGateway
	case KindDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Envelope is the JSON error body shape used across both surfaces.
type Envelope struct {
	Error EnvelopeBody `json:"error"`
}

type EnvelopeBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// ToEnvelope renders the error as the client-facing JSON body.
func (e *GatewayError) ToEnvelope() Envelope {
	return Envelope{Error: EnvelopeBody{
		Message: e.Message,
		Type:    string(e.Kind),
		Code:    string(e.Kind),
	}}
}
