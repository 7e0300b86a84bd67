package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ClassifyHTTP maps an upstream HTTP status and response body to a
// Kind. body may be nil.
func ClassifyHTTP(status int, body []byte) Kind {
	switch {
	case status == 0:
		return KindTransientUpstream
	case status == 401 || status == 403:
		return KindAuthRejected
	case status == 429:
		return KindQuotaExceeded
	case status == 404:
		return KindModelNotFound
	case status >= 500:
		return KindTransientUpstream
	case status == 400:
		if isQuotaBody(body) {
			return KindQuotaExceeded
		}
		return KindValidationError
	case status >= 400:
		return KindValidationError
	default:
		return KindOK
	}
}

// isQuotaBody checks for the upstream's "quota" style error payload,
// which some backends surface as 400 rather than 429.
func isQuotaBody(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	msg := gjson.GetBytes(body, "error.message").String()
	status := gjson.GetBytes(body, "error.status").String()
	low := strings.ToLower(msg + " " + status)
	return strings.Contains(low, "quota") || strings.Contains(low, "resource_exhausted")
}

// ClassifyNetwork maps a transport-level error (no HTTP response at
// all) to a Kind. Context cancellation and deadline expiry are
// distinguished from genuine upstream transience: a client-side
// cancellation must never count against the credential that served the
// attempt.
func ClassifyNetwork(err error) Kind {
	if err == nil {
		return KindOK
	}
	if errors.Is(err, context.Canceled) {
		return KindClientCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindDeadlineExceeded
	}
	// Everything else at the transport level (reset, refused, DNS, EOF)
	// is transient from the gateway's point of view.
	return KindTransientUpstream
}

// IsContentFiltered inspects a successful (2xx) native response body for
// an upstream safety block, which is surfaced as a normal completion with
// finish_reason=content_filter rather than as a retryable failure.
func IsContentFiltered(body []byte) bool {
	reason := gjson.GetBytes(body, "candidates.0.finishReason").String()
	switch strings.ToUpper(reason) {
	case "SAFETY", "RECITATION", "BLOCKLIST":
		return true
	default:
		return false
	}
}
