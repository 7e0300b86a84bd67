// Package common holds the response helpers shared by both handler
// surfaces: error envelopes and SSE framing.
package common

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"llmgateway/internal/errors"
)

// WriteError renders a GatewayError as the JSON error envelope with its
// mapped HTTP status, attaching a Retry-After header when the error
// carries a hint.
func WriteError(c *gin.Context, e *errors.GatewayError) {
	if e.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	c.JSON(e.HTTPStatus, e.ToEnvelope())
}

// WriteValidationError is the shorthand for a 400 with a message.
func WriteValidationError(c *gin.Context, message string) {
	WriteError(c, errors.New(errors.KindValidationError, message))
}

// JSONRaw writes pre-serialized JSON bytes with the given status.
func JSONRaw(c *gin.Context, status int, body []byte) {
	c.Data(status, "application/json", body)
}
