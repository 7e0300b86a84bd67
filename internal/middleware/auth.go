// Package middleware holds the gin middleware chain shared by both
// request surfaces: authentication, request ids, panic recovery,
// request logging, and Prometheus instrumentation.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"llmgateway/internal/errors"
)

// extractKey pulls the presented API key from the request, accepting
// either Authorization: Bearer <key> or X-API-Key: <key>.
func extractKey(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			return strings.TrimSpace(auth[7:])
		}
		return strings.TrimSpace(auth)
	}
	return strings.TrimSpace(c.GetHeader("X-API-Key"))
}

// keyAllowed compares the presented key against every accepted key in
// constant time. All comparisons always run so the position of the
// matching key isn't observable through timing either.
func keyAllowed(presented string, accepted []string) bool {
	if presented == "" {
		return false
	}
	ok := 0
	for _, k := range accepted {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(k)) == 1 {
			ok = 1
		}
	}
	return ok == 1
}

// ClientAuth guards the client-facing endpoints.
func ClientAuth(keys []string) gin.HandlerFunc {
	return requireKey(keys)
}

// AdminAuth guards the admin endpoints. Admin keys only; a client key
// presented here is rejected.
func AdminAuth(keys []string) gin.HandlerFunc {
	return requireKey(keys)
}

func requireKey(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !keyAllowed(extractKey(c), keys) {
			e := errors.New(errors.KindAuthRejected, "invalid or missing API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, e.ToEnvelope())
			return
		}
		c.Next()
	}
}
