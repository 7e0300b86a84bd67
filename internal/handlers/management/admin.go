// Package management implements the admin surface: credential CRUD and
// cache invalidation. Every endpoint sits behind the admin key set.
package management

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"llmgateway/internal/cache"
	"llmgateway/internal/credential"
	"llmgateway/internal/logging"
)

// Handler serves the /admin endpoints.
type Handler struct {
	pool  *credential.Pool
	cache *cache.Cache
}

// New builds a Handler.
func New(pool *credential.Pool, c *cache.Cache) *Handler {
	return &Handler{pool: pool, cache: c}
}

// ListKeys returns all credentials, sanitized to their snapshots.
func (h *Handler) ListKeys(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"keys": h.pool.Snapshot()})
}

// GetKey returns one credential's snapshot.
func (h *Handler) GetKey(c *gin.Context) {
	id := c.Param("id")
	cred, ok := h.pool.Get(id)
	if !ok {
		keyNotFound(c, id)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                   cred.ID,
		"state":                cred.State.String(),
		"consecutive_failures": cred.ConsecutiveFailures,
		"total_requests":       cred.TotalRequests,
		"total_failures":       cred.TotalFailures,
		"last_used_at":         cred.LastUsedAt,
		"cooling_until":        cred.CoolingUntil,
	})
}

type addKeyRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// AddKey registers a new upstream credential from its raw secret. The
// secret is consumed from the request body and never echoed back.
func (h *Handler) AddKey(c *gin.Context) {
	var req addKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Secret) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"message": "secret is required",
			"type":    "validation_error",
			"code":    "validation_error",
		}})
		return
	}
	id := h.pool.AdminAdd(strings.TrimSpace(req.Secret))
	logging.Logger().WithField("credential_id", id).Info("credential added")
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// RemoveKey deletes a credential outright.
func (h *Handler) RemoveKey(c *gin.Context) {
	id := c.Param("id")
	if !h.pool.AdminRemove(id) {
		keyNotFound(c, id)
		return
	}
	logging.Logger().WithField("credential_id", id).Info("credential removed")
	c.JSON(http.StatusOK, gin.H{"removed": id})
}

// EnableKey transitions a credential back to Active.
func (h *Handler) EnableKey(c *gin.Context) {
	h.mutateKey(c, h.pool.AdminEnable, "credential enabled")
}

// DisableKey takes a credential out of rotation until re-enabled.
func (h *Handler) DisableKey(c *gin.Context) {
	h.mutateKey(c, h.pool.AdminDisable, "credential disabled")
}

// ResetKey clears a credential's failure state while keeping its
// lifetime counters.
func (h *Handler) ResetKey(c *gin.Context) {
	h.mutateKey(c, h.pool.AdminReset, "credential reset")
}

func (h *Handler) mutateKey(c *gin.Context, op func(string) bool, logMsg string) {
	id := c.Param("id")
	if !op(id) {
		keyNotFound(c, id)
		return
	}
	logging.Logger().WithField("credential_id", id).Info(logMsg)
	cred, _ := h.pool.Get(id)
	c.JSON(http.StatusOK, gin.H{"id": id, "state": cred.State.String()})
}

// InvalidateCache drops every cached completion.
func (h *Handler) InvalidateCache(c *gin.Context) {
	h.cache.InvalidateAll()
	logging.Logger().Info("response cache invalidated")
	c.JSON(http.StatusOK, gin.H{"invalidated": true})
}

func keyNotFound(c *gin.Context, id string) {
	c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
		"message": "unknown credential " + id,
		"type":    "not_found",
		"code":    "not_found",
	}})
}
