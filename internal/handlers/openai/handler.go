// Package openai implements the OpenAI-compatible surface: chat
// completions (buffered and SSE) and the model list, composed from the
// translator, dispatcher, and response cache.
package openai

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"llmgateway/internal/cache"
	"llmgateway/internal/dispatcher"
	"llmgateway/internal/translator"
)

// Handler serves the /v1 endpoints.
type Handler struct {
	dispatcher *dispatcher.Dispatcher
	cache      *cache.Cache
	mapping    translator.ModelMapping
}

// New builds a Handler.
func New(d *dispatcher.Dispatcher, c *cache.Cache, mapping translator.ModelMapping) *Handler {
	return &Handler{dispatcher: d, cache: c, mapping: mapping}
}

// ListModels returns the static model list derived from the configured
// model mapping: every OpenAI-style alias plus the default upstream
// model, sorted for stable output.
func (h *Handler) ListModels(c *gin.Context) {
	names := make([]string, 0, len(h.mapping.Mapping)+1)
	for alias := range h.mapping.Mapping {
		names = append(names, alias)
	}
	if h.mapping.DefaultModel != "" {
		names = append(names, h.mapping.DefaultModel)
	}
	sort.Strings(names)

	now := time.Now().Unix()
	models := make([]gin.H, 0, len(names))
	for _, name := range names {
		models = append(models, gin.H{
			"id":       name,
			"object":   "model",
			"created":  now,
			"owned_by": "llmgateway",
		})
	}
	c.JSON(http.StatusOK, gin.H{"object": "list", "data": models})
}
