// Package gemini implements the native pass-through surface: buffered
// generateContent, streamed streamGenerateContent, and the native model
// list. Request and response bodies travel verbatim; only the
// credential and retry machinery sit between client and upstream.
package gemini

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"llmgateway/internal/dispatcher"
	"llmgateway/internal/translator"
)

// Handler serves the /gemini/v1beta endpoints.
type Handler struct {
	dispatcher *dispatcher.Dispatcher
	mapping    translator.ModelMapping
}

// New builds a Handler.
func New(d *dispatcher.Dispatcher, mapping translator.ModelMapping) *Handler {
	return &Handler{dispatcher: d, mapping: mapping}
}

// ListModels returns the native model list: the distinct upstream
// models the mapping can resolve to.
func (h *Handler) ListModels(c *gin.Context) {
	seen := map[string]struct{}{}
	for _, upstreamName := range h.mapping.Mapping {
		seen[upstreamName] = struct{}{}
	}
	if h.mapping.DefaultModel != "" {
		seen[h.mapping.DefaultModel] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	models := make([]gin.H, 0, len(names))
	for _, name := range names {
		models = append(models, gin.H{
			"name":                       "models/" + name,
			"displayName":                name,
			"supportedGenerationMethods": []string{"generateContent", "streamGenerateContent"},
		})
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// ModelAction dispatches POST /models/{model}:{action}. A colon inside
// a path segment is not a separator for the router, so the whole
// segment arrives as one parameter and is split here.
func (h *Handler) ModelAction(c *gin.Context) {
	raw := c.Param("modelAction")
	idx := strings.LastIndex(raw, ":")
	if idx <= 0 || idx == len(raw)-1 {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"message": "expected models/{model}:{action}",
			"type":    "validation_error",
			"code":    "validation_error",
		}})
		return
	}
	model, action := raw[:idx], raw[idx+1:]

	switch action {
	case "generateContent":
		h.generateContent(c, model)
	case "streamGenerateContent":
		h.streamGenerateContent(c, model)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"message": "unknown action " + action,
			"type":    "validation_error",
			"code":    "validation_error",
		}})
	}
}
