package openai

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"llmgateway/internal/cache"
	"llmgateway/internal/errors"
	"llmgateway/internal/handlers/common"
	"llmgateway/internal/translator"
)

// ChatCompletions handles POST /v1/chat/completions, buffered or
// streamed depending on the request's stream flag. Validation failures
// return before any credential is consumed.
func (h *Handler) ChatCompletions(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.WriteValidationError(c, "could not read request body")
		return
	}
	if verr := validateChatRequest(body); verr != "" {
		common.WriteValidationError(c, verr)
		return
	}

	requested := gjson.GetBytes(body, "model").String()
	resolved := h.mapping.Resolve(requested)

	if gjson.GetBytes(body, "stream").Bool() {
		h.streamChat(c, body, requested, resolved)
		return
	}

	if cache.Eligible(body) {
		fp := cache.Fingerprint(resolved, body)
		artifact, _, cerr := h.cache.GetOrCompute(fp, func() ([]byte, error) {
			out, derr := h.completeOnce(c, body, requested, resolved)
			if derr != nil {
				return nil, derr
			}
			return out, nil
		})
		if cerr != nil {
			writeDispatchError(c, cerr)
			return
		}
		common.JSONRaw(c, http.StatusOK, artifact)
		return
	}

	artifact, derr := h.completeOnce(c, body, requested, resolved)
	if derr != nil {
		common.WriteError(c, derr)
		return
	}
	common.JSONRaw(c, http.StatusOK, artifact)
}

// completeOnce translates the request, dispatches it, and translates
// the response back, producing the final OpenAI artifact bytes.
func (h *Handler) completeOnce(c *gin.Context, body []byte, requested, resolved string) ([]byte, *errors.GatewayError) {
	native := translator.ToNativeRequest(body)
	result, derr := h.dispatcher.Execute(c.Request.Context(), generatePath(resolved), native)
	if derr != nil {
		return nil, derr
	}
	return translator.ToOpenAIResponse(result.Body, requested, time.Now().Unix()), nil
}

// writeDispatchError unwraps the error a cached compute returned. The
// single-flight group erases the concrete type, so recover it before
// formatting; anything else is an internal error.
func writeDispatchError(c *gin.Context, err error) {
	if gerr, ok := err.(*errors.GatewayError); ok {
		common.WriteError(c, gerr)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"message": err.Error(), "type": "internal_error", "code": "internal_error"},
	})
}

// validateChatRequest returns a non-empty message when the request is
// malformed.
func validateChatRequest(body []byte) string {
	if !gjson.ValidBytes(body) {
		return "request body is not valid JSON"
	}
	messages := gjson.GetBytes(body, "messages")
	if !messages.Exists() || !messages.IsArray() {
		return "messages is required and must be an array"
	}
	if len(messages.Array()) == 0 {
		return "messages must not be empty"
	}
	for _, m := range messages.Array() {
		switch m.Get("role").String() {
		case "system", "user", "assistant", "tool":
		default:
			return "message role must be one of system, user, assistant, tool"
		}
	}
	return ""
}

func generatePath(model string) string {
	return "/v1beta/models/" + model + ":generateContent"
}

func streamPath(model string) string {
	return "/v1beta/models/" + model + ":streamGenerateContent?alt=sse"
}
