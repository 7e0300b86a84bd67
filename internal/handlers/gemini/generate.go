package gemini

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"llmgateway/internal/handlers/common"
)

// generateContent proxies a buffered native call. The body is validated
// just enough to reject garbage before a credential is consumed, then
// forwarded verbatim; the upstream response comes back verbatim too.
func (h *Handler) generateContent(c *gin.Context, model string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.WriteValidationError(c, "could not read request body")
		return
	}
	if verr := validateNativeRequest(body); verr != "" {
		common.WriteValidationError(c, verr)
		return
	}

	resolved := h.mapping.Resolve(model)
	result, derr := h.dispatcher.Execute(c.Request.Context(), "/v1beta/models/"+resolved+":generateContent", body)
	if derr != nil {
		common.WriteError(c, derr)
		return
	}
	common.JSONRaw(c, http.StatusOK, result.Body)
}

// validateNativeRequest returns a non-empty message when the request is
// malformed.
func validateNativeRequest(body []byte) string {
	if !gjson.ValidBytes(body) {
		return "request body is not valid JSON"
	}
	contents := gjson.GetBytes(body, "contents")
	if !contents.Exists() || !contents.IsArray() {
		return "contents is required and must be an array"
	}
	if len(contents.Array()) == 0 {
		return "contents must not be empty"
	}
	return ""
}
