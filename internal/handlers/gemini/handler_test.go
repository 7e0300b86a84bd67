package gemini

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"llmgateway/internal/translator"
)

func actionTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(nil, translator.ModelMapping{DefaultModel: "gemini-2.5-pro"})
	engine := gin.New()
	engine.POST("/models/:modelAction", h.ModelAction)
	engine.GET("/models", h.ListModels)
	return engine
}

func postAction(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"contents":[{"parts":[{"text":"x"}]}]}`))
	engine.ServeHTTP(w, req)
	return w
}

func TestModelActionRejectsMissingColon(t *testing.T) {
	engine := actionTestEngine()
	w := postAction(engine, "/models/gemini-2.5-pro")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestModelActionRejectsUnknownAction(t *testing.T) {
	engine := actionTestEngine()
	w := postAction(engine, "/models/gemini-2.5-pro:countTokens")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "countTokens")
}

func TestModelActionRejectsEmptyAction(t *testing.T) {
	engine := actionTestEngine()
	w := postAction(engine, "/models/gemini-2.5-pro:")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidateNativeRequest(t *testing.T) {
	require.NotEmpty(t, validateNativeRequest([]byte(`garbage`)))
	require.NotEmpty(t, validateNativeRequest([]byte(`{}`)))
	require.NotEmpty(t, validateNativeRequest([]byte(`{"contents":[]}`)))
	require.Empty(t, validateNativeRequest([]byte(`{"contents":[{"parts":[{"text":"hi"}]}]}`)))
}

func TestListModelsDedupes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(nil, translator.ModelMapping{
		Mapping: map[string]string{
			"gpt-4":         "gemini-2.5-pro",
			"gpt-4o":        "gemini-2.5-pro",
			"gpt-3.5-turbo": "gemini-2.5-flash",
		},
		DefaultModel: "gemini-2.5-pro",
	})
	engine := gin.New()
	engine.GET("/models", h.ListModels)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	require.Equal(t, http.StatusOK, w.Code)
	// Three aliases resolve to two distinct upstream models.
	require.Equal(t, 2, strings.Count(w.Body.String(), `"displayName"`))
}
