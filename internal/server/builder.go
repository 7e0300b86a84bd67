// Package server assembles the gin engine: middleware chain, route
// groups for both request surfaces, the admin surface, and the
// observability endpoints.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmgateway/internal/cache"
	"llmgateway/internal/config"
	"llmgateway/internal/credential"
	"llmgateway/internal/dispatcher"
	gh "llmgateway/internal/handlers/gemini"
	"llmgateway/internal/handlers/management"
	oh "llmgateway/internal/handlers/openai"
	mw "llmgateway/internal/middleware"
	"llmgateway/internal/stats"
	"llmgateway/internal/translator"
)

// Dependencies carries the runtime services the engine routes into.
type Dependencies struct {
	Pool       *credential.Pool
	Dispatcher *dispatcher.Dispatcher
	Cache      *cache.Cache
	Stats      *stats.Collector
	Mapping    translator.ModelMapping
}

// BuildEngine constructs the fully-routed engine.
func BuildEngine(cfg *config.FileConfig, deps Dependencies) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(mw.Recovery(), mw.RequestID(), mw.RequestLogger(), mw.Metrics())

	clientAuth := mw.ClientAuth(cfg.ClientKeys)
	adminAuth := mw.AdminAuth(cfg.AdminKeys)

	openaiHandler := oh.New(deps.Dispatcher, deps.Cache, deps.Mapping)
	geminiHandler := gh.New(deps.Dispatcher, deps.Mapping)
	adminHandler := management.New(deps.Pool, deps.Cache)

	healthz := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	engine.GET("/health", healthz)
	engine.GET("/gemini/health", healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1", clientAuth)
	{
		v1.GET("/models", openaiHandler.ListModels)
		v1.POST("/chat/completions", openaiHandler.ChatCompletions)
	}

	v1beta := engine.Group("/gemini/v1beta", clientAuth)
	{
		v1beta.GET("/models", geminiHandler.ListModels)
		v1beta.POST("/models/:modelAction", geminiHandler.ModelAction)
	}

	engine.GET("/stats", clientAuth, func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Stats.Collect())
	})

	admin := engine.Group("/admin", adminAuth)
	{
		admin.GET("/keys", adminHandler.ListKeys)
		admin.POST("/keys", adminHandler.AddKey)
		admin.GET("/keys/:id", adminHandler.GetKey)
		admin.DELETE("/keys/:id", adminHandler.RemoveKey)
		admin.POST("/keys/:id/enable", adminHandler.EnableKey)
		admin.POST("/keys/:id/disable", adminHandler.DisableKey)
		admin.POST("/keys/:id/reset", adminHandler.ResetKey)
		admin.POST("/cache/invalidate", adminHandler.InvalidateCache)
	}

	return engine
}
