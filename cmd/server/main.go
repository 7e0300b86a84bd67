package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"llmgateway/internal/cache"
	"llmgateway/internal/config"
	"llmgateway/internal/credential"
	"llmgateway/internal/dispatcher"
	"llmgateway/internal/logging"
	"llmgateway/internal/server"
	"llmgateway/internal/stats"
	"llmgateway/internal/storage"
	"llmgateway/internal/tracing"
	"llmgateway/internal/translator"
	"llmgateway/internal/upstream"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	logging.Setup(logging.Options{Debug: cfg.Debug, LogFile: cfg.LogFile})

	traceShutdown, err := tracing.Init(context.Background(), version)
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}

	secrets, err := credential.LoadSecrets(cfg.Credentials, cfg.CredentialsDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load credentials")
	}

	pool := credential.NewPool(secrets, credential.Options{
		MaxFailuresBeforeCool: cfg.MaxFailuresBeforeCool,
		Cooling: credential.CoolingPeriods{
			Auth:      time.Duration(cfg.CoolingPeriod.AuthS) * time.Second,
			Quota:     time.Duration(cfg.CoolingPeriod.QuotaS) * time.Second,
			Transient: time.Duration(cfg.CoolingPeriod.TransientS) * time.Second,
		},
	})
	log.WithField("credentials", pool.Len()).Info("credential pool initialized")

	backend, err := buildBackend(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize state backend")
	}
	syncer := storage.NewSyncer(pool, backend)
	if err := syncer.Restore(context.Background()); err != nil {
		log.WithError(err).Warn("could not restore credential state, starting cold")
	}
	syncer.Start(30 * time.Second)

	client, err := upstream.New(upstream.Config{
		BaseURL:          cfg.UpstreamBaseURL,
		OutboundProxyURL: cfg.OutboundProxyURL,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build upstream client")
	}

	disp := dispatcher.New(pool, client, dispatcher.Options{
		MaxAttempts:       cfg.MaxAttempts,
		PerAttemptTimeout: time.Duration(cfg.PerAttemptTimeoutS) * time.Second,
		OverallDeadline:   time.Duration(cfg.OverallDeadlineS) * time.Second,
	})

	respCache, err := cache.New(cfg.CacheMaxSize, time.Duration(cfg.CacheTTLS)*time.Second, cfg.CacheEnabled)
	if err != nil {
		log.WithError(err).Fatal("failed to build response cache")
	}

	mapping := translator.ModelMapping{
		Mapping:      cfg.ModelMapping.Mapping,
		DefaultModel: cfg.ModelMapping.DefaultModel,
	}

	engine := server.BuildEngine(cfg, server.Dependencies{
		Pool:       pool,
		Dispatcher: disp,
		Cache:      respCache,
		Stats:      stats.NewCollector(pool, respCache),
		Mapping:    mapping,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	var watcher *config.Watcher
	if *configPath != "" {
		watcher, err = config.WatchFile(*configPath, func(next *config.FileConfig, werr error) {
			if werr != nil {
				return
			}
			log.Info("configuration file changed; restart to apply structural changes")
		})
		if err != nil {
			log.WithError(err).Warn("could not watch configuration file")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("forced shutdown")
	}
	if watcher != nil {
		watcher.Close()
	}
	syncer.Stop()
	backend.Close()
	if traceShutdown != nil {
		if err := traceShutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("failed to shutdown tracing")
		}
	}
}

func buildBackend(cfg *config.FileConfig) (storage.Backend, error) {
	if cfg.StateBackend == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return storage.NewRedisBackend(ctx, storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	}
	return storage.NewMemoryBackend(), nil
}
