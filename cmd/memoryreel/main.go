package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/config"
	dbRedis "github.com/soycharroup/memoryreel/internal/db/redis"
	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/provider"
	logpkg "github.com/soycharroup/memoryreel/internal/logger"
	"github.com/soycharroup/memoryreel/internal/metrics"
	analyticsrepo "github.com/soycharroup/memoryreel/internal/repository/analytics"
	contentrepo "github.com/soycharroup/memoryreel/internal/repository/content"
	"github.com/soycharroup/memoryreel/internal/repository/querycache"
	chiTransport "github.com/soycharroup/memoryreel/internal/transport/chi"
	openaiProvider "github.com/soycharroup/memoryreel/internal/transport/openai"
	analysisuc "github.com/soycharroup/memoryreel/internal/usecase/analysis"
	healthuc "github.com/soycharroup/memoryreel/internal/usecase/health"
	searchuc "github.com/soycharroup/memoryreel/internal/usecase/search"
	"github.com/soycharroup/memoryreel/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting memoryreel API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterAnalysisMetrics()
	metrics.RegisterSearchMetrics()

	// Build provider registry — composition root.
	// Config order defines registration order and failover tie-break priority.
	registry := analysisuc.NewRegistry()
	probers := make(map[provider.Kind]healthuc.Prober, len(cfg.Analysis.Providers))
	kinds := make([]provider.Kind, 0, len(cfg.Analysis.Providers))

	for _, pc := range cfg.Analysis.Providers {
		caps := make([]domain.Capability, 0, len(pc.Capabilities))
		for _, c := range pc.Capabilities {
			caps = append(caps, domain.Capability(c))
		}
		prov, err := provider.New(provider.Kind(pc.Kind), caps)
		if err != nil {
			logger.Fatal("Invalid provider config", zap.String("kind", pc.Kind), zap.Error(err))
		}

		analyzer := openaiProvider.NewAnalyzer(&openaiProvider.Config{
			APIKey:   pc.APIKey,
			BaseURL:  pc.BaseURL,
			Model:    pc.Model,
			Provider: pc.Kind,
			Logger:   logger,
		})
		if err := registry.Register(prov, analyzer); err != nil {
			logger.Fatal("Failed to register provider", zap.String("kind", pc.Kind), zap.Error(err))
		}
		probers[prov.Kind()] = analyzer
		kinds = append(kinds, prov.Kind())

		logger.Info("Provider registered",
			zap.String("kind", pc.Kind),
			zap.String("model", pc.Model),
			zap.Strings("capabilities", pc.Capabilities),
		)
	}

	// Health store and background monitor. The monitor is the only writer
	// of health records; the orchestrator only feeds outcome counters.
	healthStore := healthuc.NewStore(kinds)
	monitor := healthuc.NewMonitor(
		healthStore, probers,
		time.Duration(cfg.Health.IntervalSec)*time.Second,
		time.Duration(cfg.Health.ProbeTimeoutSec)*time.Second,
		logger,
	)

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go monitor.Run(monitorCtx)

	// Failover orchestrator
	analysisSvc := analysisuc.New(
		registry, healthStore,
		cfg.Analysis.ConfidenceThreshold,
		time.Duration(cfg.Analysis.AttemptTimeoutSec)*time.Second,
		logger,
	)

	// Search stack: cache, content lookup, analytics, coordinator
	cache := querycache.New(
		store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.Search.CacheTTLSec)*time.Second,
		logger,
	)
	contentRepo := contentrepo.New(store, cfg.Storage.KeyPrefix, cfg.Search.IndexName)
	analyticsSink := analyticsrepo.New(store, cfg.Storage.KeyPrefix)

	searchSvc := searchuc.New(cache, analysisSvc, contentRepo, analyticsSink, logger)

	// Health service
	healthSvc := healthuc.New(store, healthStore)

	// Create chi server
	server := chiTransport.NewServer(
		searchSvc, analysisSvc, healthSvc,
		time.Duration(cfg.Search.DeadlineSec)*time.Second,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stopMonitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
