package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	enrichapp "github.com/erp/webhook-bridge/internal/application/enrichment"
	"github.com/erp/webhook-bridge/internal/infrastructure/config"
	"github.com/erp/webhook-bridge/internal/infrastructure/logger"
	"github.com/erp/webhook-bridge/internal/infrastructure/odoo"
	"github.com/erp/webhook-bridge/internal/infrastructure/telemetry"
	"github.com/erp/webhook-bridge/internal/interfaces/http/handler"
	"github.com/erp/webhook-bridge/internal/interfaces/http/middleware"
	"github.com/erp/webhook-bridge/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting webhook bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize OpenTelemetry
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize the upstream ERP client
	odooConfig := odoo.NewConfig(cfg.Odoo.Endpoint, cfg.Odoo.Database, cfg.Odoo.Username, cfg.Odoo.Password)
	odooConfig.TimeoutSeconds = cfg.Odoo.TimeoutSeconds
	odooConfig.SessionTTLSeconds = cfg.Odoo.SessionTTLSeconds
	reader, err := odoo.NewClient(odooConfig, log.Named("odoo"))
	if err != nil {
		log.Fatal("Failed to create Odoo client", zap.Error(err))
	}
	log.Info("Odoo client configured",
		zap.String("endpoint", cfg.Odoo.Endpoint),
		zap.String("database", cfg.Odoo.Database),
		zap.Int("timeout_seconds", cfg.Odoo.TimeoutSeconds),
	)

	// Initialize the enrichment pipeline
	pipeline := enrichapp.NewPipeline(reader,
		enrichapp.NoteStrategy(cfg.Enrich.NoteStrategy),
		log.Named("enrich"),
	)

	// Initialize HTTP handlers
	webhookHandler := handler.NewWebhookHandler(pipeline)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Create request spans
	// 5. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Register routes
	router.NewRouter(engine).
		Register(webhookHandler).
		Register(systemHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
