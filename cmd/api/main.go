package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.temporal.io/sdk/client"

	awsadapter "github.com/photoflow/photoflow-api/internal/adapter/driven/aws"
	pgadapter "github.com/photoflow/photoflow-api/internal/adapter/driven/postgres"
	temporaladapter "github.com/photoflow/photoflow-api/internal/adapter/driven/temporal"
	httpadapter "github.com/photoflow/photoflow-api/internal/adapter/driving/http"
	"github.com/photoflow/photoflow-api/internal/audit"
	"github.com/photoflow/photoflow-api/internal/config"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/internal/core/service"
	"github.com/photoflow/photoflow-api/pkg/apperror"
	"github.com/photoflow/photoflow-api/pkg/database"
	"github.com/photoflow/photoflow-api/pkg/observability"
	"github.com/photoflow/photoflow-api/pkg/temporal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	if err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "photoflow-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		Enabled:        cfg.Tracing.Enabled,
		SampleRatio:    cfg.Tracing.SampleRatio,
	}); err != nil {
		slog.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	// Database connection
	pool, err := database.NewPool(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		ApplicationName: "photoflow-api",
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// AWS clients
	clients, err := awsadapter.LoadClients(ctx, cfg.AWSRegion)
	if err != nil {
		slog.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics("photoflow", prometheus.DefaultRegisterer)
	auditLogger := audit.NewLogger("photoflow-api")

	// Services
	tokens := service.NewTokenAuthenticator(
		awsadapter.NewParameterStore(clients.SSM),
		service.TokenConfig{
			ParameterName:  cfg.Auth.ParameterName,
			FallbackSecret: cfg.Auth.SecretKey,
		},
		auditLogger,
	)
	owners := service.NewOwnershipVerifier(pgadapter.NewOwnershipStore(pool), auditLogger)

	transport, functions := awsadapter.Workers(clients, cfg)
	invoker := service.NewWorkerInvoker(transport, service.InvokerConfig{
		Functions:            functions,
		LegacyFailureMarkers: cfg.Workers.LegacyFailureMarkers,
	})

	// Managed engine is optional; without it every action runs directly
	var engine port.WorkflowEngine
	var poller *service.ExecutionPoller
	var temporalClient client.Client
	if cfg.EngineConfigured() {
		temporalClient, err = temporal.Dial(temporal.Config{
			HostPort:  cfg.Engine.HostPort,
			Namespace: cfg.Engine.Namespace,
			TaskQueue: cfg.Engine.TaskQueue,
		})
		if err != nil {
			slog.Warn("workflow engine unavailable, using direct path only", "error", err)
		} else {
			e := temporaladapter.NewWorkflowEngine(temporalClient, cfg.Engine.TaskQueue)
			engine = e
			poller = service.NewExecutionPoller(e, cfg.Engine.PollInterval)
		}
	}

	orchestrator := service.NewWorkflowOrchestrator(tokens, owners, invoker, engine, poller, metrics, service.OrchestratorConfig{
		UploadDefinition:  cfg.Engine.UploadWorkflow,
		DeleteDefinition:  cfg.Engine.DeleteWorkflow,
		PollTimeout:       cfg.Engine.PollTimeout,
		UploadConcurrency: cfg.Engine.UploadConcurrency,
		DeleteConcurrency: cfg.Engine.DeleteConcurrency,
	})

	// Handlers
	errorHandler := apperror.NewHandler(observability.Logger)
	photoHandler := httpadapter.NewPhotoHandler(orchestrator, errorHandler)
	tokenHandler := httpadapter.NewTokenHandler(tokens, errorHandler)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout()))
	r.Use(observability.HTTPMiddleware)
	r.Use(metrics.HTTPMetricsMiddleware(observability.RoutePattern))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{httpadapter.StrategyHeader},
		MaxAge:         300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler)
	r.Get("/health/live", livenessHandler)
	r.Get("/health/ready", readinessHandler(pool))
	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message": "Photoflow API v1", "status": "ok"}`))
		})

		r.Mount("/photos", photoHandler.Routes())
		r.Mount("/tokens", tokenHandler.Routes())
	})

	// Write timeout covers the managed wait plus the direct-path fallback
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		slog.Info("starting server", "port", cfg.Port, "engine", engine != nil, "storage_mode", cfg.Storage.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	if temporalClient != nil {
		temporalClient.Close()
	}
	if err := observability.ShutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown failed", "error", err)
	}

	slog.Info("server exited")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status": "healthy"}`))
}

func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status": "alive"}`))
}

func readinessHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "not ready", "error": "database unavailable"}`))
			return
		}
		w.Write([]byte(`{"status": "ready"}`))
	}
}
