package main

import (
	"context"
	"log/slog"
	"os"

	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/photoflow/photoflow-api/internal/activity"
	awsadapter "github.com/photoflow/photoflow-api/internal/adapter/driven/aws"
	"github.com/photoflow/photoflow-api/internal/config"
	"github.com/photoflow/photoflow-api/internal/core/service"
	photoworkflow "github.com/photoflow/photoflow-api/internal/workflow"
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

	// Temporal client
	c, err := temporal.Dial(temporal.Config{
		HostPort:  cfg.Engine.HostPort,
		Namespace: cfg.Engine.Namespace,
		TaskQueue: cfg.Engine.TaskQueue,
	})
	if err != nil {
		observability.LogError(ctx, "failed to create temporal client", err)
		os.Exit(1)
	}
	defer c.Close()

	// Worker functions
	clients, err := awsadapter.LoadClients(ctx, cfg.AWSRegion)
	if err != nil {
		observability.LogError(ctx, "failed to load aws config", err)
		os.Exit(1)
	}
	transport, functions := awsadapter.Workers(clients, cfg)
	invoker := service.NewWorkerInvoker(transport, service.InvokerConfig{
		Functions:            functions,
		LegacyFailureMarkers: cfg.Workers.LegacyFailureMarkers,
	})

	taskQueue := temporal.Config{TaskQueue: cfg.Engine.TaskQueue}.TaskQueueOrDefault()
	w := worker.New(c, taskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.Engine.DeleteConcurrency,
	})

	// Register workflows
	w.RegisterWorkflowWithOptions(photoworkflow.PhotoUploadWorkflow, workflow.RegisterOptions{Name: photoworkflow.UploadWorkflowName})
	w.RegisterWorkflowWithOptions(photoworkflow.PhotoDeleteWorkflow, workflow.RegisterOptions{Name: photoworkflow.DeleteWorkflowName})

	// Register activities
	w.RegisterActivity(&activity.Activities{Invoker: invoker})

	slog.Info("starting temporal worker", "taskQueue", taskQueue, "storage_mode", cfg.Storage.Mode)
	if err := w.Run(worker.InterruptCh()); err != nil {
		observability.LogError(ctx, "worker error", err)
		os.Exit(1)
	}
	slog.Info("worker exited")
}
