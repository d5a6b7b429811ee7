package temporal

import (
	"log/slog"

	"github.com/go-faster/errors"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
)

// Config holds the connection settings for the workflow engine
type Config struct {
	HostPort  string
	Namespace string
	TaskQueue string
}

// DefaultTaskQueue is used when no task queue is configured
const DefaultTaskQueue = "photoflow-queue"

// TaskQueueOrDefault returns the configured task queue or the default one
func (c Config) TaskQueueOrDefault() string {
	if c.TaskQueue == "" {
		return DefaultTaskQueue
	}
	return c.TaskQueue
}

// Dial connects to the Temporal frontend. The returned client is meant to be
// created once at process start and closed on shutdown.
func Dial(cfg Config) (client.Client, error) {
	host := cfg.HostPort
	if host == "" {
		host = "localhost:7233"
	}

	c, err := client.Dial(client.Options{
		HostPort:  host,
		Namespace: cfg.Namespace,
		Logger:    log.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create temporal client")
	}

	slog.Info("temporal client connected", "host", host, "namespace", cfg.Namespace)
	return c, nil
}
