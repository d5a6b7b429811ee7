package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"

	"github.com/photoflow/photoflow-api/internal/core/domain"
)

// Storage modes for the delete-storage and delete-thumbnail steps
const (
	StorageModeLambda = "lambda"
	StorageModeS3     = "s3"
)

// Config is the process configuration shared by the API server and the
// Temporal worker.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DatabaseMinConns int32  `env:"DB_MIN_CONNS" envDefault:"1"`

	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`

	Auth    AuthConfig
	Workers WorkerConfig
	Storage StorageConfig
	Engine  EngineConfig
	Tracing TracingConfig
}

// AuthConfig locates the token signing secret
type AuthConfig struct {
	ParameterName string `env:"TOKEN_PARAMETER_NAME" envDefault:"keytokenhash"`
	SecretKey     string `env:"SECRET_KEY"`
}

// WorkerConfig names the deployed worker functions
type WorkerConfig struct {
	InsertRecord    string `env:"ADD_PHOTO_DB_FUNC_NAME"`
	UploadObject    string `env:"UPLOAD_OBJECTS_FUNC_NAME"`
	CreateThumbnail string `env:"RESIZE_WRAPPER_FUNC_NAME"`
	DeleteObject    string `env:"DELETE_OBJECTS_FUNC_NAME"`
	DeleteRecord    string `env:"DELETE_PHOTO_DB_FUNC_NAME"`
	DeleteThumbnail string `env:"DELETE_RESIZED_FUNC_NAME"`

	LegacyFailureMarkers bool `env:"WORKER_LEGACY_FAILURE_MARKERS" envDefault:"false"`
}

// StorageConfig controls how storage objects are deleted
type StorageConfig struct {
	Mode          string `env:"STORAGE_MODE" envDefault:"lambda"`
	PhotoBucket   string `env:"PHOTO_BUCKET_NAME"`
	ResizedBucket string `env:"RESIZED_BUCKET_NAME"`
}

// EngineConfig configures the managed workflow engine and the direct path
type EngineConfig struct {
	HostPort  string `env:"TEMPORAL_HOST" envDefault:"localhost:7233"`
	Namespace string `env:"TEMPORAL_NAMESPACE" envDefault:"default"`
	TaskQueue string `env:"TEMPORAL_TASK_QUEUE" envDefault:"photoflow-queue"`

	// Empty workflow types leave the engine unconfigured for that action
	UploadWorkflow string `env:"UPLOAD_WORKFLOW_TYPE"`
	DeleteWorkflow string `env:"DELETE_WORKFLOW_TYPE"`

	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"500ms"`
	PollTimeout  time.Duration `env:"POLL_TIMEOUT" envDefault:"300s"`
	// DirectTimeout is what a request has left for the direct path after a
	// managed wait used up the whole poll timeout.
	DirectTimeout time.Duration `env:"DIRECT_PATH_TIMEOUT" envDefault:"120s"`

	UploadConcurrency int `env:"UPLOAD_CONCURRENCY" envDefault:"2"`
	DeleteConcurrency int `env:"DELETE_CONCURRENCY" envDefault:"3"`
}

// TracingConfig configures the OTLP exporter
type TracingConfig struct {
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`

	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Load parses the configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express
func (c *Config) Validate() error {
	switch c.Storage.Mode {
	case StorageModeLambda, StorageModeS3:
	default:
		return errors.Errorf("invalid STORAGE_MODE %q", c.Storage.Mode)
	}
	if c.Engine.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL must be positive")
	}
	if c.Engine.PollTimeout <= 0 {
		return errors.New("POLL_TIMEOUT must be positive")
	}
	if c.Engine.DirectTimeout <= 0 {
		return errors.New("DIRECT_PATH_TIMEOUT must be positive")
	}
	if c.Engine.UploadConcurrency <= 0 || c.Engine.DeleteConcurrency <= 0 {
		return errors.New("direct-path concurrency must be positive")
	}
	return nil
}

// RequestTimeout bounds one action request: a full managed wait followed by
// a complete direct-path fallback.
func (c *Config) RequestTimeout() time.Duration {
	return c.Engine.PollTimeout + c.Engine.DirectTimeout
}

// EngineConfigured reports whether any managed workflow type is set
func (c *Config) EngineConfigured() bool {
	return c.Engine.UploadWorkflow != "" || c.Engine.DeleteWorkflow != ""
}

// FunctionNames maps worker kinds to deployed function names. Empty names are
// left out.
func (c *Config) FunctionNames() map[domain.WorkerKind]string {
	names := map[domain.WorkerKind]string{
		domain.WorkerInsertRecord:    c.Workers.InsertRecord,
		domain.WorkerUploadObject:    c.Workers.UploadObject,
		domain.WorkerCreateThumbnail: c.Workers.CreateThumbnail,
		domain.WorkerDeleteObject:    c.Workers.DeleteObject,
		domain.WorkerDeleteRecord:    c.Workers.DeleteRecord,
		domain.WorkerDeleteThumbnail: c.Workers.DeleteThumbnail,
	}
	for kind, name := range names {
		if name == "" {
			delete(names, kind)
		}
	}
	return names
}
