package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the global structured logger
var Logger *slog.Logger

type contextKey string

// EmailKey carries the claimed caller identity for log correlation
const EmailKey contextKey = "email"

// WithEmail stores the claimed caller identity for log correlation
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, EmailKey, email)
}

// InitLogger installs the process logger. Unknown levels fall back to info;
// debug also records source locations.
func InitLogger(level string, format string) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel <= slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			if a.Key == slog.LevelKey {
				a.Key = "level"
			}
			if a.Key == slog.MessageKey {
				a.Key = "message"
			}
			return a
		},
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// WithContext adds common context fields to the logger
func WithContext(ctx context.Context) *slog.Logger {
	logger := Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Add trace ID if available
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		logger = logger.With("trace_id", sc.TraceID().String())
	}

	// Add request ID if available
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		logger = logger.With("request_id", requestID)
	}

	// Add caller identity if available
	if email := ctx.Value(EmailKey); email != nil {
		logger = logger.With("email", email)
	}

	return logger
}

// LogError logs an error with context
func LogError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	logger := WithContext(ctx)
	args := make([]any, 0, len(attrs)*2+2)
	args = append(args, "error", err.Error())
	for _, attr := range attrs {
		args = append(args, attr.Key, attr.Value.Any())
	}
	logger.Error(msg, args...)
}
