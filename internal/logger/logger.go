package logger

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// global logger, a no-op until Initialize runs
	log atomic.Pointer[zap.Logger]
	// sentry client flushed on shutdown, nil without a DSN
	sentryClient atomic.Pointer[sentry.Client]
)

func init() {
	log.Store(zap.NewNop())
}

type fieldsKey struct{}

// Config holds logger configuration
type Config struct {
	Debug     bool
	SentryDSN string
	// SentryClient overrides the client built from SentryDSN
	SentryClient    *sentry.Client
	BreadcrumbLevel zapcore.Level
	// Tags are attached to every Sentry event, e.g. the service name
	Tags map[string]string
}

// Initialize builds the global logger. Errors at or above error level are
// forwarded to Sentry when a DSN or client is configured.
func Initialize(cfg Config) error {
	base, err := buildZap(cfg.Debug)
	if err != nil {
		return err
	}

	client := cfg.SentryClient
	if client == nil && cfg.SentryDSN != "" {
		client, err = sentry.NewClient(sentry.ClientOptions{
			Dsn:   cfg.SentryDSN,
			Debug: cfg.Debug,
		})
		if err != nil {
			return err
		}
	}
	if client == nil {
		sentryClient.Store(nil)
		log.Store(base)
		return nil
	}

	breadcrumbs := cfg.BreadcrumbLevel
	if breadcrumbs == zapcore.InvalidLevel {
		breadcrumbs = zapcore.InfoLevel
	}
	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   breadcrumbs,
		Tags:              cfg.Tags,
	}, zapsentry.NewSentryClientFromClient(client))
	if err != nil {
		return err
	}

	sentryClient.Store(client)
	log.Store(zapsentry.AttachCoreToLogger(core, base))
	return nil
}

func buildZap(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// Flush flushes buffered log entries and pending Sentry events
func Flush(timeout time.Duration) {
	_ = log.Load().Sync()
	if client := sentryClient.Load(); client != nil {
		client.Flush(timeout)
	}
}

// WithFields returns a context whose loggers carry fields, e.g. the request id
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing, _ := ctx.Value(fieldsKey{}).([]zap.Field)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// FromContext returns the global logger bound to the Sentry scope and the fields of ctx
func FromContext(ctx context.Context) *zap.Logger {
	l := log.Load()
	if ctx == nil {
		return l
	}
	fields, _ := ctx.Value(fieldsKey{}).([]zap.Field)
	return l.With(append([]zap.Field{zapsentry.Context(ctx)}, fields...)...)
}

// Default returns the global logger
func Default() *zap.Logger {
	return log.Load()
}

func Info(msg string, fields ...zap.Field) {
	log.Load().Info(msg, fields...)
}

func InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Load().Warn(msg, fields...)
}

func WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	log.Load().Debug(msg, fields...)
}

func DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Debug(msg, fields...)
}

// Error logs err as the message so Sentry groups events by error text
func Error(err error, fields ...zap.Field) {
	log.Load().Error(errorMessage(err), fields...)
}

func ErrorCtx(ctx context.Context, err error, fields ...zap.Field) {
	FromContext(ctx).Error(errorMessage(err), fields...)
}

// Fatal logs and exits the process
func Fatal(msg string, fields ...zap.Field) {
	log.Load().Fatal(msg, fields...)
}

func FatalCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Fatal(msg, fields...)
}

func errorMessage(err error) string {
	if err == nil {
		return "error occurred"
	}
	return err.Error()
}
