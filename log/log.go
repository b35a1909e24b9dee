package log

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the interface used to log panics that occur while resolvers and
// reference resolvers run. It is settable via typegraph.Logger.
type Logger interface {
	LogPanic(ctx context.Context, value interface{})
}

// EntityLogger is implemented by loggers that also want per-representation
// entity resolution failures. Failures are still returned to the caller.
type EntityLogger interface {
	LogEntityFailure(ctx context.Context, batch string, index int, typename string, err error)
}

// LoggerFunc is a function type that implements the Logger interface.
type LoggerFunc func(ctx context.Context, value interface{})

// LogPanic calls the LoggerFunc with the given context and panic value.
func (f LoggerFunc) LogPanic(ctx context.Context, value interface{}) {
	f(ctx, value)
}

// DefaultLogger is the default logger. It writes JSON lines to stderr.
type DefaultLogger struct {
	Logger *zerolog.Logger

	once sync.Once
}

func (l *DefaultLogger) logger() *zerolog.Logger {
	l.once.Do(func() {
		if l.Logger == nil {
			zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
			l.Logger = &zl
		}
	})
	return l.Logger
}

// LogPanic is used to log recovered panic values with the current stack.
func (l *DefaultLogger) LogPanic(ctx context.Context, value interface{}) {
	const size = 64 << 10
	buf := make([]byte, size)
	buf = buf[:runtime.Stack(buf, false)]
	l.logger().Error().
		Interface("panic", value).
		Str("stack", string(buf)).
		Msg("typegraph: panic occurred")
}

// LogEntityFailure records a representation that resolved to null.
func (l *DefaultLogger) LogEntityFailure(ctx context.Context, batch string, index int, typename string, err error) {
	l.logger().Debug().
		Str("batch", batch).
		Int("index", index).
		Str("typename", typename).
		Err(err).
		Msg("entity unresolved")
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(zl zerolog.Logger) *DefaultLogger {
	return &DefaultLogger{Logger: &zl}
}
