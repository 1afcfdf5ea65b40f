package log

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// ZerologProvider is a LoggerProvider backed by zerolog.
type ZerologProvider struct {
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewZerologProvider creates a provider emitting JSON records at the given level.
func NewZerologProvider(level Level) *ZerologProvider {
	zl := zerolog.New(os.Stderr).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologProvider{logger: zl}
}

// GetLogger returns the default logger instance.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &zerologLogger{l: p.logger}
}

// GetLoggerWithName returns a logger tagged with a component identifier.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &zerologLogger{l: p.logger.With().Str(ComponentKey, name).Logger()}
}

// SetLevel sets the minimum log level for loggers from this provider.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = p.logger.Level(toZerologLevel(level))
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// zerologLogger adapts zerolog.Logger to the Logger interface.
// Fields are interpreted as alternating key-value pairs, matching slog.
type zerologLogger struct {
	l zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.l.Debug().Fields(fields).Msg(msg)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.l.Info().Fields(fields).Msg(msg)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.l.Warn().Fields(fields).Msg(msg)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	z.l.Error().Fields(fields).Msg(msg)
}

func (z *zerologLogger) With(fields ...any) Logger {
	return &zerologLogger{l: z.l.With().Fields(fields).Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.l.GetLevel() <= toZerologLevel(level)
}
