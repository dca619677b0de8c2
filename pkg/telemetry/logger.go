package telemetry

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with vmweaver-specific field helpers. The
// minimum level is held in a shared atomic so it can be adjusted at runtime
// for all child loggers at once.
type Logger struct {
	zlog  zerolog.Logger
	level *atomic.Int32
}

// NewLogger creates a logger from the given configuration.
func NewLogger(cfg LoggingConfig) (*Logger, error) {
	var writer io.Writer
	switch cfg.Output {
	case "stdout":
		writer = os.Stdout
	case "stderr", "":
		writer = os.Stderr
	default:
		// Anything else is a file path.
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		writer = file
	}

	if cfg.Format == "console" {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
		}
	}

	level := &atomic.Int32{}
	level.Store(int32(parseLogLevel(cfg.Level)))

	zlog := zerolog.New(writer).With().Timestamp().Logger()
	return &Logger{zlog: zlog, level: level}, nil
}

// SetLevel adjusts the minimum level of this logger and every logger
// derived from it.
func (l *Logger) SetLevel(level string) {
	l.level.Store(int32(parseLogLevel(level)))
}

// NewComponentLogger creates a child logger for a specific component.
func (l *Logger) NewComponentLogger(component string) *Logger {
	return l.child(l.zlog.With().Str("component", component).Logger())
}

// WithField returns a logger with a single additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.child(l.zlog.With().Interface(key, value).Logger())
}

// WithRequestID adds a request_id field to the logger.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.child(l.zlog.With().Str("request_id", requestID).Logger())
}

// WithVMID adds a vm_id field to the logger.
func (l *Logger) WithVMID(vmID string) *Logger {
	return l.child(l.zlog.With().Str("vm_id", vmID).Logger())
}

// WithProvider adds a provider field to the logger.
func (l *Logger) WithProvider(provider string) *Logger {
	return l.child(l.zlog.With().Str("provider", provider).Logger())
}

// WithError adds error information to the logger.
func (l *Logger) WithError(err error) *Logger {
	return l.child(l.zlog.With().Err(err).Logger())
}

func (l *Logger) child(zlog zerolog.Logger) *Logger {
	return &Logger{zlog: zlog, level: l.level}
}

func (l *Logger) enabled(level zerolog.Level) bool {
	return level >= zerolog.Level(l.level.Load())
}

// Debug logs a debug-level message.
func (l *Logger) Debug(msg string) {
	if l.enabled(zerolog.DebugLevel) {
		l.zlog.Debug().Msg(msg)
	}
}

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(zerolog.DebugLevel) {
		l.zlog.Debug().Msgf(format, args...)
	}
}

// Info logs an info-level message.
func (l *Logger) Info(msg string) {
	if l.enabled(zerolog.InfoLevel) {
		l.zlog.Info().Msg(msg)
	}
}

// Infof logs a formatted info-level message.
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.enabled(zerolog.InfoLevel) {
		l.zlog.Info().Msgf(format, args...)
	}
}

// Warn logs a warning-level message.
func (l *Logger) Warn(msg string) {
	if l.enabled(zerolog.WarnLevel) {
		l.zlog.Warn().Msg(msg)
	}
}

// Warnf logs a formatted warning-level message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.enabled(zerolog.WarnLevel) {
		l.zlog.Warn().Msgf(format, args...)
	}
}

// Error logs an error-level message.
func (l *Logger) Error(msg string) {
	if l.enabled(zerolog.ErrorLevel) {
		l.zlog.Error().Msg(msg)
	}
}

// Errorf logs a formatted error-level message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.enabled(zerolog.ErrorLevel) {
		l.zlog.Error().Msgf(format, args...)
	}
}

// Fatal logs a fatal-level message and exits.
func (l *Logger) Fatal(msg string) {
	l.zlog.Fatal().Msg(msg)
}

// parseLogLevel converts a string log level to zerolog.Level.
func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
