package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// defaultLogger is the default logger instance
	defaultLogger zerolog.Logger
)

// LogLevel represents the log level
type LogLevel string

const (
	// DebugLevel is for debug messages
	DebugLevel LogLevel = "debug"
	// InfoLevel is for informational messages
	InfoLevel LogLevel = "info"
	// WarnLevel is for warning messages
	WarnLevel LogLevel = "warn"
	// ErrorLevel is for error messages
	ErrorLevel LogLevel = "error"
)

// Config represents logger configuration
type Config struct {
	// Level is the log level
	Level LogLevel
	// Pretty enables pretty logging (human-readable format)
	Pretty bool
	// Output is the output writer (defaults to os.Stdout)
	Output io.Writer
}

// ConfigFrom builds a Config from the textual level and format found in the
// application configuration. Format "text" selects the console writer.
func ConfigFrom(level, format string) Config {
	return Config{
		Level:  LogLevel(strings.ToLower(strings.TrimSpace(level))),
		Pretty: strings.EqualFold(strings.TrimSpace(format), "text"),
	}
}

func (l LogLevel) toZerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Configure configures the package logger and zerolog's global logger, and
// returns the configured instance for injection.
func Configure(config Config) zerolog.Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(config.Level.toZerolog())

	var writer io.Writer = config.Output
	if config.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.RFC3339,
		}
	}

	defaultLogger = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = defaultLogger
	return defaultLogger
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info logs an informational message
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Component returns the default logger tagged with a component name
func Component(name string) zerolog.Logger {
	return defaultLogger.With().Str("component", name).Logger()
}

func init() {
	Configure(Config{
		Level:  InfoLevel,
		Pretty: true,
		Output: os.Stdout,
	})
}
