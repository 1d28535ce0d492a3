package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

var (
	defaultLogger *log.Logger
	once          sync.Once
	mu            sync.Mutex
)

// Init initializes the default logger with the specified level and installs it
// as the slog default handler. Subsequent calls are no-ops.
func Init(levelStr string) {
	once.Do(func() {
		defaultLogger = log.NewWithOptions(os.Stderr, log.Options{
			Level:           parseLevel(levelStr),
			ReportTimestamp: true,
			Prefix:          "covspec",
		})
		slog.SetDefault(slog.New(defaultLogger))
	})
}

// get returns the default logger, initializing it at warn level if needed.
func get() *log.Logger {
	if defaultLogger == nil {
		Init("warn")
	}
	return defaultLogger
}

// SetLevel sets the logging level for the default logger.
func SetLevel(levelStr string) {
	if defaultLogger == nil {
		Init(levelStr)
		return
	}
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.SetLevel(parseLevel(levelStr))
}

// SetOutput sets the output destination for the default logger.
func SetOutput(w io.Writer) {
	l := get()
	mu.Lock()
	defer mu.Unlock()
	l.SetOutput(w)
}

// SetColorEnable enables or disables color output.
func SetColorEnable(enable bool) {
	l := get()
	mu.Lock()
	defer mu.Unlock()
	if enable {
		l.SetColorProfile(termenv.ANSI256)
		return
	}
	l.SetColorProfile(termenv.Ascii)
}

// parseLevel converts a string to a Level. Unknown names map to info.
func parseLevel(levelStr string) log.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	case "FATAL":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Debug logs a debug message with optional key/value pairs.
func Debug(msg string, keyvals ...interface{}) {
	get().Debug(msg, keyvals...)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

// Info logs an info message with optional key/value pairs.
func Info(msg string, keyvals ...interface{}) {
	get().Info(msg, keyvals...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...interface{}) {
	get().Infof(format, args...)
}

// Warn logs a warning with optional key/value pairs.
func Warn(msg string, keyvals ...interface{}) {
	get().Warn(msg, keyvals...)
}

// Warnf logs a formatted warning.
func Warnf(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

// Error logs an error message with optional key/value pairs.
func Error(msg string, keyvals ...interface{}) {
	get().Error(msg, keyvals...)
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...interface{}) {
	get().Errorf(format, args...)
}
