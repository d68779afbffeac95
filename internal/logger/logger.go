// Package logger provides the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance used throughout the advisor.
var Logger = newLogger(os.Stderr, log.InfoLevel)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	l.SetLevel(level)
	return l
}

// Configure sets the level and destination of the global logger. An empty
// level falls back to ADVISOR_LOG_LEVEL and then to info.
func Configure(level string, logFile string) error {
	if level == "" {
		level = os.Getenv("ADVISOR_LOG_LEVEL")
	}

	var out io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		out = f
	}

	Logger = newLogger(out, ParseLevel(level))
	return nil
}

// SetOutput redirects the global logger, keeping its level. The MCP server
// uses this to keep stdout free for protocol messages.
func SetOutput(w io.Writer) {
	Logger = newLogger(w, Logger.GetLevel())
}

// ParseLevel converts a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// With returns a child logger carrying a component prefix.
func With(prefix string) *log.Logger {
	return Logger.WithPrefix(prefix)
}

func Debug(msg interface{}, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }

func Info(msg interface{}, keyvals ...interface{}) { Logger.Info(msg, keyvals...) }

func Warn(msg interface{}, keyvals ...interface{}) { Logger.Warn(msg, keyvals...) }

func Error(msg interface{}, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }
