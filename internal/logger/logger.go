package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

// New builds a logger configured from ENVIRONMENT and LOG_LEVEL.
func New() *Logger {
	return NewWithOutput(os.Stderr, os.Getenv("LOG_LEVEL"))
}

// NewWithOutput is New with an explicit sink and level. Progress lines go to
// stdout, so logs default to stderr.
func NewWithOutput(out io.Writer, level string) *Logger {
	base := logrus.New()

	// Local env = pretty console; others = JSON
	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(out)
	base.SetLevel(ParseLevel(level))

	return &Logger{Entry: logrus.NewEntry(base)}
}

// ParseLevel maps the LOG_LEVEL vocabulary onto logrus levels, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithRun tags every entry with a run id. An empty id gets a fresh uuid.
func (l *Logger) WithRun(id string) *Logger {
	if id == "" {
		id = uuid.New().String()
	}
	return &Logger{Entry: l.Entry.WithField("run_id", id)}
}

// Component returns a child logger for one package.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Entry: l.Entry.WithField("component", name)}
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}

// Discard returns a logger that writes nowhere, for tests and library callers
// that do not care about logs.
func Discard() *Logger {
	return NewWithOutput(io.Discard, "error")
}
