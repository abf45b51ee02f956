package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry so context fields travel with it
type Logger struct {
	*logrus.Entry
	file *os.File
}

// New builds a logger from config. Text format is the console view; json
// is for piping into something else. When cfg.File is set every line is
// also appended there.
func New(cfg model.LogConfig) (*Logger, error) {
	base := logrus.New()

	switch cfg.Format {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	l := &Logger{}
	var out io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		out = io.MultiWriter(os.Stderr, f)
	}
	base.SetOutput(out)

	l.Entry = logrus.NewEntry(base)
	return l, nil
}

// FromLogrus wraps an existing logrus logger, typically a test null logger
func FromLogrus(base *logrus.Logger) *Logger {
	return &Logger{Entry: logrus.NewEntry(base)}
}

// Discard returns a logger that writes nowhere
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return FromLogrus(base)
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WithRun tags every line with a fresh run id
func (l *Logger) WithRun() *Logger {
	return l.with(logrus.Fields{"run_id": uuid.New().String()})
}

// WithSession attaches episode context
func (l *Logger) WithSession(id, name string) *Logger {
	return l.with(logrus.Fields{
		"session": id,
		"episode": truncate(name, 50),
	})
}

// WithField returns a child logger with one extra field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.with(logrus.Fields{key: value})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}

func (l *Logger) with(fields logrus.Fields) *Logger {
	return &Logger{Entry: l.Entry.WithFields(fields), file: l.file}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
