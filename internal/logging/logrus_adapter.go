package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements Logger on top of a logrus entry.
type LogrusAdapter struct {
	entry *logrus.Entry
}

// AdapterOption customizes NewLogrusAdapter.
type AdapterOption func(*logrus.Logger)

// WithOutput sends the log output to w instead of stderr.
func WithOutput(w io.Writer) AdapterOption {
	return func(l *logrus.Logger) { l.SetOutput(w) }
}

// NewLogrusAdapter builds a Logger on a new logrus.Logger. The logger is
// never shared, so no hook of the host application can observe it.
// Unknown levels fall back to info; format is "json" or "text".
func NewLogrusAdapter(level, format string, opts ...AdapterOption) Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	for _, opt := range opts {
		opt(logger)
	}

	logLevel, ok := ParseLevel(level)
	if !ok {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
	}
	logger.SetLevel(logLevel)
	logger.SetFormatter(NewFormatter(format))

	return &LogrusAdapter{entry: logrus.NewEntry(logger)}
}

// NewLogrusAdapterFromLogger wraps an existing logger. A nil logger gets a
// new default one.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusAdapter{entry: logrus.NewEntry(logger)}
}

// ParseLevel parses a level name case-insensitively. It returns info and
// false for unknown names.
func ParseLevel(level string) (logrus.Level, bool) {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel, false
	}
	return parsed, true
}

// NewFormatter returns the JSON formatter for "json" and a full-timestamp
// text formatter for anything else.
func NewFormatter(format string) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

// Logrus returns the underlying logger.
func (l *LogrusAdapter) Logrus() *logrus.Logger {
	return l.entry.Logger
}

func (l *LogrusAdapter) Debug(msg string, fields ...Field) {
	l.log(logrus.DebugLevel, msg, fields)
}

func (l *LogrusAdapter) Info(msg string, fields ...Field) {
	l.log(logrus.InfoLevel, msg, fields)
}

func (l *LogrusAdapter) Warn(msg string, fields ...Field) {
	l.log(logrus.WarnLevel, msg, fields)
}

func (l *LogrusAdapter) Error(msg string, fields ...Field) {
	l.log(logrus.ErrorLevel, msg, fields)
}

func (l *LogrusAdapter) log(level logrus.Level, msg string, fields []Field) {
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}
	entry := l.entry
	if len(fields) > 0 {
		entry = entry.WithFields(toLogrusFields(fields))
	}
	entry.Log(level, msg)
}

func (l *LogrusAdapter) WithError(err error) Logger {
	return &LogrusAdapter{entry: l.entry.WithError(err)}
}

func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return &LogrusAdapter{entry: l.entry.WithField(key, value)}
}

func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return &LogrusAdapter{entry: l.entry.WithFields(toLogrusFields(fields))}
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
