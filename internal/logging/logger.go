// Package logging is the diagnostic logger of the appender itself. Events
// persisted to MongoDB flow through logrus hooks; this is what the rest of
// the code uses to log about them.
package logging

// Logger is a structured leveled logger. Implementations never exit the
// process: a logging sidecar must not take its host down.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger that attaches err to every message.
	WithError(err error) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a message.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for Field{Key: key, Value: value}.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
