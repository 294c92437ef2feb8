package layout

import (
	"fmt"
	"time"

	"fjacquet/logmongo/internal/models"

	"github.com/sirupsen/logrus"
)

// Literal always renders the same value.
type Literal struct {
	Value interface{}
}

func (l Literal) Format(*logrus.Entry) (interface{}, error) {
	return l.Value, nil
}

// Timestamp renders the event time.
//
// TimeFormat "" keeps the native time.Time, "unix" and "unixms" give integer
// epoch values, "rfc3339" the RFC 3339 string with nanoseconds, and anything
// else is used as a Go time layout. Strings are always rendered in UTC.
type Timestamp struct {
	TimeFormat string
}

func (l Timestamp) Format(entry *logrus.Entry) (interface{}, error) {
	switch l.TimeFormat {
	case "":
		return entry.Time, nil
	case "unix":
		return entry.Time.Unix(), nil
	case "unixms":
		return entry.Time.UnixMilli(), nil
	case "rfc3339":
		return entry.Time.UTC().Format(time.RFC3339Nano), nil
	default:
		return entry.Time.UTC().Format(l.TimeFormat), nil
	}
}

// Message renders the log message.
type Message struct{}

func (Message) Format(entry *logrus.Entry) (interface{}, error) {
	return entry.Message, nil
}

// Level renders the upper-cased level name.
type Level struct{}

func (Level) Format(entry *logrus.Entry) (interface{}, error) {
	return models.LevelName(entry), nil
}

// Logger renders the logger name, or nil when the event carries none.
type Logger struct{}

func (Logger) Format(entry *logrus.Entry) (interface{}, error) {
	if name, ok := models.LoggerName(entry); ok {
		return name, nil
	}
	return nil, nil
}

// Thread renders the thread label, or nil when the event carries none.
type Thread struct{}

func (Thread) Format(entry *logrus.Entry) (interface{}, error) {
	if name, ok := models.ThreadName(entry); ok {
		return name, nil
	}
	return nil, nil
}

// Property renders one raw value from the event's data.
type Property struct {
	Key string
}

func (l Property) Format(entry *logrus.Entry) (interface{}, error) {
	v, _ := models.Property(entry, l.Key)
	return v, nil
}

// Exception renders the attached error as a nested exception document.
type Exception struct{}

func (Exception) Format(entry *logrus.Entry) (interface{}, error) {
	doc := ExceptionDocument(models.EventError(entry))
	if doc == nil {
		return nil, nil
	}
	return doc, nil
}

// Caller renders "file:line" of the logging call site when the host logger
// reports callers.
type Caller struct{}

func (Caller) Format(entry *logrus.Entry) (interface{}, error) {
	if entry.Caller == nil {
		return nil, nil
	}
	return fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line), nil
}

// Hostname renders the machine name.
type Hostname struct{}

func (Hostname) Format(*logrus.Entry) (interface{}, error) {
	return models.CurrentProcess().MachineName, nil
}
