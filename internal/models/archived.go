package models

import (
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ArchivedEvent is a log record read back from a file written by another
// appender (logrus JSON output, CSV exports, log4net XmlLayout).
type ArchivedEvent struct {
	Time       time.Time
	Level      logrus.Level
	Logger     string
	Thread     string
	Message    string
	Error      string
	Properties map[string]interface{}
}

// ToEntry converts the archived record into the logrus entry the appender consumes.
// The entry has no Logger; layouts only read its exported fields.
func (a ArchivedEvent) ToEntry() *logrus.Entry {
	data := make(logrus.Fields, len(a.Properties)+3)
	for k, v := range a.Properties {
		data[k] = v
	}
	if a.Logger != "" {
		data[LoggerKey] = a.Logger
	}
	if a.Thread != "" {
		data[ThreadKey] = a.Thread
	}
	if a.Error != "" {
		data[logrus.ErrorKey] = errors.New(a.Error)
	}
	return &logrus.Entry{
		Time:    a.Time,
		Level:   a.Level,
		Message: a.Message,
		Data:    data,
	}
}

// ParseLevel maps logrus and log4net level names to a logrus level.
// Unknown names report false and map to InfoLevel.
func ParseLevel(name string) (logrus.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ALL", "VERBOSE", "FINEST":
		return logrus.TraceLevel, true
	case "FINE":
		return logrus.DebugLevel, true
	case "NOTICE":
		return logrus.InfoLevel, true
	case "SEVERE", "CRITICAL", "ALERT":
		return logrus.ErrorLevel, true
	case "EMERGENCY", "OFF":
		return logrus.FatalLevel, true
	}
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return logrus.InfoLevel, false
	}
	return level, true
}
