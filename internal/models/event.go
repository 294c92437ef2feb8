package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"
)

// Conventional logrus Data keys carrying the log4net-style event attributes
// that logrus itself has no notion of.
const (
	LoggerKey = "logger"
	ThreadKey = "thread"
)

// reservedKeys are the Data keys that map to dedicated document keys
// rather than to the properties sub-document.
var reservedKeys = map[string]struct{}{
	LoggerKey:       {},
	ThreadKey:       {},
	logrus.ErrorKey: {},
}

// IsReservedKey reports whether key is consumed by a dedicated event attribute.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// LevelName returns the upper-cased level name, e.g. "INFO" or "WARNING".
func LevelName(entry *logrus.Entry) string {
	return strings.ToUpper(entry.Level.String())
}

// LoggerName returns the logger name attached to the entry, if any.
func LoggerName(entry *logrus.Entry) (string, bool) {
	return stringData(entry, LoggerKey)
}

// ThreadName returns the thread or goroutine label attached to the entry, if any.
func ThreadName(entry *logrus.Entry) (string, bool) {
	return stringData(entry, ThreadKey)
}

// EventError returns the error attached with WithError, if any.
func EventError(entry *logrus.Entry) error {
	v, ok := entry.Data[logrus.ErrorKey]
	if !ok || v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		if IsNilError(err) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%v", v)
}

// IsNilError reports whether err is nil or a non-nil interface holding a
// nil pointer, map, slice, func or chan, such as a nil *os.PathError.
func IsNilError(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// ErrorMessage returns err.Error(). An Error method that panics yields a
// placeholder naming the error type instead.
func ErrorMessage(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("%T.Error() panicked: %v", err, r)
		}
	}()
	return err.Error()
}

// Property returns a raw Data value.
func Property(entry *logrus.Entry, key string) (interface{}, bool) {
	v, ok := entry.Data[key]
	return v, ok
}

func stringData(entry *logrus.Entry, key string) (string, bool) {
	v, ok := entry.Data[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
