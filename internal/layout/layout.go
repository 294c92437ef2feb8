// Package layout implements the formatting rules that derive a document
// value from a log event. Each configured field pairs a name with one Layout.
package layout

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Layout renders one value from a log event.
type Layout interface {
	// Format returns the value for the entry. The entry must not be modified.
	Format(entry *logrus.Entry) (interface{}, error)
}

// Func adapts an ordinary function to the Layout interface.
type Func func(entry *logrus.Entry) (interface{}, error)

// Format calls f(entry).
func (f Func) Format(entry *logrus.Entry) (interface{}, error) {
	return f(entry)
}

// Kind identifies a layout implementation in configuration.
type Kind string

const (
	KindLiteral   Kind = "literal"
	KindTimestamp Kind = "timestamp"
	KindMessage   Kind = "message"
	KindLevel     Kind = "level"
	KindLogger    Kind = "logger"
	KindThread    Kind = "thread"
	KindProperty  Kind = "property"
	KindException Kind = "exception"
	KindCaller    Kind = "caller"
	KindHostname  Kind = "hostname"
	KindPattern   Kind = "pattern"
)

// Kinds lists every supported layout kind.
var Kinds = []Kind{
	KindLiteral, KindTimestamp, KindMessage, KindLevel, KindLogger, KindThread,
	KindProperty, KindException, KindCaller, KindHostname, KindPattern,
}

// Spec is the configuration of a single layout. Only the options relevant
// to Kind are read.
type Spec struct {
	Kind    Kind
	Value   interface{} // literal
	Key     string      // property
	Format  string      // timestamp
	Pattern string      // pattern
}

// New creates a Layout from its configuration.
func New(spec Spec) (Layout, error) {
	switch Kind(strings.ToLower(string(spec.Kind))) {
	case KindLiteral:
		return Literal{Value: spec.Value}, nil
	case KindTimestamp:
		return Timestamp{TimeFormat: spec.Format}, nil
	case KindMessage:
		return Message{}, nil
	case KindLevel:
		return Level{}, nil
	case KindLogger:
		return Logger{}, nil
	case KindThread:
		return Thread{}, nil
	case KindProperty:
		if spec.Key == "" {
			return nil, fmt.Errorf("property layout requires a key")
		}
		return Property{Key: spec.Key}, nil
	case KindException:
		return Exception{}, nil
	case KindCaller:
		return Caller{}, nil
	case KindHostname:
		return Hostname{}, nil
	case KindPattern:
		return NewPattern(spec.Pattern)
	default:
		return nil, fmt.Errorf("unknown layout kind: %s", spec.Kind)
	}
}

// IsKnownKind reports whether New accepts the kind.
func IsKnownKind(kind string) bool {
	for _, k := range Kinds {
		if string(k) == strings.ToLower(kind) {
			return true
		}
	}
	return false
}
