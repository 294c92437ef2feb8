package document

import (
	"sort"
	"strings"

	"fjacquet/logmongo/internal/layout"
	"fjacquet/logmongo/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// ShapeVersion is the version of the default document shape. Consumers
// query these keys directly; any change to DefaultKeys or to the meaning of
// a key must bump it. The version is not stored in the documents, which
// would add a key to the shape; the check command reports it.
const ShapeVersion = 1

// Keys of the default document, in storage order.
const (
	KeyTimestamp   = "timestamp"
	KeyLevel       = "level"
	KeyThread      = "thread"
	KeyUserName    = "userName"
	KeyMessage     = "message"
	KeyLoggerName  = "loggerName"
	KeyDomain      = "domain"
	KeyMachineName = "machineName"
	KeyFileName    = "fileName"
	KeyMethod      = "method"
	KeyLineNumber  = "lineNumber"
	KeyClassName   = "className"
	KeyException   = "exception"
	KeyProperties  = "properties"
)

// DefaultKeys lists the keys every default document has, in order.
var DefaultKeys = []string{
	KeyTimestamp, KeyLevel, KeyThread, KeyUserName, KeyMessage, KeyLoggerName,
	KeyDomain, KeyMachineName, KeyFileName, KeyMethod, KeyLineNumber,
	KeyClassName, KeyException, KeyProperties,
}

// DefaultDocument builds the default-shape document for an event.
//
// All DefaultKeys are always present. Values the event does not carry are
// null, except properties, which is an empty document.
func DefaultDocument(entry *logrus.Entry) bson.D {
	proc := models.CurrentProcess()

	var thread, loggerName interface{}
	if name, ok := models.ThreadName(entry); ok {
		thread = name
	}
	if name, ok := models.LoggerName(entry); ok {
		loggerName = name
	}

	var fileName, method, lineNumber, className interface{}
	if entry.Caller != nil {
		fileName = entry.Caller.File
		lineNumber = entry.Caller.Line
		className, method = splitFunction(entry.Caller.Function)
	}

	var exception interface{}
	if doc := layout.ExceptionDocument(models.EventError(entry)); doc != nil {
		exception = doc
	}

	return bson.D{
		{Key: KeyTimestamp, Value: entry.Time},
		{Key: KeyLevel, Value: models.LevelName(entry)},
		{Key: KeyThread, Value: thread},
		{Key: KeyUserName, Value: proc.UserName},
		{Key: KeyMessage, Value: entry.Message},
		{Key: KeyLoggerName, Value: loggerName},
		{Key: KeyDomain, Value: proc.Domain},
		{Key: KeyMachineName, Value: proc.MachineName},
		{Key: KeyFileName, Value: fileName},
		{Key: KeyMethod, Value: method},
		{Key: KeyLineNumber, Value: lineNumber},
		{Key: KeyClassName, Value: className},
		{Key: KeyException, Value: exception},
		{Key: KeyProperties, Value: properties(entry)},
	}
}

// fallbackDocument has the default shape with everything but timestamp,
// level and message left null.
func fallbackDocument(entry *logrus.Entry) bson.D {
	if entry == nil {
		entry = &logrus.Entry{}
	}
	doc := make(bson.D, 0, len(DefaultKeys))
	for _, key := range DefaultKeys {
		var v interface{}
		switch key {
		case KeyTimestamp:
			v = entry.Time
		case KeyLevel:
			v = models.LevelName(entry)
		case KeyMessage:
			v = entry.Message
		case KeyProperties:
			v = bson.D{}
		}
		doc = append(doc, bson.E{Key: key, Value: v})
	}
	return doc
}

func properties(entry *logrus.Entry) bson.D {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if !models.IsReservedKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: ToValue(entry.Data[k])})
	}
	return doc
}

// splitFunction splits "pkg/path.(*Type).Method" into its class part
// "pkg/path.(*Type)" and the method name. Functions without a dot are
// returned as the method.
func splitFunction(fn string) (interface{}, interface{}) {
	if fn == "" {
		return nil, nil
	}
	slash := strings.LastIndex(fn, "/")
	dot := strings.LastIndex(fn, ".")
	if dot <= slash {
		return nil, fn
	}
	return fn[:dot], fn[dot+1:]
}
