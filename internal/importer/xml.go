package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"fjacquet/logmongo/internal/apperror"
	"fjacquet/logmongo/internal/models"

	"gopkg.in/xmlpath.v2"
)

// log4net XmlLayout writes a sequence of events without a root element,
// using an undeclared log4net prefix. The parser wraps the input in a root
// that declares it.
const (
	log4netNamespace = "http://logging.apache.org/log4net/schemas/log4net-events-1.2/"
	xmlRootOpen      = `<log4net:events xmlns:log4net="` + log4netNamespace + `">`
	xmlRootClose     = `</log4net:events>`
)

var (
	eventPath     = xmlpath.MustCompile("//event")
	timestampPath = xmlpath.MustCompile("@timestamp")
	levelPath     = xmlpath.MustCompile("@level")
	loggerPath    = xmlpath.MustCompile("@logger")
	threadPath    = xmlpath.MustCompile("@thread")
	messagePath   = xmlpath.MustCompile("message")
	exceptionPath = xmlpath.MustCompile("exception")
	dataPath      = xmlpath.MustCompile("properties/data")
	namePath      = xmlpath.MustCompile("@name")
	valuePath     = xmlpath.MustCompile("@value")
)

// XMLParser reads log4net XmlLayout output.
type XMLParser struct{}

// NewXMLParser creates an XMLParser.
func NewXMLParser() *XMLParser {
	return &XMLParser{}
}

func (p *XMLParser) Parse(r io.Reader) ([]models.ArchivedEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading XML log: %w", err)
	}
	data = stripXMLDeclaration(data)

	root, err := xmlpath.Parse(io.MultiReader(
		strings.NewReader(xmlRootOpen),
		bytes.NewReader(data),
		strings.NewReader(xmlRootClose),
	))
	if err != nil {
		return nil, &apperror.InvalidFormatError{ExpectedFormat: "log4net XmlLayout", Msg: err.Error()}
	}

	var events []models.ArchivedEvent
	iter := eventPath.Iter(root)
	for iter.Next() {
		event, err := xmlEvent(iter.Node())
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", len(events)+1, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func xmlEvent(node *xmlpath.Node) (models.ArchivedEvent, error) {
	var event models.ArchivedEvent

	raw, _ := timestampPath.String(node)
	t, err := parseTime(raw)
	if err != nil {
		return event, &apperror.ParseError{Parser: "xml", Field: "timestamp", Value: raw, Err: err}
	}
	event.Time = t

	level, _ := levelPath.String(node)
	event.Level, _ = models.ParseLevel(level)
	event.Logger, _ = loggerPath.String(node)
	event.Thread, _ = threadPath.String(node)
	event.Message, _ = messagePath.String(node)
	if exception, ok := exceptionPath.String(node); ok {
		event.Error = strings.TrimSpace(exception)
	}

	event.Properties = map[string]interface{}{}
	data := dataPath.Iter(node)
	for data.Next() {
		name, ok := namePath.String(data.Node())
		if !ok || name == "" {
			continue
		}
		value, _ := valuePath.String(data.Node())
		event.Properties[name] = propertyValue(value)
	}
	return event, nil
}

func stripXMLDeclaration(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return data
	}
	if end := bytes.Index(trimmed, []byte("?>")); end >= 0 {
		return trimmed[end+2:]
	}
	return data
}
