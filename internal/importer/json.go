package importer

import (
	"fmt"
	"io"
	"time"

	"fjacquet/logmongo/internal/apperror"
	"fjacquet/logmongo/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

// JSONParser reads JSON lines as written by logrus.JSONFormatter.
type JSONParser struct{}

// NewJSONParser creates a JSONParser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Keys written by logrus.JSONFormatter with its default FieldMap.
const (
	jsonTimeKey  = logrus.FieldKeyTime
	jsonLevelKey = logrus.FieldKeyLevel
	jsonMsgKey   = logrus.FieldKeyMsg
)

func (p *JSONParser) Parse(r io.Reader) ([]models.ArchivedEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading JSON log: %w", err)
	}

	var sc fastjson.Scanner
	sc.InitBytes(data)

	var events []models.ArchivedEvent
	for sc.Next() {
		event, err := jsonEvent(sc.Value(), len(events)+1)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := sc.Error(); err != nil {
		return nil, &apperror.ParseError{Parser: "json", Field: "record", Value: fmt.Sprint(len(events) + 1), Err: err}
	}
	return events, nil
}

func jsonEvent(v *fastjson.Value, n int) (models.ArchivedEvent, error) {
	obj, err := v.Object()
	if err != nil {
		return models.ArchivedEvent{}, &apperror.ParseError{Parser: "json", Field: "record", Value: fmt.Sprint(n), Err: err}
	}

	event := models.ArchivedEvent{Level: logrus.InfoLevel, Properties: map[string]interface{}{}}
	var parseErr error
	obj.Visit(func(key []byte, val *fastjson.Value) {
		if parseErr != nil {
			return
		}
		k := string(key)
		switch k {
		case jsonTimeKey:
			raw := string(val.GetStringBytes())
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				if t, err = parseTime(raw); err != nil {
					parseErr = &apperror.ParseError{Parser: "json", Field: k, Value: raw, Err: err}
					return
				}
			}
			event.Time = t
		case jsonLevelKey:
			event.Level, _ = models.ParseLevel(string(val.GetStringBytes()))
		case jsonMsgKey:
			event.Message = jsonString(val)
		case models.LoggerKey:
			event.Logger = jsonString(val)
		case models.ThreadKey:
			event.Thread = jsonString(val)
		case logrus.ErrorKey:
			event.Error = jsonString(val)
		default:
			event.Properties[k] = jsonValue(val)
		}
	})
	return event, parseErr
}

func jsonString(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return v.String()
}

func jsonValue(v *fastjson.Value) interface{} {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		raw := v.String()
		if isPlainNumber(raw) {
			return propertyValue(raw)
		}
		f, _ := v.Float64()
		return f
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = jsonValue(item)
		}
		return out
	case fastjson.TypeObject:
		out := map[string]interface{}{}
		v.GetObject().Visit(func(key []byte, val *fastjson.Value) {
			out[string(key)] = jsonValue(val)
		})
		return out
	default:
		return v.String()
	}
}
