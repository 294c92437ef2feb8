package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"fjacquet/logmongo/internal/apperror"
	"fjacquet/logmongo/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/valyala/fastjson"
)

// CSVRow is one row of a CSV log export.
// It uses struct tags for gocsv unmarshaling
type CSVRow struct {
	Time       string `csv:"time"`
	Level      string `csv:"level"`
	Logger     string `csv:"logger"`
	Thread     string `csv:"thread"`
	Message    string `csv:"message"`
	Error      string `csv:"error"`
	Properties string `csv:"properties"`
}

// CSVParser reads CSV exports with the header
// time,level,logger,thread,message,error and an optional properties column
// holding a JSON object.
type CSVParser struct {
	Comma rune
}

// NewCSVParser creates a comma-separated CSVParser.
func NewCSVParser() *CSVParser {
	return &CSVParser{Comma: ','}
}

func (p *CSVParser) Parse(r io.Reader) ([]models.ArchivedEvent, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []*CSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error reading CSV log: %w", err)
	}

	events := make([]models.ArchivedEvent, 0, len(rows))
	for i, row := range rows {
		// Skip empty rows
		if row.Time == "" && row.Message == "" {
			continue
		}
		event, err := csvEvent(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func csvEvent(row *CSVRow) (models.ArchivedEvent, error) {
	t, err := parseTime(row.Time)
	if err != nil {
		return models.ArchivedEvent{}, &apperror.ParseError{Parser: "csv", Field: "time", Value: row.Time, Err: err}
	}
	level, _ := models.ParseLevel(row.Level)

	props := map[string]interface{}{}
	if raw := strings.TrimSpace(row.Properties); raw != "" {
		v, err := fastjson.Parse(raw)
		if err != nil {
			return models.ArchivedEvent{}, &apperror.ParseError{Parser: "csv", Field: "properties", Value: raw, Err: err}
		}
		obj, err := v.Object()
		if err != nil {
			return models.ArchivedEvent{}, &apperror.ParseError{Parser: "csv", Field: "properties", Value: raw, Err: err}
		}
		obj.Visit(func(key []byte, val *fastjson.Value) {
			props[string(key)] = jsonValue(val)
		})
	}

	return models.ArchivedEvent{
		Time:       t,
		Level:      level,
		Logger:     row.Logger,
		Thread:     row.Thread,
		Message:    row.Message,
		Error:      row.Error,
		Properties: props,
	}, nil
}
