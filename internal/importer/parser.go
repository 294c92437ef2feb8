// Package importer replays archived log files through the appender so they
// land in the same collection, with the same document shape, as live events.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fjacquet/logmongo/internal/models"

	"github.com/shopspring/decimal"
)

// Parser reads archived log records.
type Parser interface {
	// Parse reads every record from r. Records are returned in file order.
	Parse(r io.Reader) ([]models.ArchivedEvent, error)
}

// GetParser returns the parser for format.
func GetParser(format Format) (Parser, error) {
	switch Format(strings.ToLower(string(format))) {
	case JSON:
		return NewJSONParser(), nil
	case CSV:
		return NewCSVParser(), nil
	case XML:
		return NewXMLParser(), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
}

// timeLayouts are tried in order for textual timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05,000",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

// propertyValue keeps plain decimal numbers as decimal.Decimal so they are
// stored as Decimal128, and plain integers as int64. Anything else, including
// numbers with leading zeros or exponents, stays text.
func propertyValue(s string) interface{} {
	if !isPlainNumber(s) {
		return s
	}
	if !strings.Contains(s, ".") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d
}

func isPlainNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasDot := strings.Cut(s, ".")
	if intPart == "" || (len(intPart) > 1 && intPart[0] == '0') {
		return false
	}
	if hasDot && frac == "" {
		return false
	}
	for _, part := range []string{intPart, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
