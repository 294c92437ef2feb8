package layout

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"fjacquet/logmongo/internal/models"

	"github.com/sirupsen/logrus"
)

// Pattern renders a text pattern such as "%date %level [%logger] %message".
//
// Supported conversions: %timestamp, %date{layout}, %level, %message,
// %logger, %thread, %exception, %property{key}, %newline and %% for a
// literal percent sign. %date without an argument uses RFC 3339.
type Pattern struct {
	source   string
	segments []segment
}

type segment func(sb *strings.Builder, entry *logrus.Entry)

// NewPattern compiles a pattern. Unknown conversions are rejected.
func NewPattern(pattern string) (*Pattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern layout requires a pattern")
	}

	p := &Pattern{source: pattern}
	var literal strings.Builder
	flush := func() {
		if literal.Len() == 0 {
			return
		}
		text := literal.String()
		p.segments = append(p.segments, func(sb *strings.Builder, _ *logrus.Entry) {
			sb.WriteString(text)
		})
		literal.Reset()
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			literal.WriteRune(runes[i])
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '%' {
			literal.WriteRune('%')
			i++
			continue
		}

		j := i + 1
		for j < len(runes) && unicode.IsLetter(runes[j]) {
			j++
		}
		name := string(runes[i+1 : j])
		if name == "" {
			return nil, fmt.Errorf("pattern %q: dangling %% at offset %d", pattern, i)
		}

		arg := ""
		hasArg := false
		if j < len(runes) && runes[j] == '{' {
			end := j + 1
			for end < len(runes) && runes[end] != '}' {
				end++
			}
			if end == len(runes) {
				return nil, fmt.Errorf("pattern %q: unterminated argument for %%%s", pattern, name)
			}
			arg = string(runes[j+1 : end])
			hasArg = true
			j = end + 1
		}

		seg, err := conversion(name, arg, hasArg)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		flush()
		p.segments = append(p.segments, seg)
		i = j - 1
	}
	flush()

	return p, nil
}

func conversion(name, arg string, hasArg bool) (segment, error) {
	switch name {
	case "timestamp":
		return func(sb *strings.Builder, e *logrus.Entry) {
			fmt.Fprintf(sb, "%d", e.Time.UnixMilli())
		}, nil
	case "date":
		layout := time.RFC3339
		if hasArg && arg != "" {
			layout = arg
		}
		return func(sb *strings.Builder, e *logrus.Entry) {
			sb.WriteString(e.Time.UTC().Format(layout))
		}, nil
	case "level":
		return func(sb *strings.Builder, e *logrus.Entry) {
			sb.WriteString(models.LevelName(e))
		}, nil
	case "message":
		return func(sb *strings.Builder, e *logrus.Entry) {
			sb.WriteString(e.Message)
		}, nil
	case "logger":
		return func(sb *strings.Builder, e *logrus.Entry) {
			name, _ := models.LoggerName(e)
			sb.WriteString(name)
		}, nil
	case "thread":
		return func(sb *strings.Builder, e *logrus.Entry) {
			name, _ := models.ThreadName(e)
			sb.WriteString(name)
		}, nil
	case "exception":
		return func(sb *strings.Builder, e *logrus.Entry) {
			if err := models.EventError(e); err != nil {
				sb.WriteString(err.Error())
			}
		}, nil
	case "property":
		if arg == "" {
			return nil, fmt.Errorf("%%property requires a key, e.g. %%property{user}")
		}
		return func(sb *strings.Builder, e *logrus.Entry) {
			if v, ok := models.Property(e, arg); ok && v != nil {
				fmt.Fprint(sb, v)
			}
		}, nil
	case "newline":
		return func(sb *strings.Builder, _ *logrus.Entry) {
			sb.WriteByte('\n')
		}, nil
	default:
		return nil, fmt.Errorf("unknown conversion %%%s", name)
	}
}

// Format renders the pattern as a string.
func (p *Pattern) Format(entry *logrus.Entry) (interface{}, error) {
	var sb strings.Builder
	for _, seg := range p.segments {
		seg(&sb, entry)
	}
	return sb.String(), nil
}

// String returns the source pattern.
func (p *Pattern) String() string {
	return p.source
}
