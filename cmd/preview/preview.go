// Package preview provides the preview command, which shows the document the
// appender would store for a sample event.
package preview

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"fjacquet/logmongo/cmd/root"
	"fjacquet/logmongo/internal/container"
	"fjacquet/logmongo/internal/document"
	"fjacquet/logmongo/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	format  string
	message string
)

// Cmd represents the preview command
var Cmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the document stored for a sample event",
	Long: `Build the document for a sample log event with the configured fields
and print it. Nothing is written and no connection is needed.`,
	RunE: previewFunc,
}

func init() {
	Cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml or json)")
	Cmd.Flags().StringVarP(&message, "message", "m", "Payment of 42.50 CHF accepted", "Message of the sample event")
}

func previewFunc(cmd *cobra.Command, args []string) error {
	if root.AppConfig == nil {
		return fmt.Errorf("configuration not loaded")
	}
	builder, err := container.NewBuilder(root.AppConfig.Appender.Fields)
	if err != nil {
		return err
	}

	doc, err := builder.Build(SampleEntry(message))
	if err != nil {
		root.Log.WithError(err).Warn("Sample document rendered with errors")
	}

	out, err := Render(doc, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// SampleEntry returns a representative event carrying every kind of data a
// layout can read.
func SampleEntry(msg string) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	entry.Time = time.Now()
	entry.Level = logrus.WarnLevel
	entry.Message = msg
	entry.Data = logrus.Fields{
		models.LoggerKey: "logmongo.preview",
		models.ThreadKey: "main",
		"user":           "alice",
		"amount":         decimal.RequireFromString("42.50"),
		"attempt":        2,
		logrus.ErrorKey:  errors.New("upstream timeout"),
	}
	if pc, file, line, ok := runtime.Caller(0); ok {
		entry.Caller = &runtime.Frame{
			PC:       pc,
			File:     file,
			Line:     line,
			Function: runtime.FuncForPC(pc).Name(),
		}
	}
	return entry
}

// Render formats doc as YAML or relaxed extended JSON.
func Render(doc bson.D, format string) ([]byte, error) {
	switch format {
	case "yaml", "":
		return document.ToYAML(doc)
	case "json":
		out, err := bson.MarshalExtJSONIndent(doc, false, false, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to render document: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported preview format: %s", format)
	}
}
