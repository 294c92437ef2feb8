// Package replay provides the import command, which replays archived log
// files into the configured collection.
package replay

import (
	"context"
	"fmt"

	"fjacquet/logmongo/cmd/root"
	"fjacquet/logmongo/internal/container"
	"fjacquet/logmongo/internal/importer"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	input     string
	format    string
	batchSize int
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import archived log files into MongoDB",
	Long: `Import an archived log file into the configured collection.
Supported formats are JSON lines (logrus JSON output), CSV and log4net XML.
Files ending in .gz or .zst are decompressed on the fly. Every imported
document carries the import_id of its run.`,
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&input, "input", "i", "", "Archived log file to import")
	Cmd.Flags().StringVar(&format, "format", "", "Input format (json, csv, xml); detected from the extension when empty")
	Cmd.Flags().IntVar(&batchSize, "batch-size", importer.DefaultBatchSize, "Number of events per bulk insert")
	_ = Cmd.MarkFlagRequired("input")
}

func importFunc(cmd *cobra.Command, args []string) error {
	if input == "" {
		return fmt.Errorf("an input file is required")
	}

	c, memory, err := root.NewContainer(container.WithImportBatchSize(batchSize))
	if err != nil {
		return err
	}
	target, err := c.GetResolver().Resolve()
	if err != nil {
		_ = c.Close(context.Background())
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, importErr := c.GetImporter().ImportFile(ctx, input, importer.Format(format))

	flushCtx, cancel := context.WithTimeout(context.Background(), root.AppConfig.Appender.WriteTimeout()*2)
	defer cancel()
	closeErr := c.Close(flushCtx)

	if importErr != nil {
		return fmt.Errorf("import of %s failed after %d event(s): %w", input, result.Sent, importErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to flush imported events: %w", closeErr)
	}

	root.Log.WithFields(logrus.Fields{
		"import_id":   result.ImportID,
		"read":        result.Read,
		"skipped":     result.Skipped,
		"sent":        result.Sent,
		"batches":     result.Batches,
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Import completed")

	if memory != nil {
		return root.PrintDocuments(cmd.OutOrStdout(), memory.Documents(target.Namespace()))
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d event(s) from %s into %s (import_id %s)\n",
		result.Sent, result.Read, input, target.Namespace(), result.ImportID)
	return err
}
