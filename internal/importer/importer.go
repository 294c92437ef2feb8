package importer

import (
	"context"
	"fmt"
	"time"

	"fjacquet/logmongo/internal/logging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultBatchSize is the number of events submitted per bulk insert.
const DefaultBatchSize = 500

// ImportIDKey is the property stamped on every imported event.
const ImportIDKey = "import_id"

// Sink receives imported events. *appender.Appender implements it.
type Sink interface {
	AppendMany(entries []*logrus.Entry) error
	Accepts(level logrus.Level) bool
}

// Importer replays archived log files into a Sink.
type Importer struct {
	Sink      Sink
	BatchSize int
	logger    logging.Logger
}

// Result summarizes one import.
type Result struct {
	ImportID string
	File     string
	Format   Format
	Read     int
	Skipped  int
	Sent     int
	Batches  int
	Duration time.Duration
}

// NewImporter creates an Importer writing to sink.
func NewImporter(sink Sink, batchSize int, logger logging.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Importer{Sink: sink, BatchSize: batchSize, logger: logger}
}

// ImportFile parses path and submits its events in batches. An empty format
// is detected from the file name. Events whose level the sink does not
// accept are skipped. Cancelling ctx stops the import between batches.
func (im *Importer) ImportFile(ctx context.Context, path string, format Format) (Result, error) {
	start := time.Now()
	result := Result{ImportID: uuid.NewString(), File: path, Format: format}

	if result.Format == "" {
		detected, err := DetectFormat(path)
		if err != nil {
			return result, err
		}
		result.Format = detected
	}
	parser, err := GetParser(result.Format)
	if err != nil {
		return result, err
	}

	log := im.logger.WithFields(
		logging.F(logging.FieldInputFile, path),
		logging.F(logging.FieldFormat, string(result.Format)),
		logging.F(logging.FieldImportID, result.ImportID),
	)
	log.Info("Importing archived log file")

	in, err := OpenFile(path)
	if err != nil {
		return result, err
	}
	events, err := parser.Parse(in)
	closeErr := in.Close()
	if err != nil {
		return result, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if closeErr != nil {
		log.WithError(closeErr).Warn("Failed to close input file")
	}
	result.Read = len(events)

	batch := make([]*logrus.Entry, 0, im.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := im.Sink.AppendMany(batch); err != nil {
			return err
		}
		result.Sent += len(batch)
		result.Batches++
		batch = make([]*logrus.Entry, 0, im.BatchSize)
		return nil
	}

	for _, event := range events {
		if !im.Sink.Accepts(event.Level) {
			result.Skipped++
			continue
		}
		entry := event.ToEntry()
		entry.Data[ImportIDKey] = result.ImportID
		batch = append(batch, entry)
		if len(batch) >= im.BatchSize {
			if err := flush(); err != nil {
				result.Duration = time.Since(start)
				return result, err
			}
		}
	}
	if err := flush(); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	result.Duration = time.Since(start)
	log.Info("Import finished",
		logging.F("read", result.Read),
		logging.F("sent", result.Sent),
		logging.F("skipped", result.Skipped),
		logging.F("batches", result.Batches),
	)
	return result, nil
}
