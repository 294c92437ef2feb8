// Package appender persists logrus entries to MongoDB.
//
// An Appender is a logrus.Hook. Documents are built on the caller's
// goroutine and written by a single background worker, so logging never
// waits on the database. Write failures are reported through the error
// handler; only configuration errors and ErrClosed reach the caller.
package appender

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fjacquet/logmongo/internal/apperror"
	"fjacquet/logmongo/internal/connection"
	"fjacquet/logmongo/internal/document"
	"fjacquet/logmongo/internal/logging"
	"fjacquet/logmongo/internal/store"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBufferSize   = 1000
	DefaultWriteTimeout = 5 * time.Second
)

// Options configures an Appender. Builder, Resolver and Provider are required.
type Options struct {
	Builder  *document.Builder
	Resolver *connection.Resolver
	Provider store.Provider

	// Levels the hook fires for; empty means all levels.
	Levels       []logrus.Level
	BufferSize   int
	WriteTimeout time.Duration

	// ErrorHandler receives field, queue and write errors. It is called from
	// the logging goroutine and from the worker and must not block.
	ErrorHandler func(error)

	// Logger receives the appender's own diagnostics. It must not be a logger
	// this appender is attached to.
	Logger logging.Logger
}

type job struct {
	target connection.Target
	docs   []interface{}
	many   bool
}

// Appender writes log events to a MongoDB collection.
type Appender struct {
	builder      *document.Builder
	resolver     *connection.Resolver
	provider     store.Provider
	levels       []logrus.Level
	writeTimeout time.Duration
	onError      func(error)
	logger       logging.Logger

	queue chan job
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	closeOnce sync.Once
	closeErr  error

	stats counters
}

// New creates an Appender and starts its worker.
func New(opts Options) (*Appender, error) {
	if opts.Builder == nil {
		return nil, errors.New("appender requires a document builder")
	}
	if opts.Resolver == nil {
		return nil, errors.New("appender requires a connection resolver")
	}
	if opts.Provider == nil {
		return nil, errors.New("appender requires a store provider")
	}

	levels := opts.Levels
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogrusAdapter("warn", "text")
	}
	onError := opts.ErrorHandler
	if onError == nil {
		onError = NewErrorReporter(logger, 1).Report
	}

	a := &Appender{
		builder:      opts.Builder,
		resolver:     opts.Resolver,
		provider:     opts.Provider,
		levels:       append([]logrus.Level(nil), levels...),
		writeTimeout: writeTimeout,
		onError:      onError,
		logger:       logger,
		queue:        make(chan job, bufferSize),
		done:         make(chan struct{}),
	}
	a.stats.start(time.Now())

	go a.run()
	return a, nil
}

// Levels implements logrus.Hook.
func (a *Appender) Levels() []logrus.Level {
	return a.levels
}

// Accepts reports whether events of level are persisted by the hook.
func (a *Appender) Accepts(level logrus.Level) bool {
	for _, l := range a.levels {
		if l == level {
			return true
		}
	}
	return false
}

// Fire implements logrus.Hook.
func (a *Appender) Fire(entry *logrus.Entry) error {
	return a.AppendOne(entry)
}

// AppendOne builds the document for entry and queues a single insert.
func (a *Appender) AppendOne(entry *logrus.Entry) error {
	if entry == nil {
		return nil
	}
	target, err := a.resolver.Resolve()
	if err != nil {
		return err
	}

	doc := a.build(entry)
	a.stats.appended.Add(1)
	return a.enqueue(job{target: target, docs: []interface{}{doc}})
}

// AppendMany builds one document per entry, in order, and queues them as a
// single bulk insert. An empty slice does nothing.
func (a *Appender) AppendMany(entries []*logrus.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	target, err := a.resolver.Resolve()
	if err != nil {
		return err
	}

	docs := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		docs = append(docs, a.build(entry))
	}
	if len(docs) == 0 {
		return nil
	}
	a.stats.appended.Add(int64(len(docs)))
	return a.enqueue(job{target: target, docs: docs, many: true})
}

func (a *Appender) build(entry *logrus.Entry) interface{} {
	doc, err := a.builder.Build(entry)
	if err != nil {
		a.onError(err)
	}
	return doc
}

func (a *Appender) enqueue(j job) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return apperror.ErrClosed
	}
	select {
	case a.queue <- j:
	default:
		a.stats.dropped.Add(int64(len(j.docs)))
		a.onError(fmt.Errorf("%w: dropped %d document(s) for %s", apperror.ErrQueueFull, len(j.docs), j.target.Namespace()))
	}
	return nil
}

func (a *Appender) run() {
	defer close(a.done)
	for j := range a.queue {
		a.write(j)
	}
}

func (a *Appender) write(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), a.writeTimeout)
	defer cancel()

	op := "InsertOne"
	if j.many {
		op = "InsertMany"
	}
	start := time.Now()

	err := a.insert(ctx, j)
	if err != nil {
		a.stats.failed.Add(int64(len(j.docs)))
		a.onError(&apperror.WriteError{
			Operation:  op,
			Collection: j.target.Namespace(),
			Documents:  len(j.docs),
			Err:        err,
		})
		return
	}

	a.stats.written.Add(int64(len(j.docs)))
	a.stats.lastWrite.Store(time.Now().UnixNano())
	a.logger.WithFields(
		logging.F(logging.FieldOperation, op),
		logging.F(logging.FieldCollection, j.target.Namespace()),
		logging.F(logging.FieldCount, len(j.docs)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
	).Debug("Documents written")
}

func (a *Appender) insert(ctx context.Context, j job) error {
	coll, err := a.provider.Collection(ctx, j.target)
	if err != nil {
		return err
	}
	if j.many {
		return coll.InsertMany(ctx, j.docs)
	}
	return coll.InsertOne(ctx, j.docs[0])
}

// Close stops accepting events, waits for queued writes to finish and
// closes the provider. If ctx ends first, Close returns ctx's error and the
// provider is closed once the worker has finished the remaining writes.
// Close is idempotent.
func (a *Appender) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()

		select {
		case <-a.done:
			a.closeErr = a.closeProvider()
		case <-ctx.Done():
			a.closeErr = fmt.Errorf("appender did not drain before shutdown: %w", ctx.Err())
			go func() {
				<-a.done
				if err := a.closeProvider(); err != nil {
					a.logger.WithError(err).Warn("Failed to close store provider")
				}
			}()
		}
		s := a.Stats()
		a.logger.WithFields(
			logging.F("written", s.Written),
			logging.F("failed", s.Failed),
			logging.F("dropped", s.Dropped),
		).Debug("Appender closed")
	})
	return a.closeErr
}

// closeProvider gives the provider its own deadline, independent of the
// caller's context.
func (a *Appender) closeProvider() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.writeTimeout)
	defer cancel()
	return a.provider.Close(ctx)
}
