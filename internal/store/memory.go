package store

import (
	"context"
	"sync"

	"fjacquet/logmongo/internal/connection"
)

// InsertCall records one InsertOne or InsertMany call.
type InsertCall struct {
	Namespace string
	Many      bool
	Documents []interface{}
}

// MemoryProvider keeps documents in memory. It is used by tests and by
// dry runs.
type MemoryProvider struct {
	mu     sync.Mutex
	calls  []InsertCall
	err    error
	pings  int
	closed bool
}

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

// SetError makes every following insert and ping fail with err. nil clears it.
func (p *MemoryProvider) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *MemoryProvider) Collection(_ context.Context, target connection.Target) (CollectionWriter, error) {
	return &memoryCollection{provider: p, namespace: target.Namespace()}, nil
}

func (p *MemoryProvider) Ping(context.Context, connection.Target) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pings++
	return p.err
}

func (p *MemoryProvider) Close(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Calls returns the recorded insert calls in order.
func (p *MemoryProvider) Calls() []InsertCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]InsertCall, len(p.calls))
	copy(out, p.calls)
	return out
}

// Documents returns every document stored in namespace ("db.collection"), in
// insertion order.
func (p *MemoryProvider) Documents(namespace string) []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	var docs []interface{}
	for _, c := range p.calls {
		if c.Namespace == namespace {
			docs = append(docs, c.Documents...)
		}
	}
	return docs
}

// Pings returns how often Ping was called.
func (p *MemoryProvider) Pings() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pings
}

// Closed reports whether Close was called.
func (p *MemoryProvider) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *MemoryProvider) record(call InsertCall) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.calls = append(p.calls, call)
	return nil
}

type memoryCollection struct {
	provider  *MemoryProvider
	namespace string
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.provider.record(InsertCall{Namespace: c.namespace, Documents: []interface{}{doc}})
}

func (c *memoryCollection) InsertMany(ctx context.Context, docs []interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := make([]interface{}, len(docs))
	copy(copied, docs)
	return c.provider.record(InsertCall{Namespace: c.namespace, Many: true, Documents: copied})
}
