package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fjacquet/logmongo/internal/connection"
	"fjacquet/logmongo/internal/logging"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoProvider opens one client per distinct connection string and keeps
// it for the life of the provider.
type MongoProvider struct {
	logger logging.Logger
	// AppName is reported to the server in the handshake.
	AppName string

	mu      sync.Mutex
	clients map[string]*mongo.Client
	closed  bool
}

// NewMongoProvider creates a provider; clients are connected lazily.
func NewMongoProvider(logger logging.Logger) *MongoProvider {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &MongoProvider{
		logger:  logger,
		AppName: "logmongo",
		clients: make(map[string]*mongo.Client),
	}
}

func (p *MongoProvider) client(ctx context.Context, uri string) (*mongo.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.New("provider closed")
	}
	if c, ok := p.clients[uri]; ok {
		return c, nil
	}

	opts := options.Client().ApplyURI(uri)
	if p.AppName != "" {
		opts.SetAppName(p.AppName)
	}
	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", connection.Redact(uri), err)
	}
	p.clients[uri] = c
	p.logger.WithField(logging.FieldTarget, connection.Redact(uri)).Debug("MongoDB client created")
	return c, nil
}

// Collection returns a writer for target.Database/target.Collection.
func (p *MongoProvider) Collection(ctx context.Context, target connection.Target) (CollectionWriter, error) {
	c, err := p.client(ctx, target.ConnectionString)
	if err != nil {
		return nil, err
	}
	return &mongoCollection{coll: c.Database(target.Database).Collection(target.Collection)}, nil
}

// Ping checks that the deployment behind target answers.
func (p *MongoProvider) Ping(ctx context.Context, target connection.Target) error {
	c, err := p.client(ctx, target.ConnectionString)
	if err != nil {
		return err
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping %s: %w", target.Redacted(), err)
	}
	return nil
}

// Close disconnects every client. Further use of the provider fails.
func (p *MongoProvider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for uri, c := range p.clients {
		if err := c.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect %s: %w", connection.Redact(uri), err))
		}
	}
	p.clients = nil
	return errors.Join(errs...)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc interface{}) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return err
}

func (c *mongoCollection) InsertMany(ctx context.Context, docs []interface{}) error {
	_, err := c.coll.InsertMany(ctx, docs)
	return err
}
