// Package store provides the collection handles the appender writes through.
package store

import (
	"context"

	"fjacquet/logmongo/internal/connection"
)

// CollectionWriter inserts documents into one collection.
type CollectionWriter interface {
	InsertOne(ctx context.Context, doc interface{}) error
	InsertMany(ctx context.Context, docs []interface{}) error
}

// Provider hands out collection writers for resolved targets.
type Provider interface {
	Collection(ctx context.Context, target connection.Target) (CollectionWriter, error)
	Ping(ctx context.Context, target connection.Target) error
	Close(ctx context.Context) error
}
