// Package container provides dependency injection for the logmongo application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"fjacquet/logmongo/internal/appender"
	"fjacquet/logmongo/internal/apperror"
	"fjacquet/logmongo/internal/config"
	"fjacquet/logmongo/internal/connection"
	"fjacquet/logmongo/internal/document"
	"fjacquet/logmongo/internal/importer"
	"fjacquet/logmongo/internal/layout"
	"fjacquet/logmongo/internal/logging"
	"fjacquet/logmongo/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	registry connection.Registry
	resolver *connection.Resolver
	builder  *document.Builder
	provider store.Provider
	appender *appender.Appender
	importer *importer.Importer
}

// Option customizes container construction.
type Option func(*options)

type options struct {
	logger    logging.Logger
	provider  store.Provider
	batchSize int
}

// WithLogger replaces the logger built from the log configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProvider replaces the MongoDB provider, e.g. with a store.MemoryProvider.
func WithProvider(provider store.Provider) Option {
	return func(o *options) { o.provider = provider }
}

// WithImportBatchSize sets the importer batch size.
func WithImportBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
//
// A missing connection string is not an error here; it surfaces on the first
// append.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	if legacy := cfg.Appender.Legacy.SetKeys(); len(legacy) > 0 {
		logger.Warn("Deprecated appender.legacy settings are ignored; use connection_string or connection_string_name",
			logging.F("settings", legacy))
	}

	registry := connection.ChainRegistry{
		connection.NewMapRegistry(cfg.ConnectionStrings),
		connection.EnvRegistry{Prefix: connection.DefaultEnvPrefix},
	}
	resolver := &connection.Resolver{
		Registry:             registry,
		ConnectionString:     cfg.Appender.ConnectionString,
		ConnectionStringName: cfg.Appender.ConnectionStringName,
		CollectionName:       cfg.Appender.CollectionName,
	}

	builder, err := NewBuilder(cfg.Appender.Fields)
	if err != nil {
		return nil, err
	}

	levels, err := cfg.Appender.ParsedLevels()
	if err != nil {
		return nil, &apperror.ConfigurationError{Setting: "appender.levels", Reason: "invalid level", Err: err}
	}

	provider := o.provider
	if provider == nil {
		provider = store.NewMongoProvider(logger)
	}

	app, err := appender.New(appender.Options{
		Builder:      builder,
		Resolver:     resolver,
		Provider:     provider,
		Levels:       levels,
		BufferSize:   cfg.Appender.BufferSize,
		WriteTimeout: cfg.Appender.WriteTimeout(),
		ErrorHandler: appender.NewErrorReporter(logger, cfg.Appender.ErrorReportPerSecond).Report,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	imp := importer.NewImporter(app, o.batchSize, logger)

	logger.Debug("Container initialized successfully",
		logging.F("fields_count", len(cfg.Appender.Fields)),
		logging.F("default_shape", builder.UsesDefaultShape()),
		logging.F("shape_version", document.ShapeVersion))

	return &Container{
		logger:   logger,
		config:   cfg,
		registry: registry,
		resolver: resolver,
		builder:  builder,
		provider: provider,
		appender: app,
		importer: imp,
	}, nil
}

// NewBuilder creates the document builder for the configured fields.
func NewBuilder(fields []config.FieldConfig) (*document.Builder, error) {
	docFields := make([]document.Field, 0, len(fields))
	for i, f := range fields {
		l, err := layout.New(f.LayoutSpec())
		if err != nil {
			return nil, &apperror.ConfigurationError{
				Setting: fmt.Sprintf("appender.fields[%d]", i),
				Reason:  fmt.Sprintf("invalid layout for field '%s'", f.Name),
				Err:     err,
			}
		}
		docFields = append(docFields, document.Field{Name: f.Name, Layout: l})
	}
	return document.NewBuilder(docFields)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRegistry returns the named connection string registry.
func (c *Container) GetRegistry() connection.Registry {
	return c.registry
}

// GetResolver returns the connection resolver.
func (c *Container) GetResolver() *connection.Resolver {
	return c.resolver
}

// GetBuilder returns the document builder.
func (c *Container) GetBuilder() *document.Builder {
	return c.builder
}

// GetProvider returns the store provider.
func (c *Container) GetProvider() store.Provider {
	return c.provider
}

// GetAppender returns the appender.
func (c *Container) GetAppender() *appender.Appender {
	return c.appender
}

// GetImporter returns the archive importer.
func (c *Container) GetImporter() *importer.Importer {
	return c.importer
}

// Close flushes the appender and releases the database connections.
func (c *Container) Close(ctx context.Context) error {
	err := c.appender.Close(ctx)
	s := c.appender.Stats()
	c.logger.Debug("Container closed",
		logging.F("written", s.Written),
		logging.F("failed", s.Failed))
	return err
}
