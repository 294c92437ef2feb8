// Package root contains the root command for the application
package root

import (
	"fmt"
	"io"

	"fjacquet/logmongo/internal/config"
	"fjacquet/logmongo/internal/container"
	"fjacquet/logmongo/internal/logging"
	"fjacquet/logmongo/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	ConfigFile       string
	ConnectionString string
	ConnectionName   string
	Collection       string
	DryRun           bool
}

var (
	// Log is the shared logger instance for commands. It never has the
	// MongoDB appender attached.
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "logmongo",
		Short: "A CLI tool to store log events in MongoDB collections.",
		Long: `logmongo persists log events to a MongoDB collection, either as a
fixed default document shape or as documents built from configured fields.
It can send ad-hoc events, replay archived log files and check the target.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to logmongo!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize and configure logging
			config.LoadEnv(Log)
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			AppConfig = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)
			return nil
		},
	}

	// SharedFlags holds the persistent flags accessible to all commands
	SharedFlags = CommonFlags{}

	// AppConfig is the configuration loaded before any subcommand runs
	AppConfig *config.Config
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: logmongo.yaml or config.yaml in ., .logmongo or $HOME/.logmongo)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConnectionString, "connection-string", "", "MongoDB connection string, overrides appender.connection_string")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConnectionName, "connection-name", "", "Name of a registered connection string, overrides appender.connection_string_name")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Collection, "collection", "", "Collection name, overrides appender.collection_name")
	Cmd.PersistentFlags().BoolVar(&SharedFlags.DryRun, "dry-run", false, "Keep documents in memory and print them instead of writing to MongoDB")
}

// LoadConfig loads the configuration and applies the command line overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
	if err != nil {
		return nil, err
	}
	ApplyOverrides(cfg, SharedFlags)
	return cfg, nil
}

// ApplyOverrides copies the non-empty connection flags into cfg.
func ApplyOverrides(cfg *config.Config, flags CommonFlags) {
	if flags.ConnectionString != "" {
		cfg.Appender.ConnectionString = flags.ConnectionString
	}
	if flags.ConnectionName != "" {
		cfg.Appender.ConnectionStringName = flags.ConnectionName
	}
	if flags.Collection != "" {
		cfg.Appender.CollectionName = flags.Collection
	}
}

// NewContainer wires the application from AppConfig. With --dry-run the
// documents go to the returned MemoryProvider instead of MongoDB.
func NewContainer(opts ...container.Option) (*container.Container, *store.MemoryProvider, error) {
	if AppConfig == nil {
		return nil, nil, fmt.Errorf("configuration not loaded")
	}

	all := []container.Option{container.WithLogger(logging.NewLogrusAdapterFromLogger(Log))}
	var memory *store.MemoryProvider
	if SharedFlags.DryRun {
		memory = store.NewMemoryProvider()
		all = append(all, container.WithProvider(memory))
	}
	all = append(all, opts...)

	c, err := container.NewContainer(AppConfig, all...)
	if err != nil {
		return nil, nil, err
	}
	return c, memory, nil
}

// PrintDocuments writes each document as relaxed extended JSON.
func PrintDocuments(w io.Writer, docs []interface{}) error {
	for _, doc := range docs {
		out, err := bson.MarshalExtJSONIndent(doc, false, false, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render document: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
			return err
		}
	}
	return nil
}
