// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fjacquet/logmongo/internal/layout"
	"fjacquet/logmongo/internal/logging"
	"fjacquet/logmongo/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "LOGMONGO"

// Config represents the complete application configuration
type Config struct {
	Log LogConfig `mapstructure:"log" yaml:"log"`

	Appender AppenderConfig `mapstructure:"appender" yaml:"appender"`

	// ConnectionStrings are named connection strings the appender can
	// reference through connection_string_name.
	ConnectionStrings map[string]string `mapstructure:"connection_strings" yaml:"-"`
}

// LogConfig configures the application's own logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppenderConfig configures the MongoDB appender.
type AppenderConfig struct {
	ConnectionString     string        `mapstructure:"connection_string" yaml:"-"`
	ConnectionStringName string        `mapstructure:"connection_string_name" yaml:"connection_string_name"`
	CollectionName       string        `mapstructure:"collection_name" yaml:"collection_name"`
	Levels               []string      `mapstructure:"levels" yaml:"levels"`
	BufferSize           int           `mapstructure:"buffer_size" yaml:"buffer_size"`
	WriteTimeoutSeconds  int           `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	ErrorReportPerSecond float64       `mapstructure:"error_report_per_second" yaml:"error_report_per_second"`
	Fields               []FieldConfig `mapstructure:"fields" yaml:"fields"`
	Legacy               LegacyConfig  `mapstructure:"legacy" yaml:"-"`
}

// FieldConfig is one configured document field.
type FieldConfig struct {
	Name    string      `mapstructure:"name" yaml:"name"`
	Layout  string      `mapstructure:"layout" yaml:"layout"`
	Value   interface{} `mapstructure:"value" yaml:"value,omitempty"`
	Key     string      `mapstructure:"key" yaml:"key,omitempty"`
	Format  string      `mapstructure:"format" yaml:"format,omitempty"`
	Pattern string      `mapstructure:"pattern" yaml:"pattern,omitempty"`
}

// LayoutSpec converts the field configuration into a layout specification.
func (f FieldConfig) LayoutSpec() layout.Spec {
	return layout.Spec{
		Kind:    layout.Kind(f.Layout),
		Value:   f.Value,
		Key:     f.Key,
		Format:  f.Format,
		Pattern: f.Pattern,
	}
}

// LegacyConfig holds the flat connection settings of older configurations.
// Deprecated: the values are accepted so old files still load, but they are
// never used. Configure connection_string or connection_string_name instead.
type LegacyConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	DatabaseName string `mapstructure:"database_name"`
	UserName     string `mapstructure:"user_name"`
	Password     string `mapstructure:"password"`
}

// SetKeys returns the names of the legacy settings that have a value.
func (l LegacyConfig) SetKeys() []string {
	var keys []string
	if l.Host != "" {
		keys = append(keys, "host")
	}
	if l.Port != 0 {
		keys = append(keys, "port")
	}
	if l.DatabaseName != "" {
		keys = append(keys, "database_name")
	}
	if l.UserName != "" {
		keys = append(keys, "user_name")
	}
	if l.Password != "" {
		keys = append(keys, "password")
	}
	return keys
}

// WriteTimeout returns the configured write timeout.
func (a AppenderConfig) WriteTimeout() time.Duration {
	return time.Duration(a.WriteTimeoutSeconds) * time.Second
}

// ParsedLevels returns the configured levels; nil means all levels.
func (a AppenderConfig) ParsedLevels() ([]logrus.Level, error) {
	if len(a.Levels) == 0 {
		return nil, nil
	}
	levels := make([]logrus.Level, 0, len(a.Levels))
	for _, name := range a.Levels {
		level, ok := models.ParseLevel(name)
		if !ok {
			return nil, fmt.Errorf("invalid appender level: %s", name)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
// An empty configFile searches the standard locations.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Read config file (optional unless given explicitly)
	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 4. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(".logmongo")
	v.AddConfigPath("$HOME/.logmongo")

	for _, name := range []string{"logmongo", "config"} {
		v.SetConfigName(name)
		err := v.ReadInConfig()
		if err == nil {
			return nil
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Fprintf(os.Stderr, "Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
			return nil
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Appender defaults
	v.SetDefault("appender.connection_string", "")
	v.SetDefault("appender.connection_string_name", "")
	v.SetDefault("appender.collection_name", "logs")
	v.SetDefault("appender.levels", []string{})
	v.SetDefault("appender.buffer_size", 1000)
	v.SetDefault("appender.write_timeout_seconds", 5)
	v.SetDefault("appender.error_report_per_second", 1.0)
	v.SetDefault("appender.fields", []map[string]interface{}{})

	// Legacy settings are only bound so they can be reported
	v.SetDefault("appender.legacy.host", "")
	v.SetDefault("appender.legacy.port", 0)
	v.SetDefault("appender.legacy.database_name", "")
	v.SetDefault("appender.legacy.user_name", "")
	v.SetDefault("appender.legacy.password", "")

	v.SetDefault("connection_strings", map[string]string{})
}

// validateConfig validates the configuration values. A missing connection
// string is not an error here: it is reported when the first event is written.
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	a := config.Appender
	if _, err := a.ParsedLevels(); err != nil {
		return err
	}

	if a.BufferSize < 1 {
		return fmt.Errorf("appender.buffer_size must be at least 1, got: %d", a.BufferSize)
	}

	if a.WriteTimeoutSeconds < 1 || a.WriteTimeoutSeconds > 300 {
		return fmt.Errorf("appender.write_timeout_seconds must be between 1 and 300, got: %d", a.WriteTimeoutSeconds)
	}

	if a.ErrorReportPerSecond < 0 {
		return fmt.Errorf("appender.error_report_per_second must not be negative, got: %g", a.ErrorReportPerSecond)
	}

	// Validate fields
	seen := make(map[string]int, len(a.Fields))
	for i, f := range a.Fields {
		if f.Name == "" {
			return fmt.Errorf("appender.fields[%d]: name is required", i)
		}
		if prev, dup := seen[f.Name]; dup {
			return fmt.Errorf("appender.fields[%d]: duplicate field name '%s' (already used by fields[%d])", i, f.Name, prev)
		}
		seen[f.Name] = i
		if !layout.IsKnownKind(f.Layout) {
			return fmt.Errorf("appender.fields[%d]: unknown layout '%s' (known: %s)", i, f.Layout, knownKinds())
		}
	}

	return nil
}

func knownKinds() string {
	names := make([]string, len(layout.Kinds))
	for i, k := range layout.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// ConfigureLoggingFromConfig returns a new logger set up from config.Log.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	level, ok := logging.ParseLevel(config.Log.Level)
	if !ok {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
	}
	logger.SetLevel(level)
	logger.SetFormatter(logging.NewFormatter(config.Log.Format))

	return logger
}
