package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "", config.Appender.ConnectionString)
	assert.Equal(t, "", config.Appender.ConnectionStringName)
	assert.Equal(t, "logs", config.Appender.CollectionName)
	assert.Empty(t, config.Appender.Levels)
	assert.Equal(t, 1000, config.Appender.BufferSize)
	assert.Equal(t, 5*time.Second, config.Appender.WriteTimeout())
	assert.Equal(t, 1.0, config.Appender.ErrorReportPerSecond)
	assert.Empty(t, config.Appender.Fields)
	assert.Empty(t, config.Appender.Legacy.SetKeys())
	assert.Empty(t, config.ConnectionStrings)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	testEnvVars := map[string]string{
		"LOGMONGO_LOG_LEVEL":                        "debug",
		"LOGMONGO_LOG_FORMAT":                       "json",
		"LOGMONGO_APPENDER_CONNECTION_STRING":       "mongodb://env-host/envdb",
		"LOGMONGO_APPENDER_COLLECTION_NAME":         "audit",
		"LOGMONGO_APPENDER_BUFFER_SIZE":             "50",
		"LOGMONGO_APPENDER_WRITE_TIMEOUT_SECONDS":   "10",
		"LOGMONGO_APPENDER_LEVELS":                  "warn,error",
		"LOGMONGO_APPENDER_ERROR_REPORT_PER_SECOND": "0.5",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "mongodb://env-host/envdb", config.Appender.ConnectionString)
	assert.Equal(t, "audit", config.Appender.CollectionName)
	assert.Equal(t, 50, config.Appender.BufferSize)
	assert.Equal(t, 10*time.Second, config.Appender.WriteTimeout())
	assert.Equal(t, []string{"warn", "error"}, config.Appender.Levels)
	assert.Equal(t, 0.5, config.Appender.ErrorReportPerSecond)

	levels, err := config.Appender.ParsedLevels()
	require.NoError(t, err)
	assert.Equal(t, []logrus.Level{logrus.WarnLevel, logrus.ErrorLevel}, levels)
}

const fileConfig = `
log:
  level: "warn"
  format: "json"
appender:
  connection_string_name: "primary"
  collection_name: "events"
  levels: ["info", "WARN", "fatal"]
  fields:
    - name: ts
      layout: timestamp
    - name: lvl
      layout: level
    - name: app
      layout: literal
      value: billing
    - name: user
      layout: property
      key: user_id
    - name: line
      layout: pattern
      pattern: "%level %message"
  legacy:
    host: "db.internal"
    port: 27017
    password: "old"
connection_strings:
  Primary: "mongodb://file-host:27017/filedb"
`

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	writeConfig(t, filepath.Join(tempDir, "logmongo.yaml"), fileConfig)
	chdir(t, tempDir)

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "primary", config.Appender.ConnectionStringName)
	assert.Equal(t, "events", config.Appender.CollectionName)
	assert.Equal(t, "mongodb://file-host:27017/filedb", config.ConnectionStrings["primary"])

	levels, err := config.Appender.ParsedLevels()
	require.NoError(t, err)
	assert.Equal(t, []logrus.Level{logrus.InfoLevel, logrus.WarnLevel, logrus.FatalLevel}, levels)

	require.Len(t, config.Appender.Fields, 5)
	names := make([]string, len(config.Appender.Fields))
	for i, f := range config.Appender.Fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"ts", "lvl", "app", "user", "line"}, names)
	assert.Equal(t, "billing", config.Appender.Fields[2].Value)
	assert.Equal(t, "user_id", config.Appender.Fields[3].Key)
	assert.Equal(t, "%level %message", config.Appender.Fields[4].LayoutSpec().Pattern)

	assert.Equal(t, []string{"host", "port", "password"}, config.Appender.Legacy.SetKeys())
}

func TestInitializeConfig_ExplicitPath(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeConfig(t, path, "appender:\n  collection_name: custom\n")

	config, err := InitializeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", config.Appender.CollectionName)

	_, err = InitializeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestInitializeConfig_FallbackConfigName(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	writeConfig(t, filepath.Join(tempDir, "config.yaml"), "appender:\n  buffer_size: 7\n")
	chdir(t, tempDir)

	config, err := InitializeConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, config.Appender.BufferSize)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	writeConfig(t, filepath.Join(tempDir, "logmongo.yaml"), `
log:
  level: "warn"
appender:
  collection_name: "from_file"
  buffer_size: 20
`)
	t.Setenv("LOGMONGO_LOG_LEVEL", "error")
	t.Setenv("LOGMONGO_APPENDER_BUFFER_SIZE", "25")
	chdir(t, tempDir)

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)                   // env var wins
	assert.Equal(t, "from_file", config.Appender.CollectionName) // config file value
	assert.Equal(t, 25, config.Appender.BufferSize)              // env var wins
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{
			name:         "invalid log level",
			modifyConfig: func(c *Config) { c.Log.Level = "loud" },
			expectError:  "invalid log level: loud",
		},
		{
			name:         "invalid log format",
			modifyConfig: func(c *Config) { c.Log.Format = "xml" },
			expectError:  "invalid log format: xml",
		},
		{
			name:         "invalid appender level",
			modifyConfig: func(c *Config) { c.Appender.Levels = []string{"info", "chatty"} },
			expectError:  "invalid appender level: chatty",
		},
		{
			name:         "buffer size zero",
			modifyConfig: func(c *Config) { c.Appender.BufferSize = 0 },
			expectError:  "appender.buffer_size must be at least 1",
		},
		{
			name:         "timeout too large",
			modifyConfig: func(c *Config) { c.Appender.WriteTimeoutSeconds = 301 },
			expectError:  "appender.write_timeout_seconds must be between 1 and 300",
		},
		{
			name:         "negative report rate",
			modifyConfig: func(c *Config) { c.Appender.ErrorReportPerSecond = -1 },
			expectError:  "appender.error_report_per_second must not be negative",
		},
		{
			name: "field without name",
			modifyConfig: func(c *Config) {
				c.Appender.Fields = []FieldConfig{{Layout: "message"}}
			},
			expectError: "appender.fields[0]: name is required",
		},
		{
			name: "duplicate field name",
			modifyConfig: func(c *Config) {
				c.Appender.Fields = []FieldConfig{
					{Name: "msg", Layout: "message"},
					{Name: "msg", Layout: "level"},
				}
			},
			expectError: "duplicate field name 'msg' (already used by fields[0])",
		},
		{
			name: "unknown layout",
			modifyConfig: func(c *Config) {
				c.Appender.Fields = []FieldConfig{{Name: "x", Layout: "stacktrace"}}
			},
			expectError: "unknown layout 'stacktrace'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modifyConfig(config)

			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestValidateConfig_MissingConnectionStringIsAccepted(t *testing.T) {
	config := validConfig()
	config.Appender.ConnectionString = ""
	config.Appender.ConnectionStringName = ""
	assert.NoError(t, validateConfig(config))
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	tests := []struct {
		name      string
		log       LogConfig
		level     logrus.Level
		formatter logrus.Formatter
	}{
		{"text format info level", LogConfig{Level: "info", Format: "text"}, logrus.InfoLevel, &logrus.TextFormatter{}},
		{"json format debug level", LogConfig{Level: "debug", Format: "json"}, logrus.DebugLevel, &logrus.JSONFormatter{}},
		{"invalid level falls back to info", LogConfig{Level: "nope", Format: "text"}, logrus.InfoLevel, &logrus.TextFormatter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := ConfigureLoggingFromConfig(&Config{Log: tt.log})
			require.NotNil(t, logger)
			assert.Equal(t, tt.level, logger.GetLevel())
			assert.IsType(t, tt.formatter, logger.Formatter)
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("LOGMONGO_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("LOGMONGO_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("LOGMONGO_TEST_UNSET_VALUE", "fallback"))
}

func validConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Appender: AppenderConfig{
			CollectionName:       "logs",
			BufferSize:           1000,
			WriteTimeoutSeconds:  5,
			ErrorReportPerSecond: 1,
		},
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
}

// clearTestEnvVars unsets every variable these tests rely on; t.Setenv
// restores the previous values afterwards.
func clearTestEnvVars(t *testing.T) {
	envVars := []string{
		"LOGMONGO_LOG_LEVEL",
		"LOGMONGO_LOG_FORMAT",
		"LOGMONGO_APPENDER_CONNECTION_STRING",
		"LOGMONGO_APPENDER_CONNECTION_STRING_NAME",
		"LOGMONGO_APPENDER_COLLECTION_NAME",
		"LOGMONGO_APPENDER_LEVELS",
		"LOGMONGO_APPENDER_BUFFER_SIZE",
		"LOGMONGO_APPENDER_WRITE_TIMEOUT_SECONDS",
		"LOGMONGO_APPENDER_ERROR_REPORT_PER_SECOND",
	}
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}
}
