package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigurationError
		expected string
	}{
		{
			name: "without cause",
			err: &ConfigurationError{
				Setting: "connection_string",
				Reason:  "must provide a valid connection string",
			},
			expected: "invalid configuration for connection_string: must provide a valid connection string",
		},
		{
			name: "with cause",
			err: &ConfigurationError{
				Setting: "connection_string",
				Reason:  "unparsable",
				Err:     errors.New("scheme must be mongodb"),
			},
			expected: "invalid configuration for connection_string: unparsable: scheme must be mongodb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestConfigurationError_Unwrap(t *testing.T) {
	cause := errors.New("bad uri")
	err := &ConfigurationError{Setting: "connection_string", Reason: "unparsable", Err: cause}

	assert.True(t, errors.Is(err, cause))

	var target *ConfigurationError
	assert.True(t, errors.As(error(err), &target))
	assert.Equal(t, "connection_string", target.Setting)
}

func TestFieldError(t *testing.T) {
	cause := errors.New("boom")
	err := &FieldError{Field: "user", Err: cause}

	assert.Equal(t, "field 'user': boom", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestWriteError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &WriteError{Operation: "insertMany", Collection: "logStore.logs", Documents: 3, Err: cause}

	assert.Equal(t, "insertMany of 3 document(s) into logStore.logs failed: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestParseError(t *testing.T) {
	err := &ParseError{Parser: "json", Field: "time", Value: "yesterday", Err: errors.New("bad time")}

	assert.Equal(t, "json: failed to parse time='yesterday': bad time", err.Error())
	assert.Equal(t, "bad time", err.Unwrap().Error())
}

func TestInvalidFormatError(t *testing.T) {
	err := &InvalidFormatError{FilePath: "app.log", ExpectedFormat: "log4net XmlLayout", Msg: "no events"}

	assert.Equal(t, "invalid format in file 'app.log': no events. Expected: log4net XmlLayout", err.Error())
}

func TestSentinels(t *testing.T) {
	wrapped := errors.Join(errors.New("other"), ErrQueueFull)

	assert.True(t, errors.Is(wrapped, ErrQueueFull))
	assert.False(t, errors.Is(wrapped, ErrClosed))
}
