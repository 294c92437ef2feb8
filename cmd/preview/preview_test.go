package preview_test

import (
	"bytes"
	"testing"

	"fjacquet/logmongo/cmd/preview"
	"fjacquet/logmongo/cmd/root"
	"fjacquet/logmongo/internal/config"
	"fjacquet/logmongo/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPreviewCommand_Metadata(t *testing.T) {
	assert.Equal(t, "preview", preview.Cmd.Use)
	assert.NotNil(t, preview.Cmd.RunE)
	assert.Equal(t, "yaml", preview.Cmd.Flags().Lookup("format").DefValue)
	assert.NotNil(t, preview.Cmd.Flags().Lookup("message"))
}

func TestSampleEntry(t *testing.T) {
	entry := preview.SampleEntry("hello")

	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "logmongo.preview", entry.Data[models.LoggerKey])
	assert.Contains(t, entry.Data, logrus.ErrorKey)
	require.NotNil(t, entry.Caller)
	assert.Contains(t, entry.Caller.Function, "SampleEntry")
}

func TestRender(t *testing.T) {
	doc := bson.D{{Key: "level", Value: "WARN"}, {Key: "message", Value: "hello"}}

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "yaml", format: "yaml", want: "level: WARN\nmessage: hello\n"},
		{name: "empty means yaml", format: "", want: "level: WARN\nmessage: hello\n"},
		{name: "json", format: "json", want: "{\n  \"level\": \"WARN\",\n  \"message\": \"hello\"\n}\n"},
		{name: "unsupported", format: "toml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := preview.Render(doc, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestPreviewCommand_ConfiguredFields(t *testing.T) {
	originalConfig := root.AppConfig
	defer func() {
		root.AppConfig = originalConfig
		_ = preview.Cmd.Flags().Set("format", "yaml")
	}()

	root.AppConfig = &config.Config{Appender: config.AppenderConfig{Fields: []config.FieldConfig{
		{Name: "severity", Layout: "level"},
		{Name: "msg", Layout: "message"},
		{Name: "user", Layout: "property", Key: "user"},
	}}}

	var out bytes.Buffer
	preview.Cmd.SetOut(&out)
	require.NoError(t, preview.Cmd.Flags().Set("message", "sample"))
	require.NoError(t, preview.Cmd.RunE(preview.Cmd, nil))

	assert.Equal(t, "severity: WARNING\nmsg: sample\nuser: alice\n", out.String())
}

func TestPreviewCommand_DefaultShapeJSON(t *testing.T) {
	originalConfig := root.AppConfig
	defer func() {
		root.AppConfig = originalConfig
		_ = preview.Cmd.Flags().Set("format", "yaml")
	}()

	root.AppConfig = &config.Config{}
	require.NoError(t, preview.Cmd.Flags().Set("format", "json"))

	var out bytes.Buffer
	preview.Cmd.SetOut(&out)
	require.NoError(t, preview.Cmd.RunE(preview.Cmd, nil))

	assert.Contains(t, out.String(), `"level": "WARNING"`)
	assert.Contains(t, out.String(), `"loggerName": "logmongo.preview"`)
	assert.Contains(t, out.String(), `"upstream timeout"`)
}
