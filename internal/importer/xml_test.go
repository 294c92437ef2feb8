package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fjacquet/logmongo/internal/apperror"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xmlEvents = `<?xml version="1.0" encoding="utf-8"?>
<event logger="Shop.Billing" timestamp="2024-05-17T10:30:15.25+02:00" level="ERROR" thread="7">
  <message>Payment failed</message>
  <properties>
    <data name="HostName" value="srv01" />
    <data name="amount" value="12.50" />
    <data name="attempt" value="3" />
  </properties>
  <exception>
    System.InvalidOperationException: card declined
  </exception>
</event>
<event logger="Shop.Web" timestamp="2024-05-17T10:31:00+02:00" level="INFO" thread="3">
  <message>Request served</message>
</event>
`

func TestXMLParser_Parse(t *testing.T) {
	events, err := NewXMLParser().Parse(strings.NewReader(xmlEvents))
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.True(t, time.Date(2024, 5, 17, 8, 30, 15, 250_000_000, time.UTC).Equal(first.Time))
	assert.Equal(t, logrus.ErrorLevel, first.Level)
	assert.Equal(t, "Shop.Billing", first.Logger)
	assert.Equal(t, "7", first.Thread)
	assert.Equal(t, "Payment failed", first.Message)
	assert.Equal(t, "System.InvalidOperationException: card declined", first.Error)
	assert.Equal(t, "srv01", first.Properties["HostName"])
	assert.Equal(t, int64(3), first.Properties["attempt"])
	assert.Contains(t, first.Properties, "amount")

	second := events[1]
	assert.Equal(t, logrus.InfoLevel, second.Level)
	assert.Equal(t, "Request served", second.Message)
	assert.Empty(t, second.Error)
	assert.Empty(t, second.Properties)
}

func TestXMLParser_Errors(t *testing.T) {
	_, err := NewXMLParser().Parse(strings.NewReader(`<event timestamp="soon" level="INFO"><message>x</message></event>`))
	require.Error(t, err)
	var parseErr *apperror.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "timestamp", parseErr.Field)

	_, err = NewXMLParser().Parse(strings.NewReader(`<event><message>unterminated`))
	require.Error(t, err)
	var formatErr *apperror.InvalidFormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestStripXMLDeclaration(t *testing.T) {
	assert.Equal(t, "\n<a/>", string(stripXMLDeclaration([]byte(`<?xml version="1.0"?>`+"\n<a/>"))))
	assert.Equal(t, "<a/>", string(stripXMLDeclaration([]byte("<a/>"))))
}
