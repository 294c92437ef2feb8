package document

import (
	"os"
	"testing"

	"fjacquet/logmongo/internal/apperror"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type panickyError struct{}

func (panickyError) Error() string { panic("no message") }

func TestBuild_DefaultShapeWithTypedNilError(t *testing.T) {
	var pathErr *os.PathError
	entry := newEntry()
	entry.Data[logrus.ErrorKey] = pathErr
	entry.Data["cause"] = pathErr

	builder, err := NewBuilder(nil)
	require.NoError(t, err)

	var doc bson.D
	assert.NotPanics(t, func() { doc, err = builder.Build(entry) })
	require.NoError(t, err)

	m := doc.Map()
	assert.Equal(t, DefaultKeys, keys(doc))
	assert.Nil(t, m[KeyException])
	props, ok := m[KeyProperties].(bson.D)
	require.True(t, ok)
	assert.Contains(t, props.Map(), "cause")
	assert.Nil(t, props.Map()["cause"])

	_, err = bson.Marshal(doc)
	assert.NoError(t, err)
}

func TestBuild_DefaultShapeWithPanickingError(t *testing.T) {
	entry := newEntry()
	entry.Data[logrus.ErrorKey] = panickyError{}
	entry.Data["other"] = panickyError{}

	builder, err := NewBuilder(nil)
	require.NoError(t, err)

	var doc bson.D
	assert.NotPanics(t, func() { doc, err = builder.Build(entry) })
	require.NoError(t, err)

	exception, ok := doc.Map()[KeyException].(bson.D)
	require.True(t, ok)
	assert.Equal(t, "document.panickyError.Error() panicked: no message", exception.Map()["message"])
	props, ok := doc.Map()[KeyProperties].(bson.D)
	require.True(t, ok)
	assert.Equal(t, "document.panickyError.Error() panicked: no message", props.Map()["other"])
}

func TestFallbackDocument_KeepsShape(t *testing.T) {
	entry := newEntry()
	entry.Data = nil
	entry.Caller = nil

	doc, err := defaultDocument(entry)
	require.NoError(t, err)
	assert.Equal(t, DefaultKeys, keys(doc))

	fallback := fallbackDocument(entry)
	m := fallback.Map()
	assert.Equal(t, DefaultKeys, keys(fallback))
	assert.Equal(t, testTime, m[KeyTimestamp])
	assert.Equal(t, entry.Message, m[KeyMessage])
	assert.Equal(t, "ERROR", m[KeyLevel])
	assert.Nil(t, m[KeyException])
	assert.Nil(t, m[KeyMachineName])
	assert.Equal(t, bson.D{}, m[KeyProperties])
}

func TestDefaultDocument_RecoversIntoFieldError(t *testing.T) {
	var doc bson.D
	var err error
	assert.NotPanics(t, func() { doc, err = defaultDocument(nil) })

	var fieldErr *apperror.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "document", fieldErr.Field)
	assert.Contains(t, err.Error(), "default document panicked")
	assert.Len(t, doc, len(DefaultKeys))
}
