// Package document turns log events into the BSON documents stored in MongoDB.
//
// With configured fields, every document has exactly one key per field, in
// configured order. Without fields, every document has the fixed default
// shape described in default.go.
package document

import (
	"errors"
	"fmt"

	"fjacquet/logmongo/internal/apperror"
	"fjacquet/logmongo/internal/layout"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Field names one document key and the layout that renders its value.
type Field struct {
	Name   string
	Layout layout.Layout
}

// Builder maps log events to documents. It is immutable and safe for
// concurrent use.
type Builder struct {
	fields []Field
}

// NewBuilder validates the fields and returns a Builder. Field names must be
// non-empty and unique, and every field needs a layout.
func NewBuilder(fields []Field) (*Builder, error) {
	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		setting := fmt.Sprintf("fields[%d]", i)
		if f.Name == "" {
			return nil, &apperror.ConfigurationError{Setting: setting, Reason: "field name is empty"}
		}
		if f.Layout == nil {
			return nil, &apperror.ConfigurationError{Setting: setting, Reason: fmt.Sprintf("field '%s' has no layout", f.Name)}
		}
		if prev, dup := seen[f.Name]; dup {
			return nil, &apperror.ConfigurationError{
				Setting: setting,
				Reason:  fmt.Sprintf("duplicate field name '%s' (already used by fields[%d])", f.Name, prev),
			}
		}
		seen[f.Name] = i
	}

	copied := make([]Field, len(fields))
	copy(copied, fields)
	return &Builder{fields: copied}, nil
}

// Fields returns a copy of the configured fields.
func (b *Builder) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// UsesDefaultShape reports whether documents get the default shape.
func (b *Builder) UsesDefaultShape() bool {
	return len(b.fields) == 0
}

// Build creates the document for one event.
//
// A field whose layout fails or panics is stored as null; the document is
// still returned complete and the error lists every failed field as an
// *apperror.FieldError.
func (b *Builder) Build(entry *logrus.Entry) (bson.D, error) {
	if len(b.fields) == 0 {
		return defaultDocument(entry)
	}

	doc := make(bson.D, 0, len(b.fields))
	var errs []error
	for _, f := range b.fields {
		v, err := render(f, entry)
		if err != nil {
			errs = append(errs, &apperror.FieldError{Field: f.Name, Err: err})
			v = nil
		}
		doc = append(doc, bson.E{Key: f.Name, Value: ToValue(v)})
	}
	return doc, errors.Join(errs...)
}

func render(f Field, entry *logrus.Entry) (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = fmt.Errorf("layout panicked: %v", r)
		}
	}()
	return f.Layout.Format(entry)
}

// defaultDocument isolates DefaultDocument like render isolates a layout.
// After a panic the event is stored with only its timestamp, level and
// message.
func defaultDocument(entry *logrus.Entry) (doc bson.D, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = fallbackDocument(entry)
			err = &apperror.FieldError{Field: "document", Err: fmt.Errorf("default document panicked: %v", r)}
		}
	}()
	return DefaultDocument(entry), nil
}
