package layout

import (
	"errors"
	"fmt"

	"fjacquet/logmongo/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ExceptionDocument renders an error chain as nested documents with the keys
// message, source, stackTrace and innerException. A nil error, including a
// typed nil, gives nil.
//
// source is the Go type of the error. stackTrace is the %+v rendering when
// it adds something to the message (errors carrying stacks), else null.
func ExceptionDocument(err error) bson.D {
	if models.IsNilError(err) {
		return nil
	}

	message := models.ErrorMessage(err)
	var stackTrace interface{}
	if detailed := fmt.Sprintf("%+v", err); detailed != message {
		stackTrace = detailed
	}

	var inner interface{}
	if doc := ExceptionDocument(errors.Unwrap(err)); doc != nil {
		inner = doc
	}

	return bson.D{
		{Key: "message", Value: message},
		{Key: "source", Value: fmt.Sprintf("%T", err)},
		{Key: "stackTrace", Value: stackTrace},
		{Key: "innerException", Value: inner},
	}
}
