package document

import (
	"fmt"
	"time"

	"fjacquet/logmongo/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToValue converts a rendered value into something the BSON encoder stores
// faithfully.
//
// Native BSON types pass through unchanged. Decimals become Decimal128,
// errors their message (typed nils become null) and durations int64 nanoseconds. Maps and slices
// are converted element-wise. Any other value the default registry can
// encode passes through; the rest is stored as its fmt.Sprint text.
func ToValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint8, uint16, uint32,
		float32, float64,
		time.Time, []byte,
		bson.D, bson.Raw, bson.RawValue,
		primitive.ObjectID, primitive.DateTime, primitive.Decimal128, primitive.Timestamp,
		primitive.Regex, primitive.Binary, primitive.Null, primitive.Symbol,
		primitive.JavaScript, primitive.CodeWithScope, primitive.MinKey, primitive.MaxKey,
		primitive.Undefined, primitive.DBPointer:
		return val
	case decimal.Decimal:
		return toDecimal128(val)
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return toDecimal128(*val)
	case time.Duration:
		return int64(val)
	case error:
		if models.IsNilError(val) {
			return nil
		}
		return models.ErrorMessage(val)
	case bson.M:
		return convertMap(val)
	case map[string]interface{}:
		return convertMap(val)
	case logrus.Fields:
		return convertMap(val)
	case bson.A:
		return convertSlice(val)
	case []interface{}:
		return convertSlice(val)
	}

	if _, _, err := bson.MarshalValue(v); err == nil {
		return v
	}
	return fmt.Sprint(v)
}

func toDecimal128(d decimal.Decimal) interface{} {
	dec, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return d.String()
	}
	return dec
}

func convertMap(m map[string]interface{}) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = ToValue(v)
	}
	return out
}

func convertSlice(s []interface{}) bson.A {
	out := make(bson.A, len(s))
	for i, v := range s {
		out[i] = ToValue(v)
	}
	return out
}
