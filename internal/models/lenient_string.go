package models

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// LenientString decodes fields that older clients stored either as text or as
// a number (phone numbers mostly), so one odd document does not fail a whole
// listing.
type LenientString string

// UnmarshalBSONValue accepts string, numeric and null BSON values.
func (s *LenientString) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*s = ""
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*s = LenientString(value)
		return nil
	case bsontype.Int32:
		var value int32
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*s = LenientString(strconv.FormatInt(int64(value), 10))
		return nil
	case bsontype.Int64:
		var value int64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*s = LenientString(strconv.FormatInt(value, 10))
		return nil
	case bsontype.Double:
		var value float64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*s = LenientString(strconv.FormatFloat(value, 'f', -1, 64))
		return nil
	default:
		return fmt.Errorf("cannot decode %s into LenientString", t)
	}
}

// MarshalBSONValue always stores text.
func (s LenientString) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(s))
}

func (s LenientString) String() string {
	return string(s)
}
