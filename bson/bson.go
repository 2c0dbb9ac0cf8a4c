// Package bson provides a BSON codec for docmap documents.
package bson

import (
	"github.com/zoobzio/docmap"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bsonCodec implements docmap.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec. Documents convert to bson.D, which keeps
// element order on both sides of the wire.
func New() docmap.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes doc as a BSON document.
func (c *bsonCodec) Marshal(doc docmap.Document) ([]byte, error) {
	return bson.Marshal(toBSON(doc))
}

// Unmarshal decodes a BSON document into an ordered document.
func (c *bsonCodec) Unmarshal(data []byte) (docmap.Document, error) {
	var raw bson.D
	if err := bson.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	doc, _ := fromBSON(raw).(docmap.Document)
	return doc, nil
}

// toBSON converts document values to their bson.D/bson.A counterparts.
func toBSON(v any) any {
	switch val := v.(type) {
	case docmap.Document:
		d := make(bson.D, len(val))
		for i, e := range val {
			d[i] = bson.E{Key: e.Key, Value: toBSON(e.Value)}
		}
		return d
	case []any:
		a := make(bson.A, len(val))
		for i, e := range val {
			a[i] = toBSON(e)
		}
		return a
	default:
		return v
	}
}

// fromBSON converts decoded BSON values back to document values.
func fromBSON(v any) any {
	switch val := v.(type) {
	case bson.D:
		doc := make(docmap.Document, len(val))
		for i, e := range val {
			doc[i] = docmap.Element{Key: e.Key, Value: fromBSON(e.Value)}
		}
		return doc
	case bson.A:
		arr := make([]any, len(val))
		for i, e := range val {
			arr[i] = fromBSON(e)
		}
		return arr
	case primitive.DateTime:
		return val.Time()
	case primitive.Binary:
		return val.Data
	default:
		return v
	}
}
