// Package msgpack provides a MessagePack codec for docmap documents.
package msgpack

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"github.com/zoobzio/docmap"
)

// msgpackCodec implements docmap.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec. Documents encode as maps written in
// element order; maps are decoded back into ordered documents.
func New() docmap.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes doc as a MessagePack map.
func (c *msgpackCodec) Marshal(doc docmap.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeValue(enc, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a MessagePack map into an ordered document.
func (c *msgpackCodec) Unmarshal(data []byte) (docmap.Document, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(docmap.Document)
	if !ok {
		return nil, fmt.Errorf("msgpack: document must be a map, got %T", v)
	}
	return doc, nil
}

// encodeValue writes documents and arrays element by element so order is
// preserved; everything else defers to the encoder.
func encodeValue(enc *msgpack.Encoder, v any) error {
	switch val := v.(type) {
	case docmap.Document:
		if err := enc.EncodeMapLen(len(val)); err != nil {
			return err
		}
		for _, e := range val {
			if err := enc.EncodeString(e.Key); err != nil {
				return err
			}
			if err := encodeValue(enc, e.Value); err != nil {
				return err
			}
		}
		return nil
	case []any:
		if err := enc.EncodeArrayLen(len(val)); err != nil {
			return err
		}
		for _, e := range val {
			if err := encodeValue(enc, e); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(v)
	}
}

// decodeValue reads maps as ordered documents and arrays as []any.
func decodeValue(dec *msgpack.Decoder) (any, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		doc := docmap.Document{}
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, err
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			doc = append(doc, docmap.Element{Key: key, Value: value})
		}
		return doc, nil
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		arr := make([]any, 0, n)
		for i := 0; i < n; i++ {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		return arr, nil
	default:
		return dec.DecodeInterfaceLoose()
	}
}
