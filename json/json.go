// Package json provides a JSON codec for docmap documents.
package json

import (
	"encoding/json"

	"github.com/zoobzio/docmap"
)

// jsonCodec implements docmap.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec. Element order is preserved through Document's
// order-aware JSON marshaling.
func New() docmap.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes doc as a JSON object.
func (c *jsonCodec) Marshal(doc docmap.Document) ([]byte, error) {
	return json.Marshal(doc)
}

// Unmarshal decodes a JSON object into an ordered document.
func (c *jsonCodec) Unmarshal(data []byte) (docmap.Document, error) {
	var doc docmap.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
