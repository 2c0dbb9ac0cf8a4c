package docmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is an ordered, schema-less document: a sequence of key/value
// elements. It is the value the processor produces from a struct and the
// codecs turn into bytes. Element order is significant and preserved by
// every codec whose format can express it.
type Document []Element

// Element is one key/value pair of a Document.
type Element struct {
	Key   string
	Value any
}

// Get returns the value of the first element with the given key.
func (d Document) Get(key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the first element with the given key, or
// appends a new element when the key is absent.
func (d *Document) Set(key string, value any) {
	for i, e := range *d {
		if e.Key == key {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, Element{Key: key, Value: value})
}

// Delete removes the first element with the given key.
func (d *Document) Delete(key string) bool {
	for i, e := range *d {
		if e.Key == key {
			*d = append((*d)[:i:i], (*d)[i+1:]...)
			return true
		}
	}
	return false
}

// Map returns the document as an unordered map. Nested documents stay as
// Document values.
func (d Document) Map() map[string]any {
	m := make(map[string]any, len(d))
	for _, e := range d {
		m[e.Key] = e.Value
	}
	return m
}

// Clone returns a deep copy: modifications to the clone do not affect the
// original. Nested Documents, []any slices, and map[string]any values are
// copied recursively; other values are assumed immutable.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for i, e := range d {
		out[i] = Element{Key: e.Key, Value: cloneValue(e.Value)}
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Document:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	}
	return v
}

// MarshalJSON encodes the document as a JSON object in element order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order. Nested objects
// decode as Document, arrays as []any, and numbers as json.Number.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("document must be a JSON object, got %v", tok)
	}

	doc, err := decodeJSONObject(dec)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// decodeJSONObject reads object members until the closing brace. The
// opening brace has already been consumed.
func decodeJSONObject(dec *json.Decoder) (Document, error) {
	var doc Document
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
		}
		val, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		doc = append(doc, Element{Key: key, Value: val})
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			var arr []any
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if arr == nil {
				arr = []any{}
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return tok, nil
	}
}
