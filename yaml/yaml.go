// Package yaml provides a YAML codec for docmap documents.
package yaml

import (
	"fmt"

	"github.com/zoobzio/docmap"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements docmap.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec. Documents map to YAML mappings node by node so
// element order survives the round trip.
func New() docmap.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes doc as a YAML mapping.
func (c *yamlCodec) Marshal(doc docmap.Document) ([]byte, error) {
	node, err := encodeNode(doc)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

// Unmarshal decodes a YAML mapping into an ordered document.
func (c *yamlCodec) Unmarshal(data []byte) (docmap.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	v, err := decodeNode(&root)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(docmap.Document)
	if !ok {
		return nil, fmt.Errorf("yaml: document must be a mapping, got %T", v)
	}
	return doc, nil
}

// encodeNode builds a yaml.Node tree from a document value.
func encodeNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case docmap.Document:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range val {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
			value, err := encodeNode(e.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, key, value)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range val {
			item, err := encodeNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, item)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}

// decodeNode converts a yaml.Node tree back into document values.
func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return docmap.Document{}, nil
		}
		return decodeNode(n.Content[0])
	case yaml.MappingNode:
		doc := docmap.Document{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			value, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			doc = append(doc, docmap.Element{Key: n.Content[i].Value, Value: value})
		}
		return doc, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			value, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		return arr, nil
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
