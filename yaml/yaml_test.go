package yaml_test

import (
	"strings"
	"testing"

	"github.com/zoobzio/docmap"
	yamlcodec "github.com/zoobzio/docmap/yaml"
)

func TestContentType(t *testing.T) {
	if got := yamlcodec.New().ContentType(); got != "application/yaml" {
		t.Errorf("ContentType() = %q, want application/yaml", got)
	}
}

func TestMarshal_Order(t *testing.T) {
	codec := yamlcodec.New()

	data, err := codec.Marshal(docmap.Document{
		{Key: "z", Value: 1},
		{Key: "a", Value: "two"},
	})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	text := string(data)
	if strings.Index(text, "z:") > strings.Index(text, "a:") {
		t.Errorf("mapping keys out of order:\n%s", text)
	}
}

func TestRoundTrip_Nested(t *testing.T) {
	codec := yamlcodec.New()

	doc := docmap.Document{
		{Key: "name", Value: "outer"},
		{Key: "inner", Value: docmap.Document{
			{Key: "b", Value: 2},
			{Key: "a", Value: 1},
		}},
		{Key: "list", Value: []any{"x", "y"}},
	}

	data, err := codec.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	back, err := codec.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if back[0].Key != "name" || back[1].Key != "inner" || back[2].Key != "list" {
		t.Errorf("top-level order lost: %v", back)
	}

	inner, ok := back[1].Value.(docmap.Document)
	if !ok {
		t.Fatalf("inner = %T, want Document", back[1].Value)
	}
	if inner[0].Key != "b" || inner[1].Key != "a" {
		t.Errorf("nested order lost: %v", inner)
	}
	if inner[0].Value != 2 {
		t.Errorf("inner b = %T(%v), want 2", inner[0].Value, inner[0].Value)
	}

	list, ok := back[2].Value.([]any)
	if !ok || len(list) != 2 || list[1] != "y" {
		t.Errorf("list = %v", back[2].Value)
	}
}

func TestUnmarshal_Scalars(t *testing.T) {
	codec := yamlcodec.New()

	doc, err := codec.Unmarshal([]byte("s: hello\nn: 7\nf: 2.5\nb: true\nnada: null\n"))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	m := doc.Map()
	if m["s"] != "hello" || m["n"] != 7 || m["f"] != 2.5 || m["b"] != true {
		t.Errorf("scalars = %v", m)
	}
	if m["nada"] != nil {
		t.Errorf("null = %v, want nil", m["nada"])
	}
}

func TestUnmarshal_Anchors(t *testing.T) {
	codec := yamlcodec.New()

	doc, err := codec.Unmarshal([]byte("first: &v shared\nsecond: *v\n"))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if v, _ := doc.Get("second"); v != "shared" {
		t.Errorf("alias = %v, want shared", v)
	}
}

func TestUnmarshal_NotMapping(t *testing.T) {
	codec := yamlcodec.New()

	if _, err := codec.Unmarshal([]byte("- 1\n- 2\n")); err == nil {
		t.Error("Unmarshal of a sequence should fail")
	}
}
