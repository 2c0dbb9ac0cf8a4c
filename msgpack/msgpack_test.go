package msgpack_test

import (
	"testing"

	"github.com/zoobzio/docmap"
	msgpackcodec "github.com/zoobzio/docmap/msgpack"
)

func TestContentType(t *testing.T) {
	if got := msgpackcodec.New().ContentType(); got != "application/msgpack" {
		t.Errorf("ContentType() = %q, want application/msgpack", got)
	}
}

func TestRoundTrip_Nested(t *testing.T) {
	codec := msgpackcodec.New()

	doc := docmap.Document{
		{Key: "name", Value: "outer"},
		{Key: "inner", Value: docmap.Document{
			{Key: "b", Value: int64(2)},
			{Key: "a", Value: int64(1)},
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
	if inner[0].Value != int64(2) {
		t.Errorf("inner b = %T(%v), want int64(2)", inner[0].Value, inner[0].Value)
	}

	list, ok := back[2].Value.([]any)
	if !ok || len(list) != 2 || list[0] != "x" {
		t.Errorf("list = %v", back[2].Value)
	}
}

func TestRoundTrip_Scalars(t *testing.T) {
	codec := msgpackcodec.New()

	doc := docmap.Document{
		{Key: "s", Value: "hello"},
		{Key: "n", Value: int32(7)},
		{Key: "f", Value: 2.5},
		{Key: "b", Value: true},
		{Key: "nada", Value: nil},
	}

	data, err := codec.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	back, err := codec.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	m := back.Map()
	if m["s"] != "hello" || m["f"] != 2.5 || m["b"] != true {
		t.Errorf("scalars = %v", m)
	}
	// Integer width is not preserved on the wire; the value is.
	if m["n"] != int64(7) {
		t.Errorf("n = %T(%v), want int64(7)", m["n"], m["n"])
	}
	if m["nada"] != nil {
		t.Errorf("nil = %v, want nil", m["nada"])
	}
}

func TestUnmarshal_NotMap(t *testing.T) {
	codec := msgpackcodec.New()

	// 0x93 is a three-element fixarray header.
	if _, err := codec.Unmarshal([]byte{0x93, 0x01, 0x02, 0x03}); err == nil {
		t.Error("Unmarshal of a non-map should fail")
	}
}
