package docmap_test

import (
	"encoding/json"
	"testing"

	"github.com/zoobzio/docmap"
)

func TestDocument_GetSetDelete(t *testing.T) {
	doc := docmap.Document{
		{Key: "a", Value: 1},
		{Key: "b", Value: "two"},
	}

	v, ok := doc.Get("b")
	if !ok || v != "two" {
		t.Errorf("Get(b) = %v, %v, want two, true", v, ok)
	}
	if _, ok := doc.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}

	doc.Set("a", 10)
	if v, _ := doc.Get("a"); v != 10 {
		t.Errorf("Set(a) did not replace: got %v", v)
	}

	doc.Set("c", true)
	if len(doc) != 3 {
		t.Fatalf("Set(c) should append, len = %d", len(doc))
	}
	if doc[2].Key != "c" {
		t.Errorf("appended element key = %q, want c", doc[2].Key)
	}

	if !doc.Delete("b") {
		t.Error("Delete(b) = false, want true")
	}
	if doc.Delete("b") {
		t.Error("Delete(b) twice should report absence")
	}
	if len(doc) != 2 {
		t.Errorf("len after delete = %d, want 2", len(doc))
	}
}

func TestDocument_Map(t *testing.T) {
	doc := docmap.Document{
		{Key: "x", Value: 1},
		{Key: "y", Value: docmap.Document{{Key: "inner", Value: 2}}},
	}

	m := doc.Map()
	if m["x"] != 1 {
		t.Errorf("Map()[x] = %v, want 1", m["x"])
	}
	if _, ok := m["y"].(docmap.Document); !ok {
		t.Errorf("Map()[y] should stay a Document, got %T", m["y"])
	}
}

func TestDocument_Clone(t *testing.T) {
	doc := docmap.Document{
		{Key: "nested", Value: docmap.Document{{Key: "n", Value: 1}}},
		{Key: "list", Value: []any{1, 2}},
	}

	clone := doc.Clone()
	nested := clone[0].Value.(docmap.Document)
	nested.Set("n", 99)
	clone[1].Value.([]any)[0] = 99

	orig := doc[0].Value.(docmap.Document)
	if v, _ := orig.Get("n"); v != 1 {
		t.Errorf("clone mutation leaked into original nested doc: %v", v)
	}
	if doc[1].Value.([]any)[0] != 1 {
		t.Error("clone mutation leaked into original slice")
	}
}

func TestDocument_CloneNil(t *testing.T) {
	var doc docmap.Document
	if doc.Clone() != nil {
		t.Error("Clone of nil document should be nil")
	}
}

func TestDocument_MarshalJSON_Order(t *testing.T) {
	doc := docmap.Document{
		{Key: "z", Value: 1},
		{Key: "a", Value: 2},
		{Key: "m", Value: 3},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	want := `{"z":1,"a":2,"m":3}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestDocument_UnmarshalJSON_Order(t *testing.T) {
	data := []byte(`{"z":1,"a":{"inner":true},"m":[1,"two"]}`)

	var doc docmap.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if len(doc) != 3 {
		t.Fatalf("len = %d, want 3", len(doc))
	}
	if doc[0].Key != "z" || doc[1].Key != "a" || doc[2].Key != "m" {
		t.Errorf("key order = %s, %s, %s", doc[0].Key, doc[1].Key, doc[2].Key)
	}

	if n, ok := doc[0].Value.(json.Number); !ok || n.String() != "1" {
		t.Errorf("numbers should decode as json.Number, got %T(%v)", doc[0].Value, doc[0].Value)
	}

	nested, ok := doc[1].Value.(docmap.Document)
	if !ok {
		t.Fatalf("nested object should decode as Document, got %T", doc[1].Value)
	}
	if v, _ := nested.Get("inner"); v != true {
		t.Errorf("nested value = %v, want true", v)
	}

	arr, ok := doc[2].Value.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("array should decode as []any, got %T", doc[2].Value)
	}
}

func TestDocument_UnmarshalJSON_NotObject(t *testing.T) {
	var doc docmap.Document
	if err := json.Unmarshal([]byte(`[1,2]`), &doc); err == nil {
		t.Error("Unmarshal of a non-object should fail")
	}
}

func TestDocument_RoundTripJSON(t *testing.T) {
	doc := docmap.Document{
		{Key: "first", Value: "v"},
		{Key: "second", Value: docmap.Document{{Key: "deep", Value: "w"}}},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var back docmap.Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if back[0].Key != "first" || back[1].Key != "second" {
		t.Errorf("round trip lost order: %s, %s", back[0].Key, back[1].Key)
	}
}
