package docmap_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/zoobzio/docmap"
	docmaptest "github.com/zoobzio/docmap/testing"
)

func TestTypeName(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"predeclared", reflect.TypeFor[int](), "int"},
		{"stdlib", reflect.TypeFor[time.Time](), "time.Time"},
		{"named", reflect.TypeFor[docmaptest.Entity](), "github.com/zoobzio/docmap/testing.Entity"},
		{"pointer", reflect.TypeFor[*docmaptest.Entity](), "*github.com/zoobzio/docmap/testing.Entity"},
		{"slice", reflect.TypeFor[[]docmaptest.Entity](), "[]github.com/zoobzio/docmap/testing.Entity"},
		{"array", reflect.TypeFor[[3]int](), "[3]int"},
		{"map", reflect.TypeFor[map[string]docmaptest.Entity](), "map[string]github.com/zoobzio/docmap/testing.Entity"},
		{"nested pointer", reflect.TypeFor[**[]*int](), "**[]*int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := docmap.TypeName(tt.typ); got != tt.want {
				t.Errorf("TypeName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeName_Generic(t *testing.T) {
	got := docmap.TypeName(reflect.TypeFor[docmaptest.Pair[string, int]]())
	want := "github.com/zoobzio/docmap/testing.Pair[string,int]"
	if got != want {
		t.Errorf("TypeName() = %q, want %q", got, want)
	}
}

func TestTypeName_GenericNestedArgs(t *testing.T) {
	got := docmap.TypeName(reflect.TypeFor[docmaptest.Pair[string, docmaptest.Pair[string, int]]]())
	// An argument whose rendering contains separators is bracket-wrapped.
	want := "github.com/zoobzio/docmap/testing.Pair[string,[github.com/zoobzio/docmap/testing.Pair[string,int]]]"
	if got != want {
		t.Errorf("TypeName() = %q, want %q", got, want)
	}
}

func TestTypeName_Nil(t *testing.T) {
	if got := docmap.TypeName(nil); got != "" {
		t.Errorf("TypeName(nil) = %q, want empty", got)
	}
}

func TestLookupActualType_Empty(t *testing.T) {
	docmap.Reset()

	nominal := reflect.TypeFor[docmaptest.Event]()
	actual, err := docmap.LookupActualType(nominal, "")
	if err != nil {
		t.Fatalf("LookupActualType() error: %v", err)
	}
	if actual != nominal {
		t.Errorf("empty discriminator should return the nominal type, got %v", actual)
	}
}

func TestLookupActualType_KnownSubtypes(t *testing.T) {
	docmap.Reset()

	// Registering the nominal type pulls its declared subtypes into the
	// index; no separate registration is needed.
	actual, err := docmap.LookupActualType(reflect.TypeFor[docmaptest.Event](), "Created")
	if err != nil {
		t.Fatalf("LookupActualType() error: %v", err)
	}
	if actual != reflect.TypeFor[docmaptest.Created]() {
		t.Errorf("LookupActualType() = %v, want Created", actual)
	}

	actual, err = docmap.LookupActualType(reflect.TypeFor[docmaptest.Event](), "Deleted")
	if err != nil {
		t.Fatalf("LookupActualType(Deleted) error: %v", err)
	}
	if actual != reflect.TypeFor[docmaptest.Deleted]() {
		t.Errorf("LookupActualType() = %v, want Deleted", actual)
	}
}

func TestLookupActualType_Self(t *testing.T) {
	docmap.Reset()

	actual, err := docmap.LookupActualType(reflect.TypeFor[docmaptest.Event](), "event")
	if err != nil {
		t.Fatalf("LookupActualType() error: %v", err)
	}
	if actual != reflect.TypeFor[docmaptest.Event]() {
		t.Errorf("LookupActualType() = %v, want Event", actual)
	}
}

func TestLookupActualType_Interface(t *testing.T) {
	docmap.Reset()

	nominal := reflect.TypeFor[docmaptest.Shape]()
	err := docmap.RegisterSubtypes(nominal,
		reflect.TypeFor[docmaptest.Circle](),
		reflect.TypeFor[docmaptest.Square]())
	if err != nil {
		t.Fatalf("RegisterSubtypes() error: %v", err)
	}

	actual, err := docmap.LookupActualType(nominal, "Circle")
	if err != nil {
		t.Fatalf("LookupActualType() error: %v", err)
	}
	if actual != reflect.TypeFor[docmaptest.Circle]() {
		t.Errorf("LookupActualType() = %v, want Circle", actual)
	}
}

func TestRegisterSubtypes_RejectsUnassignable(t *testing.T) {
	docmap.Reset()

	err := docmap.RegisterSubtypes(reflect.TypeFor[docmaptest.Shape](),
		reflect.TypeFor[docmaptest.Entity]())
	if !errors.Is(err, docmap.ErrTypeMismatch) {
		t.Errorf("RegisterSubtypes() error = %v, want ErrTypeMismatch", err)
	}
}

func TestLookupActualType_Unknown(t *testing.T) {
	docmap.Reset()

	_, err := docmap.LookupActualType(reflect.TypeFor[docmaptest.Event](), "NoSuch")
	if !errors.Is(err, docmap.ErrUnknownDiscriminator) {
		t.Errorf("LookupActualType() error = %v, want ErrUnknownDiscriminator", err)
	}
}

func TestLookupActualType_Mismatch(t *testing.T) {
	docmap.Reset()

	// Index the event hierarchy, then resolve one of its discriminators
	// against an unrelated nominal type.
	if _, err := docmap.LookupOrCreate(reflect.TypeFor[docmaptest.Event]()); err != nil {
		t.Fatalf("LookupOrCreate() error: %v", err)
	}

	_, err := docmap.LookupActualType(reflect.TypeFor[docmaptest.Entity](), "Created")
	if !errors.Is(err, docmap.ErrTypeMismatch) {
		t.Errorf("LookupActualType() error = %v, want ErrTypeMismatch", err)
	}
}

type colorMarker interface {
	Marker() string
}

type redMarker struct{}

func (redMarker) Marker() string                { return "red" }
func (redMarker) Discriminator() (string, bool) { return "marker", false }

type blueMarker struct{}

func (blueMarker) Marker() string                { return "blue" }
func (blueMarker) Discriminator() (string, bool) { return "marker", false }

func TestLookupActualType_Ambiguous(t *testing.T) {
	docmap.Reset()

	nominal := reflect.TypeFor[colorMarker]()
	err := docmap.RegisterSubtypes(nominal,
		reflect.TypeFor[redMarker](),
		reflect.TypeFor[blueMarker]())
	if err != nil {
		t.Fatalf("RegisterSubtypes() error: %v", err)
	}

	_, err = docmap.LookupActualType(nominal, "marker")
	if !errors.Is(err, docmap.ErrAmbiguousDiscriminator) {
		t.Errorf("LookupActualType() error = %v, want ErrAmbiguousDiscriminator", err)
	}
}

func TestLookupActualType_TypeNameFallback(t *testing.T) {
	docmap.Reset()

	if _, err := docmap.LookupOrCreate(reflect.TypeFor[docmaptest.Event]()); err != nil {
		t.Fatalf("LookupOrCreate() error: %v", err)
	}

	// No discriminator entry matches a fully-rendered type name, so
	// resolution falls back to the type-name index.
	actual, err := docmap.LookupActualType(
		reflect.TypeFor[docmaptest.Event](),
		"github.com/zoobzio/docmap/testing.Created")
	if err != nil {
		t.Fatalf("LookupActualType() error: %v", err)
	}
	if actual != reflect.TypeFor[docmaptest.Created]() {
		t.Errorf("LookupActualType() = %v, want Created", actual)
	}
}
