// Package testing provides shared fixture types for docmap tests.
package testing

import "reflect"

// SimpleUser is a fixture with no directives; every mapping decision comes
// from the convention profile.
type SimpleUser struct {
	ID   string
	Name string
	Age  int
}

// TaggedOrder exercises the docmap tag grammar.
type TaggedOrder struct {
	ID       string  `docmap:"sku,id,gen=uuid"`
	Quantity int     `docmap:"qty,order=1"`
	Label    string  `docmap:"label,order=2"`
	Note     *string `docmap:"note,omitnil"`
	Count    int     `docmap:"count,omitdefault" default:"10"`
	Total    int64   `docmap:"total,nocompact"`
	Secret   string  `docmap:"-"`
}

// Entity is the root of the embedded hierarchy fixtures. Its ID maps as
// the document identifier.
type Entity struct {
	ID      string `docmap:"ref,id"`
	Version int    `docmap:"version"`
}

// Record embeds Entity and inherits its identifier.
type Record struct {
	Entity
	Name string `docmap:"name"`
}

// AuditedRecord deepens the chain one more level.
type AuditedRecord struct {
	Record
	Audit string `docmap:"audit"`
}

// Event is a polymorphic base declaring its subtypes and requiring a
// discriminator on every encoded value.
type Event struct {
	At string `docmap:"at"`
}

// KnownSubtypes declares the concrete event types.
func (Event) KnownSubtypes() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[Created](),
		reflect.TypeFor[Deleted](),
	}
}

// Discriminator pins the base's discriminator and requires it everywhere.
func (Event) Discriminator() (string, bool) {
	return "event", true
}

// Created is an Event subtype.
type Created struct {
	Event
	Actor string `docmap:"actor"`
}

// Deleted is an Event subtype.
type Deleted struct {
	Event
	Reason string `docmap:"reason"`
}

// Pair is a generic fixture for type-name rendering.
type Pair[K comparable, V any] struct {
	Key   K `docmap:"key"`
	Value V `docmap:"value"`
}

// Shape is an interface nominal for polymorphic decode.
type Shape interface {
	Area() float64
}

// Circle implements Shape.
type Circle struct {
	Radius float64 `docmap:"radius"`
}

// Area implements Shape.
func (c Circle) Area() float64 { return 3.14159265 * c.Radius * c.Radius }

// Square implements Shape.
type Square struct {
	Side float64 `docmap:"side"`
}

// Area implements Shape.
func (s Square) Area() float64 { return s.Side * s.Side }
