package docmap

import "reflect"

// Declarative interfaces let types supply class-level directives without
// struct tags. The shape provider probes each registered type for these
// interfaces; an implemented method overrides the convention profile for
// that concern, and is itself overridden by registration-time customization.
//
// All methods must be pure: they are called once during derivation on a
// zero value of the type.

// KnownSubtyper declares the subtypes of a base type up front.
// Each declared subtype is registered (and discriminator-indexed) eagerly
// when the base's type map is derived, so polymorphic decode can resolve
// discriminators it has never encoded.
type KnownSubtyper interface {
	// KnownSubtypes returns the concrete types decodable in place of the
	// receiver's type.
	KnownSubtypes() []reflect.Type
}

// Discriminated overrides the type's discriminator string.
type Discriminated interface {
	// Discriminator returns the discriminator value for this type and
	// whether encoders must always emit it. A required discriminator is
	// inherited by every type that embeds this one.
	Discriminator() (name string, required bool)
}

// ExtraElementPolicy overrides the unknown-element policy for a type.
type ExtraElementPolicy interface {
	// IgnoreExtraElements reports whether decoders should silently drop
	// elements that map to no field.
	IgnoreExtraElements() bool
}

// CompactPolicy overrides the compact-representation default for a type.
type CompactPolicy interface {
	// CompactRepresentation reports whether numeric fields without an
	// explicit compact flag should narrow in-range integers on encode.
	CompactRepresentation() bool
}
