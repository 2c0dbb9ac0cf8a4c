// Package docmap derives and maintains type maps for document serialization.
//
// A type map describes how values of a Go type convert to and from a
// schema-less ordered document: which fields become elements, under what
// names, in what order, with what defaults, and which field acts as the
// document identifier. Type maps are derived once per type from struct tags,
// declarative interfaces, and a pluggable convention system, then cached in a
// process-wide registry.
//
// # Deriving Type Maps
//
// The registry derives a type map on first lookup:
//
//	tm, err := docmap.LookupOrCreate(reflect.TypeFor[Order]())
//
// or explicitly, with registration-time customization:
//
//	tm, err := docmap.Register[Order](func(m *docmap.Map[Order]) {
//	    m.MapID(func(o *Order) any { return &o.ID }, docmap.GeneratorObjectID)
//	    m.SetDiscriminator("order")
//	})
//
// # Tag Syntax
//
// Field behavior is declared via the docmap tag:
//
//	docmap:"{element}[,flag...]"
//
// Flags:
//
//	docmap:"-"                - Exclude the field from mapping
//	docmap:"sku,id"           - Identifier field (element name forced to _id)
//	docmap:"qty,order=1"      - Explicit serialized order
//	docmap:"name,required"    - Element must be present on decode
//	docmap:"note,omitnil"     - Omit nil pointers/slices/maps on encode
//	docmap:"tags,omitdefault" - Omit the field when it equals its default
//	docmap:"n,compact"        - Narrow in-range integers on encode
//	docmap:"n,nocompact"      - Disable compact narrowing for this field
//	docmap:"id,id,gen=uuid"   - Identifier with a generator reference
//
// A separate default tag supplies a literal default value:
//
//	Count int `docmap:"count" default:"10"`
//
// # Conventions
//
// When no explicit directive is given, the type's convention profile decides:
// element naming, identifier discovery, default values, nil omission, and
// unknown-element policy. Profiles are selected by a type filter chain:
//
//	docmap.RegisterConventions(&docmap.Conventions{
//	    Naming: docmap.SnakeCaseNaming,
//	}, func(t reflect.Type) bool {
//	    return strings.HasPrefix(t.PkgPath(), "myapp/models")
//	})
//
// # Polymorphism
//
// A discriminator element (_t) names the concrete type inside encoded data.
// Base types declare their subtypes up front so the decoder can resolve a
// discriminator before it is ever seen:
//
//	func (Event) KnownSubtypes() []reflect.Type {
//	    return []reflect.Type{
//	        reflect.TypeFor[Created](),
//	        reflect.TypeFor[Deleted](),
//	    }
//	}
//
// At decode time, LookupActualType maps a discriminator string plus the
// expected nominal type back to exactly one concrete type, failing loudly on
// ambiguity, unknown discriminators, and type mismatches.
//
// # Processing
//
// Processor walks type maps to convert values to and from Document, and
// delegates bytes to a Codec:
//
//	proc, _ := docmap.Use[Order](json.New())
//	data, _ := proc.Marshal(ctx, order)
//	back, _ := proc.Unmarshal(ctx, data)
//
// # Codec Providers
//
// The following codec implementations are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package docmap

// IDElementName is the fixed element name for identifier fields.
// Identifier directives and convention-discovered identifiers both force
// their element name to this value, overriding any explicit element name.
const IDElementName = "_id"

// DiscriminatorElementName is the element carrying the concrete type's
// discriminator in encoded documents.
const DiscriminatorElementName = "_t"

// Codec converts an ordered Document to and from bytes for one content type.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes doc into bytes, preserving element order where the
	// format permits.
	Marshal(doc Document) ([]byte, error)

	// Unmarshal decodes data into an ordered Document.
	Unmarshal(data []byte) (Document, error)
}
