package docmap

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register docmap tags with sentinel
	sentinel.Tag("docmap")
	sentinel.Tag("default")
}

// ShapeProvider supplies the structural description of a type: its own
// eligible fields, its base type, and the directives declared on it. The
// registry consumes shapes only; it never walks structs or reads tags itself.
//
// The default provider scans exported struct fields via reflection, reads
// directives from docmap/default tags and the declarative interfaces, and
// treats the first embedded struct field as the base type.
type ShapeProvider interface {
	// Shape describes t. Only struct and interface types have shapes.
	Shape(t reflect.Type) (*TypeShape, error)
}

// TypeShape is the structural description of one type.
type TypeShape struct {
	Type       reflect.Type
	Name       string       // simple type name; empty for anonymous struct types
	Anonymous  bool         // true for structurally-unnamed types
	Base       reflect.Type // first embedded struct field; nil for root types
	Directives TypeDirectives
	Fields     []FieldShape // fields declared directly on this type, base excluded
}

// FieldShape describes one field declared directly on a type.
type FieldShape struct {
	Name       string
	Type       reflect.Type
	Index      []int
	CanRead    bool
	CanWrite   bool
	Directives FieldDirectives
}

// TypeDirectives holds the already-extracted class-level directives.
type TypeDirectives struct {
	KnownSubtypes         []reflect.Type
	Discriminator         string
	HasDiscriminator      bool
	DiscriminatorRequired bool
	IgnoreExtra           *bool
	Compact               *bool
}

// FieldDirectives holds the already-extracted field-level directives.
// Pointer fields distinguish "unset" from an explicit false/zero.
type FieldDirectives struct {
	Ignore      bool
	ID          bool
	Generator   GeneratorRef
	ElementName string
	Order       *int
	Default     any
	HasDefault  bool
	KeepDefault *bool
	OmitNil     *bool
	Required    bool
	Compact     *bool
}

// reflectShapes is the default reflection-backed shape provider.
type reflectShapes struct{}

// DefaultShapeProvider returns the reflection-backed shape provider used by
// new registries.
func DefaultShapeProvider() ShapeProvider {
	return reflectShapes{}
}

func (reflectShapes) Shape(t reflect.Type) (*TypeShape, error) {
	switch t.Kind() {
	case reflect.Interface:
		return &TypeShape{Type: t, Name: t.Name()}, nil
	case reflect.Struct:
		// continue below
	default:
		return nil, newRegistrationError(ErrNotMappable, t)
	}

	shape := &TypeShape{
		Type:      t,
		Name:      t.Name(),
		Anonymous: t.Name() == "",
	}

	// Sentinel carries pre-extracted tags for types it has scanned;
	// fall back to reading struct tags directly.
	tags := sentinelTags(t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			// The first embedded struct field is the base type; further
			// anonymous fields are not part of the single-base model.
			if shape.Base == nil && sf.Type.Kind() == reflect.Struct {
				shape.Base = sf.Type
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		dir, err := fieldDirectives(t, sf, tags[sf.Name])
		if err != nil {
			return nil, err
		}

		shape.Fields = append(shape.Fields, FieldShape{
			Name:       sf.Name,
			Type:       sf.Type,
			Index:      sf.Index,
			CanRead:    true,
			CanWrite:   true,
			Directives: dir,
		})
	}

	shape.Directives = probeTypeDirectives(t, shape.Base)
	return shape, nil
}

// sentinelTags returns per-field tag maps from sentinel metadata when the
// type has been scanned, keyed by field name. A nil map means no metadata.
func sentinelTags(t reflect.Type) map[string]map[string]string {
	meta, ok := sentinel.Lookup(t.String())
	if !ok {
		return nil
	}
	tags := make(map[string]map[string]string, len(meta.Fields))
	for _, f := range meta.Fields {
		tags[f.Name] = f.Tags
	}
	return tags
}

// probeTypeDirectives checks a type for the declarative interfaces.
// Go promotes an embedded base's methods onto the embedding type, which
// would misattribute the base's declarations to every subtype: a promoted
// KnownSubtypes would re-register the subtype inside its own derivation,
// and a promoted Discriminator would collapse the whole hierarchy onto one
// discriminator. A directive whose probe matches the base's probe is
// therefore treated as inherited and left to the lazy base link; the
// per-type policy directives (extra elements, compact) keep the promoted
// value, which is the inherited policy.
func probeTypeDirectives(t, base reflect.Type) TypeDirectives {
	var d TypeDirectives
	if t.Name() == "" {
		return d
	}

	// Pointer probe sees both value and pointer receiver methods.
	v := reflect.New(t).Interface()
	var bv any
	if base != nil {
		bv = reflect.New(base).Interface()
	}

	if ks, ok := v.(KnownSubtyper); ok {
		subs := ks.KnownSubtypes()
		if bks, ok := bv.(KnownSubtyper); !ok || !slices.Equal(subs, bks.KnownSubtypes()) {
			d.KnownSubtypes = subs
		}
	}
	if disc, ok := v.(Discriminated); ok {
		name, required := disc.Discriminator()
		inherited := false
		if bd, ok := bv.(Discriminated); ok {
			bn, br := bd.Discriminator()
			inherited = bn == name && br == required
		}
		if !inherited {
			d.Discriminator = name
			d.DiscriminatorRequired = required
			d.HasDiscriminator = true
		}
	}
	if ep, ok := v.(ExtraElementPolicy); ok {
		ignore := ep.IgnoreExtraElements()
		d.IgnoreExtra = &ignore
	}
	if cp, ok := v.(CompactPolicy); ok {
		compact := cp.CompactRepresentation()
		d.Compact = &compact
	}
	return d
}

// fieldDirectives extracts directives for one field from its docmap and
// default tags. Sentinel-provided tags win over a direct tag read so custom
// sentinel extraction policies are honored.
func fieldDirectives(t reflect.Type, sf reflect.StructField, tags map[string]string) (FieldDirectives, error) {
	var d FieldDirectives

	docTag, hasDoc := tags["docmap"]
	if !hasDoc {
		docTag, hasDoc = sf.Tag.Lookup("docmap")
	}
	defTag, hasDef := tags["default"]
	if !hasDef {
		defTag, hasDef = sf.Tag.Lookup("default")
	}

	if hasDoc {
		if err := parseDocmapTag(&d, t, sf.Name, docTag); err != nil {
			return d, err
		}
	}
	if d.Ignore {
		return d, nil
	}

	if hasDef {
		val, err := parseDefaultLiteral(sf.Type, defTag)
		if err != nil {
			return d, newMappingError(ErrInvalidTag, "derive", t, sf.Name, err)
		}
		d.Default = val
		d.HasDefault = true
	}

	return d, nil
}

// parseDocmapTag parses `docmap:"{element}[,flag...]"` into d.
func parseDocmapTag(d *FieldDirectives, t reflect.Type, field, tag string) error {
	if tag == "-" {
		d.Ignore = true
		return nil
	}

	parts := strings.Split(tag, ",")
	d.ElementName = parts[0]

	for _, flag := range parts[1:] {
		switch {
		case flag == "id":
			d.ID = true
		case flag == "required":
			d.Required = true
		case flag == "omitnil":
			v := true
			d.OmitNil = &v
		case flag == "omitdefault":
			v := false
			d.KeepDefault = &v
		case flag == "compact":
			v := true
			d.Compact = &v
		case flag == "nocompact":
			v := false
			d.Compact = &v
		case strings.HasPrefix(flag, "order="):
			n, err := strconv.Atoi(flag[len("order="):])
			if err != nil {
				return newMappingError(ErrInvalidTag, "derive", t, field, fmt.Errorf("bad order %q", flag))
			}
			d.Order = &n
		case strings.HasPrefix(flag, "gen="):
			ref := GeneratorRef(flag[len("gen="):])
			if !IsValidGeneratorRef(ref) {
				return newMappingError(ErrInvalidTag, "derive", t, field, fmt.Errorf("unknown generator %q", ref))
			}
			d.Generator = ref
		default:
			return newMappingError(ErrInvalidTag, "derive", t, field, fmt.Errorf("unknown flag %q", flag))
		}
	}

	return nil
}

// parseDefaultLiteral converts a default tag literal to the field's type.
func parseDefaultLiteral(ft reflect.Type, lit string) (any, error) {
	v := reflect.New(ft).Elem()
	switch ft.Kind() {
	case reflect.String:
		v.SetString(lit)
	case reflect.Bool:
		b, err := strconv.ParseBool(lit)
		if err != nil {
			return nil, fmt.Errorf("bad bool default %q", lit)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil || v.OverflowInt(n) {
			return nil, fmt.Errorf("bad int default %q", lit)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(lit, 10, 64)
		if err != nil || v.OverflowUint(n) {
			return nil, fmt.Errorf("bad uint default %q", lit)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil || v.OverflowFloat(f) {
			return nil, fmt.Errorf("bad float default %q", lit)
		}
		v.SetFloat(f)
	default:
		return nil, fmt.Errorf("default tag unsupported for %s fields", ft.Kind())
	}
	return v.Interface(), nil
}
