package docmap

import "reflect"

// Conventions bundles the policy strategies applied when a type or field
// carries no explicit directive. Profiles are immutable once registered: a
// partial profile is merged over the default profile so every slot is
// populated, and the merged copy is what the registry consults.
type Conventions struct {
	// Name labels the profile in events. Optional.
	Name string

	// Naming derives an element name from a field name.
	Naming func(field string) string

	// FindID discovers the identifier field among a type's own fields,
	// returning its field name. Only consulted when no field carries an
	// explicit id directive and no ancestor supplies an identifier.
	FindID func(fields []FieldShape) (string, bool)

	// Default derives a default value for a field with no default tag.
	Default func(f FieldShape) (any, bool)

	// KeepDefault reports whether a field equal to its default is still
	// serialized.
	KeepDefault func(f FieldShape) bool

	// OmitNil reports whether nil pointer/slice/map values are omitted.
	OmitNil func(f FieldShape) bool

	// IgnoreExtra reports whether decoders drop unknown elements for t.
	IgnoreExtra func(t reflect.Type) bool

	// Compact reports whether numeric fields of t narrow in-range integers
	// by default.
	Compact func(t reflect.Type) bool
}

// DefaultConventions returns the complete base profile: as-is naming,
// identifier discovery by field name (ID, then Id), no derived defaults,
// defaults serialized, nils written, unknown elements rejected, compact off.
func DefaultConventions() *Conventions {
	return &Conventions{
		Name:   "default",
		Naming: AsIsNaming,
		FindID: func(fields []FieldShape) (string, bool) {
			for _, want := range []string{"ID", "Id"} {
				for _, f := range fields {
					if f.Name == want {
						return f.Name, true
					}
				}
			}
			return "", false
		},
		Default:     func(FieldShape) (any, bool) { return nil, false },
		KeepDefault: func(FieldShape) bool { return true },
		OmitNil:     func(FieldShape) bool { return false },
		IgnoreExtra: func(reflect.Type) bool { return false },
		Compact:     func(reflect.Type) bool { return false },
	}
}

// merged returns a copy of c with every unset slot taken from base.
func (c *Conventions) merged(base *Conventions) *Conventions {
	m := *c
	if m.Naming == nil {
		m.Naming = base.Naming
	}
	if m.FindID == nil {
		m.FindID = base.FindID
	}
	if m.Default == nil {
		m.Default = base.Default
	}
	if m.KeepDefault == nil {
		m.KeepDefault = base.KeepDefault
	}
	if m.OmitNil == nil {
		m.OmitNil = base.OmitNil
	}
	if m.IgnoreExtra == nil {
		m.IgnoreExtra = base.IgnoreExtra
	}
	if m.Compact == nil {
		m.Compact = base.Compact
	}
	return &m
}

// TypeFilter decides whether a convention profile applies to a type.
type TypeFilter func(t reflect.Type) bool

// filteredConventions pairs a filter with a merged profile. The source
// pointer identifies the profile the caller registered, for unregistration.
type filteredConventions struct {
	filter  TypeFilter
	profile *Conventions
	source  *Conventions
}
