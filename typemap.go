package docmap

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"
)

// TypeMap is the resolved description of how one type converts to and from
// a document: its fields, element names, identifier, discriminator, and
// policies. Type maps are derived once per type and cached in a Registry;
// after registration they are read-only and safe for concurrent use.
//
// Base and IDField resolve lazily on first access. A type's own field list
// never duplicates inherited fields; the effective list is the base chain's
// fields followed by its own.
type TypeMap struct {
	typ         reflect.Type
	registry    *Registry
	conventions *Conventions
	shape       *TypeShape

	discriminator string
	discRequired  bool
	anonymous     bool
	ignoreExtra   bool
	compact       bool

	fields      []*FieldMap
	idCandidate *FieldMap

	baseOnce sync.Once
	base     *TypeMap
	baseErr  error

	idOnce sync.Once
	id     *FieldMap
	idErr  error

	elemOnce  sync.Once
	byElement map[string]*FieldMap
	elemErr   error
}

// deriveLocked auto-maps t against its selected conventions. Caller holds
// the registry lock. Derivation itself is pure; it only fails through the
// shape provider or the recursive registration of declared known subtypes.
func (r *Registry) deriveLocked(t reflect.Type) (*TypeMap, error) {
	// A known-subtype cycle back into a type mid-derivation would register
	// it twice; fail the same way a double registration does.
	if r.deriving[t] {
		return nil, newRegistrationError(ErrDuplicateRegistration, t)
	}
	r.deriving[t] = true
	defer delete(r.deriving, t)

	shape, err := r.shapes.Shape(t)
	if err != nil {
		return nil, err
	}
	conv := r.selectConventionsLocked(t)

	m := &TypeMap{
		typ:           t,
		registry:      r,
		conventions:   conv,
		shape:         shape,
		anonymous:     shape.Anonymous,
		discriminator: shape.Name,
	}

	// Known subtypes register eagerly so their discriminators are indexed
	// before any polymorphic decode needs them.
	for _, sub := range shape.Directives.KnownSubtypes {
		if _, err := r.lookupOrCreateLocked(sub); err != nil {
			return nil, err
		}
	}

	if shape.Directives.HasDiscriminator {
		m.discriminator = shape.Directives.Discriminator
		m.discRequired = shape.Directives.DiscriminatorRequired
	}
	if shape.Directives.IgnoreExtra != nil {
		m.ignoreExtra = *shape.Directives.IgnoreExtra
	} else {
		m.ignoreExtra = conv.IgnoreExtra(t)
	}
	if shape.Directives.Compact != nil {
		m.compact = *shape.Directives.Compact
	} else {
		m.compact = conv.Compact(t)
	}

	hasOrder := false
	for _, fs := range shape.Fields {
		dir := fs.Directives
		if dir.Ignore || !fs.CanRead {
			continue
		}
		// Write-only mapping is only meaningful for anonymous record types.
		if !fs.CanWrite && !shape.Anonymous {
			continue
		}

		fm := &FieldMap{
			fieldName:   fs.Name,
			index:       slices.Clone(fs.Index),
			declaring:   t,
			valueType:   fs.Type,
			order:       OrderUnordered,
			keepDefault: true,
		}

		// The identifier directive wins over an explicit element name.
		switch {
		case dir.ID:
			fm.elementName = IDElementName
		case dir.ElementName != "":
			fm.elementName = dir.ElementName
		default:
			fm.elementName = conv.Naming(fs.Name)
		}

		if dir.Order != nil {
			fm.order = *dir.Order
			hasOrder = true
		}

		if dir.ID {
			fm.generator = generatorFor(dir.Generator)
			m.idCandidate = fm
		}

		if dir.HasDefault {
			fm.def = dir.Default
			fm.hasDefault = true
		} else if v, ok := conv.Default(fs); ok {
			fm.def = v
			fm.hasDefault = true
		}
		if dir.KeepDefault != nil {
			fm.keepDefault = *dir.KeepDefault
		} else {
			fm.keepDefault = conv.KeepDefault(fs)
		}
		if dir.OmitNil != nil {
			fm.omitNil = *dir.OmitNil
		} else {
			fm.omitNil = conv.OmitNil(fs)
		}
		fm.required = dir.Required

		switch {
		case dir.Compact != nil:
			fm.compact = *dir.Compact
		case m.compact:
			fm.compact = true
		default:
			fm.compact = isCompactable(fs.Type)
		}

		m.fields = append(m.fields, fm)
	}

	// Explicit orders sort ascending ahead of unordered fields; the stable
	// sort keeps declaration order among equal orders. Without any explicit
	// order, declaration order stands untouched.
	if hasOrder {
		sort.SliceStable(m.fields, func(i, j int) bool {
			return m.fields[i].order < m.fields[j].order
		})
	}

	return m, nil
}

// isCompactable reports whether a field type defaults to compact
// representation: primitive numeric and boolean types.
func isCompactable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Type returns the mapped type.
func (m *TypeMap) Type() reflect.Type { return m.typ }

// Conventions returns the profile selected for this type at derivation.
func (m *TypeMap) Conventions() *Conventions { return m.conventions }

// Discriminator returns the type's discriminator string, its simple type
// name unless overridden.
func (m *TypeMap) Discriminator() string { return m.discriminator }

// DiscriminatorRequired reports whether encoders must always emit the
// discriminator for this type. The flag is monotonic down the embedding
// chain: a type whose base requires a discriminator requires one too.
func (m *TypeMap) DiscriminatorRequired() bool {
	// Base resolution propagates the flag from ancestors.
	m.Base() //nolint:errcheck // an unresolvable base leaves the declared flag
	return m.discRequired
}

// Anonymous reports whether the mapped type is structurally unnamed.
func (m *TypeMap) Anonymous() bool { return m.anonymous }

// IgnoreExtra reports whether decoders drop unknown elements.
func (m *TypeMap) IgnoreExtra() bool { return m.ignoreExtra }

// Compact reports the type-level compact-representation default.
func (m *TypeMap) Compact() bool { return m.compact }

// Fields returns the fields declared directly on this type, in mapped
// order. Inherited fields are reached through Base.
func (m *TypeMap) Fields() []*FieldMap {
	return slices.Clone(m.fields)
}

// Base returns the type map of the immediate base type, nil for root
// types. The link resolves once on first access; resolution registers the
// base type if needed and propagates a required discriminator downward.
func (m *TypeMap) Base() (*TypeMap, error) {
	m.baseOnce.Do(func() {
		if m.shape.Base == nil {
			return
		}
		base, err := m.registry.LookupOrCreate(m.shape.Base)
		if err != nil {
			m.baseErr = err
			return
		}
		m.base = base
		if base.DiscriminatorRequired() {
			m.discRequired = true
		}
	})
	return m.base, m.baseErr
}

// IDField returns the field map acting as document identifier, nil when
// the chain has none. The highest ancestor that defines an identifier
// supplies it; a type without one falls back to its profile's discovery
// strategy over its own fields. Resolves once on first access; a
// discovered identifier has its element name forced to IDElementName.
func (m *TypeMap) IDField() (*FieldMap, error) {
	m.idOnce.Do(func() {
		base, err := m.Base()
		if err != nil {
			m.idErr = err
			return
		}
		if base != nil {
			bid, err := base.IDField()
			if err != nil {
				m.idErr = err
				return
			}
			if bid != nil {
				m.id = bid
				return
			}
		}
		if m.idCandidate != nil {
			m.id = m.idCandidate
			return
		}
		if name, ok := m.conventions.FindID(m.shape.Fields); ok {
			if fm := m.fieldByName(name); fm != nil {
				fm.elementName = IDElementName
				m.id = fm
			}
		}
	})
	return m.id, m.idErr
}

// EffectiveFields returns the full field list for this type: the base
// chain's effective fields first, then its own.
func (m *TypeMap) EffectiveFields() ([]*FieldMap, error) {
	base, err := m.Base()
	if err != nil {
		return nil, err
	}
	if base == nil {
		return slices.Clone(m.fields), nil
	}
	inherited, err := base.EffectiveFields()
	if err != nil {
		return nil, err
	}
	return append(inherited, m.fields...), nil
}

// FieldForElement returns the field map routing an incoming element name.
// The routing table is built base-first so the nearest declaration wins
// when element names collide across the chain.
func (m *TypeMap) FieldForElement(name string) (*FieldMap, bool) {
	idx, err := m.elementIndex()
	if err != nil {
		return nil, false
	}
	fm, ok := idx[name]
	return fm, ok
}

func (m *TypeMap) elementIndex() (map[string]*FieldMap, error) {
	m.elemOnce.Do(func() {
		// Identifier resolution may rename a discovered field to _id.
		if _, err := m.IDField(); err != nil {
			m.elemErr = err
			return
		}
		idx := make(map[string]*FieldMap, len(m.fields))
		if base, err := m.Base(); err != nil {
			m.elemErr = err
			return
		} else if base != nil {
			bIdx, err := base.elementIndex()
			if err != nil {
				m.elemErr = err
				return
			}
			for k, v := range bIdx {
				idx[k] = v
			}
		}
		for _, fm := range m.fields {
			idx[fm.elementName] = fm
		}
		m.byElement = idx
	})
	return m.byElement, m.elemErr
}

// fieldByName returns the map for a declared field by its Go name.
func (m *TypeMap) fieldByName(name string) *FieldMap {
	for _, fm := range m.fields {
		if fm.fieldName == name {
			return fm
		}
	}
	return nil
}

// EnsureID fills the identifier field of *v when its generator considers
// the current value empty. v must be a non-nil pointer to the mapped type.
// Returns the identifier value and whether a new one was generated.
func (m *TypeMap) EnsureID(v any) (any, bool, error) {
	fm, err := m.IDField()
	if err != nil {
		return nil, false, err
	}
	if fm == nil {
		return nil, false, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != m.typ {
		return nil, false, fmt.Errorf("EnsureID: want non-nil *%s, got %T", TypeName(m.typ), v)
	}

	sv, ok := structValueFor(rv.Elem(), fm.declaring)
	if !ok {
		return nil, false, fmt.Errorf("EnsureID: %s does not embed %s", TypeName(m.typ), TypeName(fm.declaring))
	}
	fv := sv.FieldByIndex(fm.index)

	current := fv.Interface()
	gen := fm.generator
	if gen == nil || !gen.Empty(current) {
		return current, false, nil
	}

	id, err := gen.NewID()
	if err != nil {
		return nil, false, fmt.Errorf("generate id for %s: %w", TypeName(m.typ), err)
	}
	iv := reflect.ValueOf(id)
	if !iv.Type().AssignableTo(fv.Type()) {
		if !iv.Type().ConvertibleTo(fv.Type()) {
			return nil, false, fmt.Errorf("generated id %T not assignable to %s field %s", id, TypeName(m.typ), fm.fieldName)
		}
		iv = iv.Convert(fv.Type())
	}
	fv.Set(iv)
	return fv.Interface(), true, nil
}

// structValueFor descends rv's embedding chain until it reaches the struct
// value of the declaring type.
func structValueFor(rv reflect.Value, declaring reflect.Type) (reflect.Value, bool) {
	for {
		if rv.Type() == declaring {
			return rv, true
		}
		next := reflect.Value{}
		for i := 0; i < rv.NumField(); i++ {
			sf := rv.Type().Field(i)
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				next = rv.Field(i)
				break
			}
		}
		if !next.IsValid() {
			return reflect.Value{}, false
		}
		rv = next
	}
}
