package docmap

import (
	"reflect"
)

// Selector names one field of T by reference instead of by string, so
// configuration code cannot silently drift from the struct definition:
//
//	m.MapID(func(o *Order) any { return &o.ID })
//
// A selector must return the address of a field declared directly on T.
// The implicit conversion to any is the only transformation permitted;
// value results, addresses outside the struct, and nested or promoted
// members fail with ErrInvalidSelector.
type Selector[T any] func(*T) any

// resolveSelector evaluates sel against a zero value of T and returns the
// struct field it addresses.
func resolveSelector[T any](sel Selector[T]) (reflect.StructField, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, newSelectorError(t, "type is not a struct")
	}

	pv := reflect.New(t)
	out := sel(pv.Interface().(*T))
	if out == nil {
		return reflect.StructField{}, newSelectorError(t, "selector returned nil")
	}

	ov := reflect.ValueOf(out)
	if ov.Kind() != reflect.Pointer || ov.IsNil() {
		return reflect.StructField{}, newSelectorError(t, "selector must return the address of a field")
	}

	base := pv.Pointer()
	addr := ov.Pointer()
	if addr < base || addr >= base+t.Size() {
		return reflect.StructField{}, newSelectorError(t, "selector target is outside the struct")
	}
	offset := addr - base

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		if sf.Offset == uintptr(offset) && reflect.PointerTo(sf.Type) == ov.Type() {
			return sf, nil
		}
	}
	return reflect.StructField{}, newSelectorError(t, "selector does not address a field declared on the type")
}

// Map is a typed view over an unregistered TypeMap, used for
// registration-time customization. Methods mutate the underlying map;
// once Register inserts it into a registry the map is read-only.
type Map[T any] struct {
	tm *TypeMap
}

// TypeMap returns the underlying type map.
func (m *Map[T]) TypeMap() *TypeMap { return m.tm }

// MapField returns the field map for the selected field, creating one with
// convention-derived settings when the field is not yet mapped.
func (m *Map[T]) MapField(sel Selector[T]) (*FieldMap, error) {
	sf, err := resolveSelector(sel)
	if err != nil {
		return nil, err
	}
	if fm := m.tm.fieldByName(sf.Name); fm != nil {
		return fm, nil
	}
	fm := &FieldMap{
		fieldName:   sf.Name,
		index:       append([]int(nil), sf.Index...),
		declaring:   m.tm.typ,
		valueType:   sf.Type,
		elementName: m.tm.conventions.Naming(sf.Name),
		order:       OrderUnordered,
		keepDefault: true,
		compact:     m.tm.compact || isCompactable(sf.Type),
	}
	m.tm.fields = append(m.tm.fields, fm)
	return fm, nil
}

// MapID maps the selected field as the document identifier, forcing its
// element name to IDElementName and attaching an optional generator.
func (m *Map[T]) MapID(sel Selector[T], gen ...GeneratorRef) (*FieldMap, error) {
	fm, err := m.MapField(sel)
	if err != nil {
		return nil, err
	}
	fm.elementName = IDElementName
	if len(gen) > 0 {
		fm.generator = generatorFor(gen[0])
	}
	m.tm.idCandidate = fm
	return fm, nil
}

// RemoveField unmaps the selected field.
func (m *Map[T]) RemoveField(sel Selector[T]) error {
	sf, err := resolveSelector(sel)
	if err != nil {
		return err
	}
	for i, fm := range m.tm.fields {
		if fm.fieldName == sf.Name {
			m.tm.fields = append(m.tm.fields[:i:i], m.tm.fields[i+1:]...)
			if m.tm.idCandidate == fm {
				m.tm.idCandidate = nil
			}
			return nil
		}
	}
	return nil
}

// SetDiscriminator overrides the type's discriminator string.
func (m *Map[T]) SetDiscriminator(d string) *Map[T] {
	m.tm.discriminator = d
	return m
}

// RequireDiscriminator forces encoders to always emit the discriminator
// for this type. The flag is inherited by every embedding type and cannot
// be unset downstream.
func (m *Map[T]) RequireDiscriminator() *Map[T] {
	m.tm.discRequired = true
	return m
}

// SetIgnoreExtra overrides the unknown-element policy.
func (m *Map[T]) SetIgnoreExtra(ignore bool) *Map[T] {
	m.tm.ignoreExtra = ignore
	return m
}

// SetCompact overrides the type-level compact default.
func (m *Map[T]) SetCompact(compact bool) *Map[T] {
	m.tm.compact = compact
	return m
}

// Register derives, customizes, and registers a type map for T in the
// default registry. Registration fails with ErrDuplicateRegistration when
// T already has a map; the existing map is left untouched.
func Register[T any](customize ...func(*Map[T])) (*TypeMap, error) {
	return RegisterIn(DefaultRegistry, customize...)
}

// RegisterIn is Register against an explicit registry.
func RegisterIn[T any](r *Registry, customize ...func(*Map[T])) (*TypeMap, error) {
	t := normalizeType(reflect.TypeFor[T]())

	r.mu.Lock()
	if _, ok := r.maps[t]; ok {
		r.mu.Unlock()
		return nil, newRegistrationError(ErrDuplicateRegistration, t)
	}
	tm, err := r.deriveLocked(t)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m := &Map[T]{tm: tm}
	for _, fn := range customize {
		fn(m)
	}

	if err := r.Register(tm); err != nil {
		return nil, err
	}
	return tm, nil
}
