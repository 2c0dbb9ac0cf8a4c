package docmap

import (
	"math"
	"reflect"
)

// OrderUnordered is the serialized order of fields without an explicit order
// directive. Unordered fields sort after every ordered field, keeping their
// declaration order among themselves.
const OrderUnordered = math.MaxInt

// FieldMap describes how one field converts to a document element.
// Setters may be used until the owning TypeMap is registered; after that a
// FieldMap is read-only.
type FieldMap struct {
	elementName string
	fieldName   string
	index       []int
	declaring   reflect.Type
	valueType   reflect.Type
	order       int
	def         any
	hasDefault  bool
	keepDefault bool
	omitNil     bool
	required    bool
	generator   IDGenerator
	compact     bool
}

// ElementName returns the document element name for this field.
func (f *FieldMap) ElementName() string { return f.elementName }

// FieldName returns the Go field name.
func (f *FieldMap) FieldName() string { return f.fieldName }

// Index returns the field's index path within its declaring type.
func (f *FieldMap) Index() []int { return f.index }

// DeclaringType returns the struct type that declares this field.
func (f *FieldMap) DeclaringType() reflect.Type { return f.declaring }

// ValueType returns the field's declared value type.
func (f *FieldMap) ValueType() reflect.Type { return f.valueType }

// Order returns the serialized order, OrderUnordered when unset.
func (f *FieldMap) Order() int { return f.order }

// Default returns the mapped default value and whether one is set.
func (f *FieldMap) Default() (any, bool) { return f.def, f.hasDefault }

// KeepDefault reports whether the field is serialized when equal to its
// default value.
func (f *FieldMap) KeepDefault() bool { return f.keepDefault }

// OmitNil reports whether nil pointer/slice/map values are omitted.
func (f *FieldMap) OmitNil() bool { return f.omitNil }

// Required reports whether the element must be present on decode.
func (f *FieldMap) Required() bool { return f.required }

// Generator returns the identifier generator attached to this field, nil
// for non-identifier fields and identifiers without one.
func (f *FieldMap) Generator() IDGenerator { return f.generator }

// Compact reports whether in-range integers narrow on encode.
func (f *FieldMap) Compact() bool { return f.compact }

// SetElementName overrides the element name.
func (f *FieldMap) SetElementName(name string) *FieldMap {
	f.elementName = name
	return f
}

// SetOrder sets an explicit serialized order.
func (f *FieldMap) SetOrder(order int) *FieldMap {
	f.order = order
	return f
}

// SetDefault sets the default value applied to absent elements on decode.
func (f *FieldMap) SetDefault(v any) *FieldMap {
	f.def = v
	f.hasDefault = true
	return f
}

// SetKeepDefault controls whether the default value is serialized.
func (f *FieldMap) SetKeepDefault(keep bool) *FieldMap {
	f.keepDefault = keep
	return f
}

// SetOmitNil controls omission of nil values on encode.
func (f *FieldMap) SetOmitNil(omit bool) *FieldMap {
	f.omitNil = omit
	return f
}

// SetRequired controls decode-time presence enforcement.
func (f *FieldMap) SetRequired(required bool) *FieldMap {
	f.required = required
	return f
}

// SetGenerator attaches an identifier generator.
func (f *FieldMap) SetGenerator(g IDGenerator) *FieldMap {
	f.generator = g
	return f
}

// SetCompact controls integer narrowing for this field.
func (f *FieldMap) SetCompact(compact bool) *FieldMap {
	f.compact = compact
	return f
}
