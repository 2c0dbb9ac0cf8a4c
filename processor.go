package docmap

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Processor converts values of T to and from bytes by walking T's type
// map: effective fields encode base-first in mapped order, a discriminator
// element routes polymorphic decode, and the codec owns the byte format.
//
// Processors are safe for concurrent use. Marshal never mutates its input;
// identifier generation is an explicit TypeMap.EnsureID call.
type Processor[T any] struct {
	codec    Codec
	registry *Registry
	tm       *TypeMap
	typeName string
}

// NewProcessor creates a Processor for T over the default registry,
// deriving and registering T's type map if needed.
func NewProcessor[T any](codec Codec) (*Processor[T], error) {
	return NewProcessorIn[T](DefaultRegistry, codec)
}

// NewProcessorIn is NewProcessor against an explicit registry.
func NewProcessorIn[T any](r *Registry, codec Codec) (*Processor[T], error) {
	t := normalizeType(reflect.TypeFor[T]())
	tm, err := r.LookupOrCreate(t)
	if err != nil {
		return nil, err
	}
	return &Processor[T]{
		codec:    codec,
		registry: r,
		tm:       tm,
		typeName: TypeName(t),
	}, nil
}

// TypeMap returns the type map the processor walks.
func (p *Processor[T]) TypeMap() *TypeMap { return p.tm }

// Encode converts v into an ordered Document without touching the codec.
// For interface T the dynamic value encodes with its discriminator.
func (p *Processor[T]) Encode(v T) (Document, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("cannot encode nil %s", p.typeName)
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot encode nil %s", p.typeName)
		}
		rv = rv.Elem()
	}
	return encodeStruct(p.registry, rv, p.tm.typ)
}

// Decode converts an ordered Document back into a value of T.
func (p *Processor[T]) Decode(doc Document) (T, error) {
	var zero T
	rv, err := decodeStruct(p.registry, p.tm.typ, doc)
	if err != nil {
		return zero, err
	}
	out, ok := rv.Interface().(T)
	if !ok {
		return zero, newMappingError(ErrUnknownElement, "decode", rv.Type(), "", fmt.Errorf("decoded %s is not %s", TypeName(rv.Type()), p.typeName))
	}
	return out, nil
}

// Marshal encodes v into bytes via the codec.
func (p *Processor[T]) Marshal(ctx context.Context, v T) ([]byte, error) {
	start := time.Now()
	emitMarshalStart(ctx, p.codec.ContentType(), p.typeName)

	var retErr error
	var retData []byte
	defer func() {
		emitMarshalComplete(ctx, p.codec.ContentType(), p.typeName,
			len(retData), time.Since(start), retErr)
	}()

	doc, err := p.Encode(v)
	if err != nil {
		retErr = err
		return nil, retErr
	}

	retData, err = p.codec.Marshal(doc)
	if err != nil {
		retErr = newCodecError(ErrMarshal, err)
		return nil, retErr
	}
	return retData, nil
}

// Unmarshal decodes data into a value of T via the codec. A discriminator
// element in the data selects the concrete type; without one the data
// decodes as T itself.
func (p *Processor[T]) Unmarshal(ctx context.Context, data []byte) (T, error) {
	start := time.Now()
	emitUnmarshalStart(ctx, p.codec.ContentType(), p.typeName)

	var zero T
	var retErr error
	defer func() {
		emitUnmarshalComplete(ctx, p.codec.ContentType(), p.typeName,
			len(data), time.Since(start), retErr)
	}()

	doc, err := p.codec.Unmarshal(data)
	if err != nil {
		retErr = newCodecError(ErrUnmarshal, err)
		return zero, retErr
	}

	out, err := p.Decode(doc)
	if err != nil {
		retErr = err
		return zero, retErr
	}
	return out, nil
}

// --- encoding ---

var timeType = reflect.TypeFor[time.Time]()

// encodeStruct walks rv's type map into a Document. The discriminator
// element is emitted first when the dynamic type differs from the static
// type or the map requires it.
func encodeStruct(r *Registry, rv reflect.Value, static reflect.Type) (Document, error) {
	tm, err := r.LookupOrCreate(rv.Type())
	if err != nil {
		return nil, err
	}
	// Identifier resolution may rename a discovered field; force it before
	// element names are read.
	if _, err := tm.IDField(); err != nil {
		return nil, err
	}

	doc := Document{}
	if rv.Type() != static || tm.DiscriminatorRequired() {
		doc = append(doc, Element{Key: DiscriminatorElementName, Value: tm.Discriminator()})
	}

	fields, err := tm.EffectiveFields()
	if err != nil {
		return nil, err
	}
	for _, fm := range fields {
		sv, ok := structValueFor(rv, fm.DeclaringType())
		if !ok {
			continue
		}
		fv := sv.FieldByIndex(fm.Index())

		if fm.OmitNil() && isNilValue(fv) {
			continue
		}
		if !fm.KeepDefault() && equalsDefault(fv, fm) {
			continue
		}

		val, err := encodeValue(r, fv, fm.ValueType(), fm.Compact())
		if err != nil {
			return nil, newMappingError(ErrMarshal, "encode", rv.Type(), fm.FieldName(), err)
		}
		doc = append(doc, Element{Key: fm.ElementName(), Value: val})
	}
	return doc, nil
}

// encodeValue converts one field value into its document representation.
func encodeValue(r *Registry, fv reflect.Value, static reflect.Type, compact bool) (any, error) {
	switch fv.Kind() {
	case reflect.Interface:
		if fv.IsNil() {
			return nil, nil
		}
		// The static type stays the interface so the concrete struct gets
		// its discriminator element.
		return encodeValue(r, fv.Elem(), static, compact)

	case reflect.Pointer:
		if fv.IsNil() {
			return nil, nil
		}
		elemStatic := static
		if elemStatic.Kind() == reflect.Pointer {
			elemStatic = elemStatic.Elem()
		}
		return encodeValue(r, fv.Elem(), elemStatic, compact)

	case reflect.Struct:
		if fv.Type() == timeType {
			return fv.Interface(), nil
		}
		return encodeStruct(r, fv, normalizeType(static))

	case reflect.Slice, reflect.Array:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			return fv.Interface(), nil
		}
		out := make([]any, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			v, err := encodeValue(r, fv.Index(i), fv.Type().Elem(), compact)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case reflect.Map:
		if fv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key type %s is not a string", TypeName(fv.Type().Key()))
		}
		keys := fv.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		sort.Strings(names)
		out := Document{}
		for _, name := range names {
			v, err := encodeValue(r, fv.MapIndex(reflect.ValueOf(name).Convert(fv.Type().Key())), fv.Type().Elem(), compact)
			if err != nil {
				return nil, err
			}
			out = append(out, Element{Key: name, Value: v})
		}
		return out, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := fv.Int()
		if compact && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n), nil
		}
		return n, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := fv.Uint()
		if compact && u <= math.MaxInt32 {
			return int32(u), nil
		}
		if u <= math.MaxInt64 {
			return int64(u), nil
		}
		return u, nil

	case reflect.Bool:
		return fv.Bool(), nil

	case reflect.Float32, reflect.Float64:
		return fv.Float(), nil

	case reflect.String:
		return fv.String(), nil

	default:
		return nil, fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
}

// isNilValue reports whether fv is a nil pointer, slice, map, or interface.
func isNilValue(fv reflect.Value) bool {
	switch fv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func:
		return fv.IsNil()
	}
	return false
}

// equalsDefault reports whether fv equals the field's mapped default, or
// its zero value when no default is mapped.
func equalsDefault(fv reflect.Value, fm *FieldMap) bool {
	if def, ok := fm.Default(); ok {
		return reflect.DeepEqual(fv.Interface(), def)
	}
	return fv.IsZero()
}

// --- decoding ---

// decodeStruct converts a Document into a value assignable to static. A
// discriminator element selects the concrete type through the registry;
// interface statics without one cannot be decoded.
func decodeStruct(r *Registry, static reflect.Type, doc Document) (reflect.Value, error) {
	actual := normalizeType(static)
	if raw, ok := doc.Get(DiscriminatorElementName); ok {
		disc, _ := raw.(string)
		t, err := r.LookupActualType(static, disc)
		if err != nil {
			return reflect.Value{}, err
		}
		actual = normalizeType(t)
	} else if actual.Kind() == reflect.Interface {
		return reflect.Value{}, newMappingError(ErrMissingElement, "decode", static, DiscriminatorElementName, nil)
	}

	tm, err := r.LookupOrCreate(actual)
	if err != nil {
		return reflect.Value{}, err
	}
	idx, err := tm.elementIndex()
	if err != nil {
		return reflect.Value{}, err
	}

	rv := reflect.New(actual).Elem()
	seen := make(map[*FieldMap]bool)

	for _, e := range doc {
		if e.Key == DiscriminatorElementName {
			continue
		}
		fm, ok := idx[e.Key]
		if !ok {
			if tm.IgnoreExtra() {
				continue
			}
			return reflect.Value{}, newMappingError(ErrUnknownElement, "decode", actual, e.Key, nil)
		}
		sv, ok := structValueFor(rv, fm.DeclaringType())
		if !ok {
			return reflect.Value{}, newMappingError(ErrUnknownElement, "decode", actual, e.Key, nil)
		}
		fv := sv.FieldByIndex(fm.Index())
		if err := assignValue(r, fv, e.Value); err != nil {
			return reflect.Value{}, newMappingError(ErrUnmarshal, "decode", actual, fm.FieldName(), err)
		}
		seen[fm] = true
	}

	fields, err := tm.EffectiveFields()
	if err != nil {
		return reflect.Value{}, err
	}
	for _, fm := range fields {
		if seen[fm] {
			continue
		}
		if def, ok := fm.Default(); ok {
			sv, found := structValueFor(rv, fm.DeclaringType())
			if found {
				if err := assignValue(r, sv.FieldByIndex(fm.Index()), def); err != nil {
					return reflect.Value{}, newMappingError(ErrUnmarshal, "decode", actual, fm.FieldName(), err)
				}
			}
			continue
		}
		if fm.Required() {
			return reflect.Value{}, newMappingError(ErrMissingElement, "decode", actual, fm.ElementName(), nil)
		}
	}

	return rv, nil
}

// assignValue writes a document value into a field, coercing the loose
// numeric and container representations codecs produce.
func assignValue(r *Registry, fv reflect.Value, raw any) error {
	if raw == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	switch fv.Kind() {
	case reflect.Pointer:
		elem := reflect.New(fv.Type().Elem())
		if err := assignValue(r, elem.Elem(), raw); err != nil {
			return err
		}
		fv.Set(elem)
		return nil

	case reflect.Interface, reflect.Struct:
		if fv.Type() == timeType {
			return assignTime(fv, raw)
		}
		var doc Document
		switch v := raw.(type) {
		case Document:
			doc = v
		case map[string]any:
			for k, val := range v {
				doc = append(doc, Element{Key: k, Value: val})
			}
		default:
			rvRaw := reflect.ValueOf(raw)
			if rvRaw.Type().AssignableTo(fv.Type()) {
				fv.Set(rvRaw)
				return nil
			}
			return fmt.Errorf("cannot decode %T into %s", raw, TypeName(fv.Type()))
		}
		sv, err := decodeStruct(r, fv.Type(), doc)
		if err != nil {
			return err
		}
		fv.Set(sv)
		return nil

	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			switch v := raw.(type) {
			case []byte:
				fv.SetBytes(v)
				return nil
			case string:
				// JSON renders byte slices as base64 strings.
				b, err := base64.StdEncoding.DecodeString(v)
				if err != nil {
					return fmt.Errorf("bad base64 for %s: %w", TypeName(fv.Type()), err)
				}
				fv.SetBytes(b)
				return nil
			}
		}
		arr, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("cannot decode %T into %s", raw, TypeName(fv.Type()))
		}
		out := reflect.MakeSlice(fv.Type(), len(arr), len(arr))
		for i, e := range arr {
			if err := assignValue(r, out.Index(i), e); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil

	case reflect.Map:
		var doc Document
		switch v := raw.(type) {
		case Document:
			doc = v
		case map[string]any:
			for k, val := range v {
				doc = append(doc, Element{Key: k, Value: val})
			}
		default:
			return fmt.Errorf("cannot decode %T into %s", raw, TypeName(fv.Type()))
		}
		out := reflect.MakeMapWithSize(fv.Type(), len(doc))
		for _, e := range doc {
			val := reflect.New(fv.Type().Elem()).Elem()
			if err := assignValue(r, val, e.Value); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(e.Key).Convert(fv.Type().Key()), val)
		}
		fv.Set(out)
		return nil

	case reflect.String:
		switch v := raw.(type) {
		case string:
			fv.SetString(v)
		case []byte:
			fv.SetString(string(v))
		default:
			return fmt.Errorf("cannot decode %T into %s", raw, TypeName(fv.Type()))
		}
		return nil

	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("cannot decode %T into %s", raw, TypeName(fv.Type()))
		}
		fv.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := toInt64(raw)
		if !ok || fv.OverflowInt(n) {
			return fmt.Errorf("cannot decode %T(%v) into %s", raw, raw, TypeName(fv.Type()))
		}
		fv.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := toInt64(raw)
		if !ok || n < 0 || fv.OverflowUint(uint64(n)) {
			return fmt.Errorf("cannot decode %T(%v) into %s", raw, raw, TypeName(fv.Type()))
		}
		fv.SetUint(uint64(n))
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := toFloat64(raw)
		if !ok || fv.OverflowFloat(f) {
			return fmt.Errorf("cannot decode %T(%v) into %s", raw, raw, TypeName(fv.Type()))
		}
		fv.SetFloat(f)
		return nil

	default:
		rvRaw := reflect.ValueOf(raw)
		if rvRaw.Type().AssignableTo(fv.Type()) {
			fv.Set(rvRaw)
			return nil
		}
		if rvRaw.Type().ConvertibleTo(fv.Type()) {
			fv.Set(rvRaw.Convert(fv.Type()))
			return nil
		}
		return fmt.Errorf("cannot decode %T into %s", raw, TypeName(fv.Type()))
	}
}

// assignTime accepts the time representations codecs produce.
func assignTime(fv reflect.Value, raw any) error {
	switch v := raw.(type) {
	case time.Time:
		fv.Set(reflect.ValueOf(v))
		return nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("bad time %q: %w", v, err)
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}
	return fmt.Errorf("cannot decode %T into time.Time", raw)
}

// toInt64 coerces the integer representations codecs produce.
func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case float32:
		f := float64(v)
		if f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}

// toFloat64 coerces the float representations codecs produce.
func toFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// --- processor cache ---

// processorKey combines type and codec for cache lookup.
type processorKey struct {
	typ         reflect.Type
	contentType string
}

var (
	processorCache = make(map[processorKey]any)
	processorMu    sync.RWMutex
)

// Use returns a cached processor or builds a new one over the default
// registry. The processor is cached by type and codec content type.
func Use[T any](codec Codec) (*Processor[T], error) {
	typ := normalizeType(reflect.TypeFor[T]())
	key := processorKey{typ: typ, contentType: codec.ContentType()}

	// Fast path: read-lock cache check
	processorMu.RLock()
	if cached, ok := processorCache[key]; ok {
		processorMu.RUnlock()
		return cached.(*Processor[T]), nil
	}
	processorMu.RUnlock()

	// Slow path: build and cache with write-lock
	processorMu.Lock()
	defer processorMu.Unlock()

	// Double-check pattern
	if cached, ok := processorCache[key]; ok {
		return cached.(*Processor[T]), nil
	}

	processor, err := NewProcessor[T](codec)
	if err != nil {
		return nil, err
	}

	processorCache[key] = processor
	return processor, nil
}

// resetProcessors clears the processor cache.
func resetProcessors() {
	processorMu.Lock()
	defer processorMu.Unlock()
	processorCache = make(map[processorKey]any)
}
