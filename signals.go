package docmap

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for docmap events.
var (
	SignalTypeMapRegistered     = capitan.NewSignal("docmap.typemap.registered", "Type map registered")
	SignalTypeMapRemoved        = capitan.NewSignal("docmap.typemap.removed", "Type map removed")
	SignalConventionsRegistered = capitan.NewSignal("docmap.conventions.registered", "Convention profile registered")
	SignalConventionsRemoved    = capitan.NewSignal("docmap.conventions.removed", "Convention profile removed")
	SignalDiscriminatorResolved = capitan.NewSignal("docmap.discriminator.resolved", "Discriminator resolved to a concrete type")
	SignalMarshalStart          = capitan.NewSignal("docmap.marshal.start", "Marshal operation beginning")
	SignalMarshalComplete       = capitan.NewSignal("docmap.marshal.complete", "Marshal operation finished")
	SignalUnmarshalStart        = capitan.NewSignal("docmap.unmarshal.start", "Unmarshal operation beginning")
	SignalUnmarshalComplete     = capitan.NewSignal("docmap.unmarshal.complete", "Unmarshal operation finished")
)

// Keys for typed event data.
var (
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeyContentType   = capitan.NewStringKey("content_type")
	KeyDiscriminator = capitan.NewStringKey("discriminator")
	KeyNominalType   = capitan.NewStringKey("nominal_type")
	KeyActualType    = capitan.NewStringKey("actual_type")
	KeyFieldCount    = capitan.NewIntKey("field_count")
	KeySize          = capitan.NewIntKey("size")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
)

// emitTypeMapRegistered emits an event when a type map enters the registry.
func emitTypeMapRegistered(ctx context.Context, typeName, discriminator string, fieldCount int) {
	capitan.Emit(ctx, SignalTypeMapRegistered,
		KeyTypeName.Field(typeName),
		KeyDiscriminator.Field(discriminator),
		KeyFieldCount.Field(fieldCount),
	)
}

// emitTypeMapRemoved emits an event when a type map leaves the registry.
func emitTypeMapRemoved(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalTypeMapRemoved,
		KeyTypeName.Field(typeName),
	)
}

// emitConventionsRegistered emits an event when a convention profile is added.
func emitConventionsRegistered(ctx context.Context, name string) {
	capitan.Emit(ctx, SignalConventionsRegistered,
		KeyTypeName.Field(name),
	)
}

// emitConventionsRemoved emits an event when a convention profile is removed.
func emitConventionsRemoved(ctx context.Context, name string) {
	capitan.Emit(ctx, SignalConventionsRemoved,
		KeyTypeName.Field(name),
	)
}

// emitDiscriminatorResolved emits an event when polymorphic resolution finishes.
func emitDiscriminatorResolved(ctx context.Context, discriminator, nominal, actual string, err error) {
	fields := []capitan.Field{
		KeyDiscriminator.Field(discriminator),
		KeyNominalType.Field(nominal),
		KeyActualType.Field(actual),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDiscriminatorResolved, fields...)
	} else {
		capitan.Emit(ctx, SignalDiscriminatorResolved, fields...)
	}
}

// emitMarshalStart emits an event when marshal begins.
func emitMarshalStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalMarshalStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitMarshalComplete emits an event when marshal finishes.
func emitMarshalComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalMarshalComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalMarshalComplete, fields...)
	}
}

// emitUnmarshalStart emits an event when unmarshal begins.
func emitUnmarshalStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalUnmarshalStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitUnmarshalComplete emits an event when unmarshal finishes.
func emitUnmarshalComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalUnmarshalComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalUnmarshalComplete, fields...)
	}
}
