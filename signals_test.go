package docmap

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitTypeMapRegistered(_ *testing.T) {
	// Should not panic
	emitTypeMapRegistered(context.Background(), "TestType", "TestType", 3)
}

func TestEmitTypeMapRemoved(_ *testing.T) {
	emitTypeMapRemoved(context.Background(), "TestType")
}

func TestEmitConventionsRegistered(_ *testing.T) {
	emitConventionsRegistered(context.Background(), "snake")
}

func TestEmitConventionsRemoved(_ *testing.T) {
	emitConventionsRemoved(context.Background(), "snake")
}

func TestEmitDiscriminatorResolved_Success(_ *testing.T) {
	emitDiscriminatorResolved(context.Background(), "D", "Base", "Derived", nil)
}

func TestEmitDiscriminatorResolved_Error(_ *testing.T) {
	emitDiscriminatorResolved(context.Background(), "D", "Base", "", errors.New("test error"))
}

func TestEmitMarshalStart(_ *testing.T) {
	emitMarshalStart(context.Background(), "application/json", "TestType")
}

func TestEmitMarshalComplete_Success(_ *testing.T) {
	emitMarshalComplete(context.Background(), "application/json", "TestType", 1024, 100*time.Millisecond, nil)
}

func TestEmitMarshalComplete_Error(_ *testing.T) {
	emitMarshalComplete(context.Background(), "application/json", "TestType", 0, 100*time.Millisecond, errors.New("test error"))
}

func TestEmitUnmarshalStart(_ *testing.T) {
	emitUnmarshalStart(context.Background(), "application/json", "TestType")
}

func TestEmitUnmarshalComplete_Success(_ *testing.T) {
	emitUnmarshalComplete(context.Background(), "application/json", "TestType", 512, 100*time.Millisecond, nil)
}

func TestEmitUnmarshalComplete_Error(_ *testing.T) {
	emitUnmarshalComplete(context.Background(), "application/json", "TestType", 0, 100*time.Millisecond, errors.New("test error"))
}
