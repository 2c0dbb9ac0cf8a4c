package docmap

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeneratorRef names an identifier generator.
// Use these constants in struct tags: `docmap:"id,id,gen=uuid"`
type GeneratorRef string

const (
	// GeneratorUUID generates random UUIDv4 identifiers as strings.
	GeneratorUUID GeneratorRef = "uuid"

	// GeneratorObjectID generates BSON ObjectID identifiers.
	GeneratorObjectID GeneratorRef = "objectid"
)

// IDGenerator produces identifier values for documents without one.
// EnsureID consults Empty before writing and only generates when the
// current value is empty.
type IDGenerator interface {
	// NewID returns a fresh identifier value.
	NewID() (any, error)

	// Empty reports whether id is the absent/zero identifier.
	Empty(id any) bool
}

// uuidGenerator implements IDGenerator with string-form UUIDv4 values.
type uuidGenerator struct{}

// UUID returns a generator producing random UUID strings.
func UUID() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() (any, error) {
	return uuid.NewString(), nil
}

func (uuidGenerator) Empty(id any) bool {
	switch v := id.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == uuid.Nil.String()
	case uuid.UUID:
		return v == uuid.Nil
	}
	return false
}

// objectIDGenerator implements IDGenerator with BSON ObjectID values.
type objectIDGenerator struct{}

// ObjectID returns a generator producing BSON ObjectIDs.
func ObjectID() IDGenerator {
	return objectIDGenerator{}
}

func (objectIDGenerator) NewID() (any, error) {
	return primitive.NewObjectID(), nil
}

func (objectIDGenerator) Empty(id any) bool {
	switch v := id.(type) {
	case nil:
		return true
	case primitive.ObjectID:
		return v.IsZero()
	case string:
		return v == ""
	}
	return false
}

var (
	generatorsMu sync.RWMutex
	generators   = map[GeneratorRef]IDGenerator{
		GeneratorUUID:     UUID(),
		GeneratorObjectID: ObjectID(),
	}
)

// RegisterIDGenerator makes a generator resolvable under ref, process-wide.
// Registering an existing ref replaces its generator.
func RegisterIDGenerator(ref GeneratorRef, g IDGenerator) error {
	if ref == "" || g == nil {
		return fmt.Errorf("%w: empty generator registration", ErrInvalidTag)
	}
	generatorsMu.Lock()
	defer generatorsMu.Unlock()
	generators[ref] = g
	return nil
}

// IsValidGeneratorRef returns true if ref names a registered generator.
func IsValidGeneratorRef(ref GeneratorRef) bool {
	generatorsMu.RLock()
	defer generatorsMu.RUnlock()
	_, ok := generators[ref]
	return ok
}

// generatorFor resolves ref to its generator, nil when unset.
func generatorFor(ref GeneratorRef) IDGenerator {
	if ref == "" {
		return nil
	}
	generatorsMu.RLock()
	defer generatorsMu.RUnlock()
	return generators[ref]
}
