package docmap

import (
	"context"
	"reflect"
	"sync"
)

// Registry is the process-wide store of type maps, keyed by type. Entries
// are append-only: a registered map is never replaced in place, because
// other maps may hold lazily-resolved references to it.
//
// One coarse mutex serializes every registry mutation and every read that
// may mutate (lookup-or-create, convention selection during derivation).
// Reads of an already-resolved TypeMap need no lock. Lazy TypeMap links are
// never resolved while the registry lock is held.
type Registry struct {
	mu       sync.Mutex
	shapes   ShapeProvider
	defaults *Conventions
	chain    []filteredConventions

	maps           map[reflect.Type]*TypeMap
	discriminators map[string][]reflect.Type
	typeNames      map[string]reflect.Type
	deriving       map[reflect.Type]bool
}

// NewRegistry returns an empty registry with the default conventions and
// the reflection-backed shape provider.
func NewRegistry() *Registry {
	return NewRegistryWithProvider(DefaultShapeProvider())
}

// NewRegistryWithProvider returns an empty registry reading type shapes
// from p.
func NewRegistryWithProvider(p ShapeProvider) *Registry {
	return &Registry{
		shapes:         p,
		defaults:       DefaultConventions(),
		maps:           make(map[reflect.Type]*TypeMap),
		discriminators: make(map[string][]reflect.Type),
		typeNames:      make(map[string]reflect.Type),
		deriving:       make(map[reflect.Type]bool),
	}
}

// DefaultRegistry is the registry behind the package-level API.
var DefaultRegistry = NewRegistry()

// normalizeType strips pointer indirections; maps are keyed by element type.
func normalizeType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// LookupOrCreate returns the cached type map for t, deriving and
// registering one on first lookup. Concurrent callers for the same
// unregistered type observe a single map.
func (r *Registry) LookupOrCreate(t reflect.Type) (*TypeMap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupOrCreateLocked(normalizeType(t))
}

func (r *Registry) lookupOrCreateLocked(t reflect.Type) (*TypeMap, error) {
	t = normalizeType(t)
	if tm, ok := r.maps[t]; ok {
		return tm, nil
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Interface:
	default:
		return nil, newRegistrationError(ErrNotMappable, t)
	}
	tm, err := r.deriveLocked(t)
	if err != nil {
		return nil, err
	}
	if err := r.registerLocked(tm); err != nil {
		return nil, err
	}
	return tm, nil
}

// Register inserts an explicitly built type map. It fails with
// ErrDuplicateRegistration when the type already has one; the existing map
// is left untouched.
func (r *Registry) Register(tm *TypeMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(tm)
}

func (r *Registry) registerLocked(tm *TypeMap) error {
	if _, ok := r.maps[tm.typ]; ok {
		return newRegistrationError(ErrDuplicateRegistration, tm.typ)
	}
	r.maps[tm.typ] = tm
	if tm.discriminator != "" {
		r.addDiscriminatorLocked(tm.discriminator, tm.typ)
	}
	r.typeNames[TypeName(tm.typ)] = tm.typ
	emitTypeMapRegistered(context.Background(), TypeName(tm.typ), tm.discriminator, len(tm.fields))
	return nil
}

// addDiscriminatorLocked appends t under disc, ignoring duplicates.
func (r *Registry) addDiscriminatorLocked(disc string, t reflect.Type) {
	for _, existing := range r.discriminators[disc] {
		if existing == t {
			return
		}
	}
	r.discriminators[disc] = append(r.discriminators[disc], t)
}

// Unregister removes the type map for t along with its discriminator and
// type-name index entries. Lazy references other maps have already
// resolved to the removed map stay valid but stale: unregistering a type
// is only safe before any dependent resolves a link to it.
func (r *Registry) Unregister(t reflect.Type) bool {
	t = normalizeType(t)
	r.mu.Lock()
	defer r.mu.Unlock()

	tm, ok := r.maps[t]
	if !ok {
		return false
	}
	delete(r.maps, t)
	delete(r.typeNames, TypeName(t))

	cands := r.discriminators[tm.discriminator]
	for i, c := range cands {
		if c == t {
			r.discriminators[tm.discriminator] = append(cands[:i:i], cands[i+1:]...)
			break
		}
	}
	if len(r.discriminators[tm.discriminator]) == 0 {
		delete(r.discriminators, tm.discriminator)
	}

	emitTypeMapRemoved(context.Background(), TypeName(t))
	return true
}

// SelectConventions returns the profile of the first chain filter matching
// t, in registration order, else the default profile.
func (r *Registry) SelectConventions(t reflect.Type) *Conventions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectConventionsLocked(normalizeType(t))
}

func (r *Registry) selectConventionsLocked(t reflect.Type) *Conventions {
	for _, fc := range r.chain {
		if fc.filter(t) {
			return fc.profile
		}
	}
	return r.defaults
}

// RegisterConventions appends a profile to the selection chain, scoped to
// types matching filter. The profile is merged over the default profile
// first so every strategy slot is populated; the merged profile is
// returned and is what UnregisterConventions removes.
func (r *Registry) RegisterConventions(c *Conventions, filter TypeFilter) *Conventions {
	r.mu.Lock()
	defer r.mu.Unlock()
	merged := c.merged(r.defaults)
	r.chain = append(r.chain, filteredConventions{filter: filter, profile: merged, source: c})
	emitConventionsRegistered(context.Background(), merged.Name)
	return merged
}

// UnregisterConventions removes a registered profile from the chain. Both
// the profile passed to RegisterConventions and the merged profile it
// returned are accepted.
func (r *Registry) UnregisterConventions(c *Conventions) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, fc := range r.chain {
		if fc.source == c || fc.profile == c {
			r.chain = append(r.chain[:i:i], r.chain[i+1:]...)
			emitConventionsRemoved(context.Background(), fc.profile.Name)
			return true
		}
	}
	return false
}

// LookupActualType resolves a discriminator against an expected nominal
// type. An empty discriminator signals no polymorphism and returns the
// nominal type unchanged. Resolution registers the nominal type first,
// which pulls its declared known subtypes into the discriminator index.
//
// Exactly one indexed type assignable to the nominal type must match.
// Multiple assignable matches fail with ErrAmbiguousDiscriminator. With no
// assignable match the discriminator is interpreted as a rendered type
// name: an unassignable result fails with ErrTypeMismatch, and a
// discriminator naming nothing at all fails with ErrUnknownDiscriminator.
func (r *Registry) LookupActualType(nominal reflect.Type, discriminator string) (reflect.Type, error) {
	if discriminator == "" {
		return nominal, nil
	}
	n := normalizeType(nominal)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookupOrCreateLocked(n); err != nil {
		emitDiscriminatorResolved(context.Background(), discriminator, TypeName(n), "", err)
		return nil, err
	}

	candidates := r.discriminators[discriminator]
	var matches []reflect.Type
	for _, c := range candidates {
		if r.assignableLocked(c, n) {
			matches = append(matches, c)
		}
	}

	var actual reflect.Type
	var resErr error
	switch {
	case len(matches) == 1:
		actual = matches[0]
	case len(matches) > 1:
		resErr = newDiscriminatorError(ErrAmbiguousDiscriminator, discriminator, n, matches)
	default:
		// No assignable candidate; interpret the discriminator as a
		// rendered type name.
		named, ok := r.typeNames[discriminator]
		switch {
		case ok && r.assignableLocked(named, n):
			actual = named
		case ok:
			all := make([]reflect.Type, 0, len(candidates)+1)
			all = append(append(all, candidates...), named)
			resErr = newDiscriminatorError(ErrTypeMismatch, discriminator, n, all)
		case len(candidates) > 0:
			resErr = newDiscriminatorError(ErrTypeMismatch, discriminator, n, candidates)
		default:
			resErr = newDiscriminatorError(ErrUnknownDiscriminator, discriminator, n, nil)
		}
	}

	actualName := ""
	if actual != nil {
		actualName = TypeName(actual)
	}
	emitDiscriminatorResolved(context.Background(), discriminator, TypeName(n), actualName, resErr)
	if resErr != nil {
		return nil, resErr
	}
	return actual, nil
}

// assignableLocked reports whether t can stand in for nominal: interface
// satisfaction for interface nominals, membership in the embedding chain
// for struct nominals.
func (r *Registry) assignableLocked(t, nominal reflect.Type) bool {
	if t == nominal {
		return true
	}
	if nominal.Kind() == reflect.Interface {
		return t.Implements(nominal) || reflect.PointerTo(t).Implements(nominal)
	}
	for cur := t; ; {
		shape, err := r.shapes.Shape(cur)
		if err != nil || shape.Base == nil {
			return false
		}
		if shape.Base == nominal {
			return true
		}
		cur = shape.Base
	}
}

// RegisterSubtypes registers concrete subtypes under a nominal type that
// cannot declare them itself (interface nominals have no method bodies to
// implement KnownSubtyper on). Each subtype must be assignable to nominal.
func (r *Registry) RegisterSubtypes(nominal reflect.Type, subtypes ...reflect.Type) error {
	n := normalizeType(nominal)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range subtypes {
		s := normalizeType(sub)
		if !r.assignableLocked(s, n) {
			return newDiscriminatorError(ErrTypeMismatch, TypeName(s), n, []reflect.Type{s})
		}
		if _, err := r.lookupOrCreateLocked(s); err != nil {
			return err
		}
	}
	_, err := r.lookupOrCreateLocked(n)
	return err
}

// Reset clears every type map, index entry, and convention filter.
// This is primarily useful for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maps = make(map[reflect.Type]*TypeMap)
	r.discriminators = make(map[string][]reflect.Type)
	r.typeNames = make(map[string]reflect.Type)
	r.deriving = make(map[reflect.Type]bool)
	r.chain = nil
}

// Package-level API over DefaultRegistry.

// LookupOrCreate returns the cached or freshly derived type map for t from
// the default registry.
func LookupOrCreate(t reflect.Type) (*TypeMap, error) {
	return DefaultRegistry.LookupOrCreate(t)
}

// Unregister removes t's type map from the default registry.
func Unregister(t reflect.Type) bool {
	return DefaultRegistry.Unregister(t)
}

// RegisterConventions adds a filtered profile to the default registry's
// selection chain.
func RegisterConventions(c *Conventions, filter TypeFilter) *Conventions {
	return DefaultRegistry.RegisterConventions(c, filter)
}

// UnregisterConventions removes a profile from the default registry's
// selection chain.
func UnregisterConventions(c *Conventions) bool {
	return DefaultRegistry.UnregisterConventions(c)
}

// LookupActualType resolves a discriminator against the default registry.
func LookupActualType(nominal reflect.Type, discriminator string) (reflect.Type, error) {
	return DefaultRegistry.LookupActualType(nominal, discriminator)
}

// RegisterSubtypes registers subtypes under a nominal type in the default
// registry.
func RegisterSubtypes(nominal reflect.Type, subtypes ...reflect.Type) error {
	return DefaultRegistry.RegisterSubtypes(nominal, subtypes...)
}

// Reset clears the default registry and the processor cache.
// This is primarily useful for test isolation.
func Reset() {
	DefaultRegistry.Reset()
	resetProcessors()
}
