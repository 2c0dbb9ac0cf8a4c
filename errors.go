package docmap

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrDuplicateRegistration indicates a type map was registered for a type
	// that already has one. Existing maps are never replaced in place.
	ErrDuplicateRegistration = errors.New("duplicate registration")

	// ErrAmbiguousDiscriminator indicates a discriminator maps to more than
	// one type assignable to the expected nominal type.
	ErrAmbiguousDiscriminator = errors.New("ambiguous discriminator")

	// ErrUnknownDiscriminator indicates a discriminator resolves to no
	// registered or nameable type.
	ErrUnknownDiscriminator = errors.New("unknown discriminator")

	// ErrTypeMismatch indicates a discriminator resolved to a type that is
	// not assignable to the expected nominal type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidSelector indicates a field selector does not denote a direct
	// reference to one field of the type.
	ErrInvalidSelector = errors.New("invalid field selector")

	// ErrNotMappable indicates a type map was requested for a type that
	// cannot carry one (anything but a struct or interface).
	ErrNotMappable = errors.New("type not mappable")

	// ErrInvalidTag indicates a docmap or default struct tag has an invalid
	// format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrMissingElement indicates a required element was absent on decode.
	ErrMissingElement = errors.New("missing element")

	// ErrUnknownElement indicates an incoming element maps to no field and
	// the type map does not ignore extras.
	ErrUnknownElement = errors.New("unknown element")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")
)

// RegistrationError represents a registry mutation failure.
// It wraps a sentinel error with the type involved.
type RegistrationError struct {
	Err  error        // Underlying sentinel error (ErrDuplicateRegistration, ErrNotMappable)
	Type reflect.Type // Type whose registration failed
}

func (e *RegistrationError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("%s for type %s", e.Err.Error(), TypeName(e.Type))
	}
	return e.Err.Error()
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// DiscriminatorError represents a polymorphic resolution failure.
// It wraps a sentinel error with the discriminator, the expected nominal
// type, and the candidate types considered.
type DiscriminatorError struct {
	Err           error          // Underlying sentinel error (ErrAmbiguousDiscriminator, etc.)
	Discriminator string         // Discriminator value that failed to resolve
	Nominal       reflect.Type   // Expected nominal type
	Candidates    []reflect.Type // Types considered during resolution
}

func (e *DiscriminatorError) Error() string {
	msg := fmt.Sprintf("%s %q for nominal type %s", e.Err.Error(), e.Discriminator, TypeName(e.Nominal))
	if len(e.Candidates) > 0 {
		names := make([]string, len(e.Candidates))
		for i, c := range e.Candidates {
			names[i] = TypeName(c)
		}
		msg += " (candidates: " + strings.Join(names, ", ") + ")"
	}
	return msg
}

func (e *DiscriminatorError) Unwrap() error {
	return e.Err
}

// SelectorError represents a field selector that failed to resolve.
type SelectorError struct {
	Err    error        // Underlying sentinel error (ErrInvalidSelector)
	Type   reflect.Type // Type the selector was evaluated against
	Reason string       // What the selector returned instead of a field
}

func (e *SelectorError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s for type %s: %s", e.Err.Error(), TypeName(e.Type), e.Reason)
	}
	return fmt.Sprintf("%s for type %s", e.Err.Error(), TypeName(e.Type))
}

func (e *SelectorError) Unwrap() error {
	return e.Err
}

// MappingError represents a derivation or encode/decode failure scoped to a
// field of a type.
type MappingError struct {
	Err   error        // Underlying sentinel error (ErrInvalidTag, ErrMissingElement, etc.)
	Type  reflect.Type // Type being mapped or processed
	Field string       // Field or element name involved, if any
	Op    string       // Operation that failed (derive, encode, decode)
	Cause error        // Original error from the underlying operation
}

func (e *MappingError) Error() string {
	msg := e.Err.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s %s: %s (field %s)", e.Op, TypeName(e.Type), e.Err.Error(), e.Field)
	} else if e.Type != nil {
		msg = fmt.Sprintf("%s %s: %s", e.Op, TypeName(e.Type), e.Err.Error())
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newRegistrationError creates a RegistrationError for registry failures.
func newRegistrationError(sentinel error, t reflect.Type) error {
	return &RegistrationError{Err: sentinel, Type: t}
}

// newDiscriminatorError creates a DiscriminatorError for resolution failures.
func newDiscriminatorError(sentinel error, discriminator string, nominal reflect.Type, candidates []reflect.Type) error {
	return &DiscriminatorError{
		Err:           sentinel,
		Discriminator: discriminator,
		Nominal:       nominal,
		Candidates:    candidates,
	}
}

// newSelectorError creates a SelectorError for selector resolution failures.
func newSelectorError(t reflect.Type, reason string) error {
	return &SelectorError{Err: ErrInvalidSelector, Type: t, Reason: reason}
}

// newMappingError creates a MappingError for derivation and processing failures.
func newMappingError(sentinel error, op string, t reflect.Type, field string, cause error) error {
	return &MappingError{
		Err:   sentinel,
		Type:  t,
		Field: field,
		Op:    op,
		Cause: cause,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{Err: sentinel, Cause: cause}
}
