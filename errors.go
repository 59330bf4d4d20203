package styles

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateFieldID indicates a field id already exists somewhere in the
	// registry.
	ErrDuplicateFieldID = errors.New("styles: duplicate field id")
	// ErrUnknownFieldType indicates a field declared a type outside the closed
	// set of FieldTypes.
	ErrUnknownFieldType = errors.New("styles: unknown field type")
	// ErrUnknownPlaceholder indicates a template referenced a token the
	// substitutor does not recognise (strict mode only).
	ErrUnknownPlaceholder = errors.New("styles: unknown placeholder")
	// ErrFieldIDRequired indicates a field definition without an id.
	ErrFieldIDRequired = errors.New("styles: field id must be provided")
	// ErrRegistrySealed indicates registration after the registry was sealed.
	ErrRegistrySealed = errors.New("styles: registry is sealed")
	// ErrInvalidBreakpoints indicates a malformed breakpoint table.
	ErrInvalidBreakpoints = errors.New("styles: invalid breakpoint table")
	// ErrScopeIDRequired indicates a compile request without a scope id.
	ErrScopeIDRequired = errors.New("styles: scope id must be provided")
)

// SchemaError reports a problem with the registry or breakpoint schema. It is
// raised at definition time and is always fatal for that schema.
type SchemaError struct {
	FieldID string
	Path    []string
	Err     error
}

func (e *SchemaError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.FieldID == "" {
		return fmt.Sprintf("styles: schema: %v", e.Err)
	}
	return fmt.Sprintf("styles: schema field=%q: %v", e.FieldID, e.Err)
}

func (e *SchemaError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValueError reports a value that failed its type-specific shape check. The
// affected field is skipped for that breakpoint; compilation continues.
type ValueError struct {
	FieldID    string
	Type       FieldType
	Breakpoint string
	Value      any
	Reason     string
}

func (e *ValueError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("styles: invalid %s value for field=%q breakpoint=%s: %s (%v)", e.Type, e.FieldID, e.Breakpoint, e.Reason, e.Value)
}

// CacheError wraps a cache backend failure. It is logged, never returned from
// compilation.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("styles: cache %s key=%q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func schemaError(fieldID string, path []string, err error) error {
	var existing *SchemaError
	if errors.As(err, &existing) {
		return err
	}
	return &SchemaError{FieldID: fieldID, Path: append([]string(nil), path...), Err: err}
}
