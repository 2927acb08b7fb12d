// Package errors provides standardized error handling patterns for SemQuery
// components. It defines the error taxonomy used across the classification
// and query compilation pipeline, along with helper functions for consistent
// error wrapping and kind checks.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies errors by the pipeline stage that produced them.
type Kind int

const (
	// KindValidation represents bad or missing required input.
	KindValidation Kind = iota
	// KindExtraction represents LM output that is unparsable or schema-incomplete.
	KindExtraction
	// KindConfig represents missing or malformed template/ontology configuration.
	KindConfig
	// KindExecution represents rejection of compiled query text by the store.
	KindExecution
	// KindClassification represents a malformed category/item corpus.
	KindClassification
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExtraction:
		return "extraction"
	case KindConfig:
		return "config"
	case KindExecution:
		return "execution"
	case KindClassification:
		return "classification"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Input errors
	ErrMissingInput = errors.New("missing required input")
	ErrEmptyText    = errors.New("empty text")
	ErrInvalidID    = errors.New("invalid identifier")

	// Extraction errors
	ErrUnparsableOutput = errors.New("completion output not parsable")
	ErrSchemaViolation  = errors.New("completion output violates schema")
	ErrMissingEntityID  = errors.New("entity id absent or empty")

	// Configuration errors
	ErrMissingTemplate       = errors.New("template missing or empty")
	ErrMissingOntology       = errors.New("ontology metadata missing or empty")
	ErrUnresolvedPlaceholder = errors.New("unresolved template placeholder")
	ErrInvalidConfig         = errors.New("invalid configuration")

	// Execution errors
	ErrQueryRejected     = errors.New("store rejected compiled query")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrOracleUnavailable = errors.New("similarity oracle unavailable")

	// Classification errors
	ErrNoCategories    = errors.New("no categories available")
	ErrCorpusMalformed = errors.New("category/item corpus malformed")
	ErrRunInProgress   = errors.New("classification run already in progress")
)

// Error wraps an underlying error with its kind and origin. Component and
// Operation identify where in the pipeline the error was raised; CompiledText
// and Branch are populated only for execution errors so the offending query
// can be diagnosed.
type Error struct {
	Kind         Kind
	Err          error
	Message      string
	Component    string
	Operation    string
	CompiledText string
	Branch       string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an error, or KindValidation with ok=false if the
// error carries no classification.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindValidation, false
}

// IsKind reports whether err is classified with the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsExtraction reports whether err is an extraction error.
func IsExtraction(err error) bool { return IsKind(err, KindExtraction) }

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return IsKind(err, KindConfig) }

// IsExecution reports whether err is an execution error.
func IsExecution(err error) bool { return IsKind(err, KindExecution) }

// IsClassification reports whether err is a classification error.
func IsClassification(err error) bool { return IsKind(err, KindClassification) }

// newKinded creates a new classified error.
// This is an internal helper - use the Wrap* functions instead.
func newKinded(kind Kind, err error, component, operation, message string) *Error {
	return &Error{
		Kind:      kind,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapValidation wraps an error as a validation error with context.
func WrapValidation(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newKinded(KindValidation, wrapped, component, method, wrapped.Error())
}

// WrapExtraction wraps an error as an extraction error with context.
func WrapExtraction(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newKinded(KindExtraction, wrapped, component, method, wrapped.Error())
}

// WrapConfig wraps an error as a configuration error with context.
func WrapConfig(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newKinded(KindConfig, wrapped, component, method, wrapped.Error())
}

// WrapClassification wraps an error as a classification error with context.
func WrapClassification(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newKinded(KindClassification, wrapped, component, method, wrapped.Error())
}

// WrapExecution wraps an error as an execution error with context. The
// compiled query text and branch tag are attached so callers can report the
// exact text the store rejected. Both values come from a successfully
// compiled query; execution errors are never raised before compilation
// completes.
func WrapExecution(err error, component, method, action, compiledText, branch string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	e := newKinded(KindExecution, wrapped, component, method, wrapped.Error())
	e.CompiledText = compiledText
	e.Branch = branch
	return e
}

// Payload is the structured {kind, message} pair surfaced to callers.
type Payload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ToPayload converts any error into its caller-facing payload. Unclassified
// errors surface as validation errors rather than leaking internals.
func ToPayload(err error) Payload {
	if err == nil {
		return Payload{}
	}
	var e *Error
	if errors.As(err, &e) {
		return Payload{Kind: e.Kind.String(), Message: e.Error()}
	}
	return Payload{Kind: KindValidation.String(), Message: err.Error()}
}
