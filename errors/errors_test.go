package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindValidation, "validation"},
		{KindExtraction, "extraction"},
		{KindConfig, "config"},
		{KindExecution, "execution"},
		{KindClassification, "classification"},
		{Kind(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.kind.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	base := fmt.Errorf("boom")

	tests := []struct {
		name string
		wrap func(error) error
		kind Kind
	}{
		{"validation", func(e error) error { return WrapValidation(e, "Gateway", "Translate", "parse body") }, KindValidation},
		{"extraction", func(e error) error { return WrapExtraction(e, "SlotExtractor", "Extract", "decode output") }, KindExtraction},
		{"config", func(e error) error { return WrapConfig(e, "Compiler", "Compile", "load template") }, KindConfig},
		{"classification", func(e error) error { return WrapClassification(e, "Classifier", "Classify", "load corpus") }, KindClassification},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.wrap(base)
			if !IsKind(err, test.kind) {
				t.Errorf("expected kind %s, got %v", test.kind, err)
			}
			if !errors.Is(err, base) {
				t.Errorf("wrapped error should unwrap to base")
			}
			if !strings.Contains(err.Error(), "failed") {
				t.Errorf("expected formatted message, got %q", err.Error())
			}
		})
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if WrapValidation(nil, "c", "m", "a") != nil {
		t.Error("WrapValidation(nil) should be nil")
	}
	if WrapExecution(nil, "c", "m", "a", "SELECT 1", "fallback") != nil {
		t.Error("WrapExecution(nil) should be nil")
	}
}

func TestWrapExecution_CarriesCompiledText(t *testing.T) {
	err := WrapExecution(ErrQueryRejected, "Executor", "Execute", "run query",
		`SELECT * FROM T`, "availability")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.CompiledText != `SELECT * FROM T` {
		t.Errorf("compiled text not carried: %q", e.CompiledText)
	}
	if e.Branch != "availability" {
		t.Errorf("branch not carried: %q", e.Branch)
	}
	if !IsExecution(err) {
		t.Error("expected execution kind")
	}
}

func TestKindOf(t *testing.T) {
	if _, ok := KindOf(fmt.Errorf("plain")); ok {
		t.Error("plain error should not be classified")
	}
	k, ok := KindOf(WrapConfig(ErrMissingTemplate, "Compiler", "Compile", "lookup"))
	if !ok || k != KindConfig {
		t.Errorf("expected config kind, got %v (%v)", k, ok)
	}
}

func TestToPayload(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedKind string
	}{
		{"nil", nil, ""},
		{"plain", fmt.Errorf("something"), "validation"},
		{"extraction", WrapExtraction(ErrMissingEntityID, "SlotExtractor", "Extract", "validate"), "extraction"},
		{"execution", WrapExecution(ErrQueryRejected, "Executor", "Execute", "run", "SELECT 1", "fallback"), "execution"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := ToPayload(test.err)
			if p.Kind != test.expectedKind {
				t.Errorf("expected kind %q, got %q", test.expectedKind, p.Kind)
			}
			if test.err != nil && p.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}
