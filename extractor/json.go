package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// stripToObject cuts a completion down to the JSON object it contains.
// Models wrap output in markdown fences or surrounding prose despite the
// instructions; everything outside the outermost braces is discarded before
// decoding so prose never reaches the parser.
func stripToObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	// Drop markdown fences (```json, ```python, plain ```)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object found in completion output")
	}
	return s[start : end+1], nil
}

// decodeStrict unmarshals data into v, rejecting unknown fields. Malformed
// JSON is repaired once (trailing commas, single quotes, unquoted keys are
// common model mistakes) before the strict decode runs.
func decodeStrict(data string, v any) error {
	candidate := data

	if !json.Valid([]byte(candidate)) {
		fixed, err := jsonrepair.JSONRepair(candidate)
		if err != nil {
			return fmt.Errorf("completion output is not valid JSON: %w", err)
		}
		candidate = fixed
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("completion output does not match schema: %w", err)
	}

	// Trailing content after the object means the model kept talking
	if dec.More() {
		return fmt.Errorf("completion output contains trailing content after JSON object")
	}
	return nil
}
