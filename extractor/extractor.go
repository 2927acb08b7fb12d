// Package extractor turns natural-language queries into validated structured
// records via single LM completion calls with strict output contracts.
//
// Two extraction steps live here: slot extraction (entity id, location, date)
// for the relational query path, and topic extraction (topic plus rewritten
// query) for the graph query path. Both decode the completion exactly once at
// this boundary and reject anything that does not conform; downstream code
// never touches unvalidated model output.
package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/llm"
	"github.com/c360/semquery/pkg/retry"
	"github.com/c360/semquery/types"
)

// slotPrompt is the fixed instruction-level prompt for slot extraction. The
// field names, required/optional markers, and date format are part of the
// extraction contract; only the user query varies.
const slotPrompt = `You are an AI assistant for extracting booking information from user queries.

From the following query, extract:
- entity_id (numeric string, required)
- location_name (or null if not mentioned)
- date in YYYY-MM-DD format (or null if not mentioned)

Return only a JSON object with exactly these three keys and no other text:

{
  "entity_id": "...",
  "location_name": "...",
  "date": "..."
}

User query: %q`

// reprompt is appended when a previous completion failed to parse, so the
// model sees what went wrong on the retry.
const reprompt = "\n\nYour previous response could not be parsed (%s). Return only the JSON object."

// SlotExtractor extracts booking slots from natural-language queries.
type SlotExtractor struct {
	completer llm.Completer
	retryCfg  retry.Config
}

// Option configures a SlotExtractor.
type Option func(*SlotExtractor)

// WithRetry overrides the bounded re-prompt policy. MaxAttempts counts total
// completion calls; 1 disables re-prompting.
func WithRetry(cfg retry.Config) Option {
	return func(e *SlotExtractor) {
		e.retryCfg = cfg
	}
}

// NewSlotExtractor creates a slot extractor. By default a parse failure is
// re-prompted twice (three completion calls total) before surfacing an
// extraction error.
func NewSlotExtractor(completer llm.Completer, opts ...Option) *SlotExtractor {
	e := &SlotExtractor{
		completer: completer,
		retryCfg: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
			AddJitter:    true,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs one LM completion over queryText and decodes the result into
// an ExtractionResult. Fails with an extraction error when the completion is
// not parseable as the required JSON shape or entity_id is absent or empty.
func (e *SlotExtractor) Extract(ctx context.Context, queryText string) (types.ExtractionResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return types.ExtractionResult{}, errors.WrapValidation(errors.ErrEmptyText,
			"SlotExtractor", "Extract", "query text validation")
	}

	prompt := fmt.Sprintf(slotPrompt, queryText)

	result, err := retry.DoWithResult(ctx, e.retryCfg, func() (types.ExtractionResult, error) {
		raw, err := e.completer.Complete(ctx, prompt)
		if err != nil {
			// Transport failure: no completion to re-prompt against
			return types.ExtractionResult{}, retry.NonRetryable(
				errors.WrapExtraction(err, "SlotExtractor", "Extract", "completion call"))
		}

		parsed, parseErr := parseSlots(raw)
		if parseErr != nil {
			// Re-prompt with the parse error appended
			prompt = fmt.Sprintf(slotPrompt, queryText) + fmt.Sprintf(reprompt, parseErr)
			return types.ExtractionResult{}, parseErr
		}
		return parsed, nil
	})
	if err != nil {
		if retry.IsNonRetryable(err) || errors.IsExtraction(err) {
			return types.ExtractionResult{}, err
		}
		return types.ExtractionResult{}, errors.WrapExtraction(err,
			"SlotExtractor", "Extract", "decode completion output")
	}

	return result, nil
}

// parseSlots strips, repairs, and strictly decodes one completion into the
// three-key slot record, then validates the required field.
func parseSlots(raw string) (types.ExtractionResult, error) {
	obj, err := stripToObject(raw)
	if err != nil {
		return types.ExtractionResult{}, err
	}

	var result types.ExtractionResult
	if err := decodeStrict(obj, &result); err != nil {
		return types.ExtractionResult{}, err
	}

	if strings.TrimSpace(result.EntityID) == "" {
		return types.ExtractionResult{}, errors.ErrMissingEntityID
	}

	// Normalize literal "null" strings and blank optionals to absent
	result.LocationName = normalizeOptional(result.LocationName)
	result.Date = normalizeOptional(result.Date)

	return result, nil
}

// normalizeOptional maps blank strings and the literal "null"/"none" that
// models sometimes emit for absent values onto nil.
func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" || strings.EqualFold(trimmed, "null") || strings.EqualFold(trimmed, "none") {
		return nil
	}
	return &trimmed
}
