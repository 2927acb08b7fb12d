package extractor

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/llm"
	"github.com/c360/semquery/pkg/retry"
)

// noRetry disables re-prompting for tests that count completion calls.
var noRetry = retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, AddJitter: false}

func fixed(response string) llm.Completer {
	return llm.CompleterFunc(func(_ context.Context, _ string) (string, error) {
		return response, nil
	})
}

func TestExtract_ValidRecord(t *testing.T) {
	e := NewSlotExtractor(fixed(`{"entity_id":"12345","location_name":null,"date":null}`), WithRetry(noRetry))

	result, err := e.Extract(context.Background(), "what slots does 12345 have?")
	require.NoError(t, err)
	assert.Equal(t, "12345", result.EntityID)
	assert.Nil(t, result.LocationName)
	assert.Nil(t, result.Date)
}

func TestExtract_AllSlots(t *testing.T) {
	e := NewSlotExtractor(fixed(`{"entity_id":"777","location_name":"Clinic A","date":"2025-03-01"}`), WithRetry(noRetry))

	result, err := e.Extract(context.Background(), "book Clinic A on 1 March for 777")
	require.NoError(t, err)
	assert.Equal(t, "777", result.EntityID)
	require.NotNil(t, result.LocationName)
	assert.Equal(t, "Clinic A", *result.LocationName)
	require.NotNil(t, result.Date)
	assert.Equal(t, "2025-03-01", *result.Date)
}

func TestExtract_MissingEntityID(t *testing.T) {
	e := NewSlotExtractor(fixed(`{"location_name":"X"}`), WithRetry(noRetry))

	_, err := e.Extract(context.Background(), "availability at X")
	require.Error(t, err)
	assert.True(t, errors.IsExtraction(err), "expected extraction error, got %v", err)
}

func TestExtract_FencedOutput(t *testing.T) {
	response := "```json\n{\"entity_id\":\"42\",\"location_name\":null,\"date\":null}\n```"
	e := NewSlotExtractor(fixed(response), WithRetry(noRetry))

	result, err := e.Extract(context.Background(), "anything for 42?")
	require.NoError(t, err)
	assert.Equal(t, "42", result.EntityID)
}

func TestExtract_SurroundingProseRejectedUnlessObjectFound(t *testing.T) {
	// Prose around the object is stripped; the object itself still decodes
	response := `Sure! Here is the extraction: {"entity_id":"9","location_name":null,"date":null} Hope that helps.`
	e := NewSlotExtractor(fixed(response), WithRetry(noRetry))

	result, err := e.Extract(context.Background(), "query for 9")
	require.NoError(t, err)
	assert.Equal(t, "9", result.EntityID)
}

func TestExtract_ExtraKeysRejected(t *testing.T) {
	e := NewSlotExtractor(fixed(`{"entity_id":"1","location_name":null,"date":null,"confidence":0.9}`), WithRetry(noRetry))

	_, err := e.Extract(context.Background(), "query")
	require.Error(t, err)
	assert.True(t, errors.IsExtraction(err))
}

func TestExtract_RepairsMalformedJSON(t *testing.T) {
	// Trailing comma: invalid JSON that jsonrepair fixes
	e := NewSlotExtractor(fixed(`{"entity_id":"5","location_name":"Clinic B","date":null,}`), WithRetry(noRetry))

	result, err := e.Extract(context.Background(), "query for 5")
	require.NoError(t, err)
	assert.Equal(t, "5", result.EntityID)
}

func TestExtract_NullStringNormalized(t *testing.T) {
	e := NewSlotExtractor(fixed(`{"entity_id":"8","location_name":"null","date":" "}`), WithRetry(noRetry))

	result, err := e.Extract(context.Background(), "query for 8")
	require.NoError(t, err)
	assert.Nil(t, result.LocationName)
	assert.Nil(t, result.Date)
}

func TestExtract_EmptyQuery(t *testing.T) {
	e := NewSlotExtractor(fixed(`{}`), WithRetry(noRetry))

	_, err := e.Extract(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestExtract_RepromptsOnParseFailure(t *testing.T) {
	calls := 0
	completer := llm.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			return "I could not find any booking information.", nil
		}
		// The retry prompt should mention the previous failure
		if !strings.Contains(prompt, "could not be parsed") {
			return "", fmt.Errorf("expected reprompt context in prompt")
		}
		return `{"entity_id":"12345","location_name":null,"date":null}`, nil
	})

	e := NewSlotExtractor(completer, WithRetry(retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		AddJitter:    false,
	}))

	result, err := e.Extract(context.Background(), "slots for 12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", result.EntityID)
	assert.Equal(t, 2, calls)
}

func TestExtract_RetriesAreBounded(t *testing.T) {
	calls := 0
	completer := llm.CompleterFunc(func(_ context.Context, _ string) (string, error) {
		calls++
		return "not json at all", nil
	})

	e := NewSlotExtractor(completer, WithRetry(retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		AddJitter:    false,
	}))

	_, err := e.Extract(context.Background(), "slots for 12345")
	require.Error(t, err)
	assert.True(t, errors.IsExtraction(err))
	assert.Equal(t, 3, calls)
}

func TestExtract_TransportErrorNotReprompted(t *testing.T) {
	calls := 0
	completer := llm.CompleterFunc(func(_ context.Context, _ string) (string, error) {
		calls++
		return "", fmt.Errorf("proxy unavailable")
	})

	e := NewSlotExtractor(completer, WithRetry(retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		AddJitter:    false,
	}))

	_, err := e.Extract(context.Background(), "slots for 12345")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "transport failures should not be re-prompted")
}
