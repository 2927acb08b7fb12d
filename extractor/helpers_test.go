package extractor

import (
	"context"

	"github.com/c360/semquery/llm"
)

// capture records the prompt sent to the completer and returns a canned
// response.
func capture(prompt *string, response string) llm.Completer {
	return llm.CompleterFunc(func(_ context.Context, p string) (string, error) {
		*prompt = p
		return response, nil
	})
}
