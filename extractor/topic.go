package extractor

import (
	"context"
	"strings"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/llm"
	"github.com/c360/semquery/types"
)

// TopicExtractor resolves the topic classification on the graph-query path:
// given a question, it returns the topic (or "None") and the question
// rewritten for fragment generation.
//
// Unlike slot extraction, the instruction template is configuration: it lives
// in the TemplateConfig singleton alongside the ontology metadata and is
// rendered with a single {question} placeholder.
type TopicExtractor struct {
	completer llm.Completer
}

// NewTopicExtractor creates a topic extractor.
func NewTopicExtractor(completer llm.Completer) *TopicExtractor {
	return &TopicExtractor{completer: completer}
}

// Extract renders the configured topic template with the question, runs one
// completion, and decodes the {topic, query} pair. A blank topic in the
// completion maps to the NoTopic sentinel rather than an error; a missing
// rewritten query falls back to the original question.
func (e *TopicExtractor) Extract(ctx context.Context, question string, cfg types.TemplateConfig) (types.TopicResult, error) {
	if strings.TrimSpace(question) == "" {
		return types.TopicResult{}, errors.WrapValidation(errors.ErrEmptyText,
			"TopicExtractor", "Extract", "question validation")
	}
	if strings.TrimSpace(cfg.TopicExtractTemplate) == "" {
		return types.TopicResult{}, errors.WrapConfig(errors.ErrMissingTemplate,
			"TopicExtractor", "Extract", "topic extraction template lookup")
	}

	prompt := strings.ReplaceAll(cfg.TopicExtractTemplate, "{question}", question)

	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return types.TopicResult{}, errors.WrapExtraction(err,
			"TopicExtractor", "Extract", "completion call")
	}

	obj, err := stripToObject(raw)
	if err != nil {
		return types.TopicResult{}, errors.WrapExtraction(err,
			"TopicExtractor", "Extract", "locate JSON object")
	}

	var result types.TopicResult
	if err := decodeStrict(obj, &result); err != nil {
		return types.TopicResult{}, errors.WrapExtraction(err,
			"TopicExtractor", "Extract", "decode completion output")
	}

	if strings.TrimSpace(result.Topic) == "" {
		result.Topic = types.NoTopic
	}
	if strings.TrimSpace(result.RewrittenQuery) == "" {
		result.RewrittenQuery = question
	}

	return result, nil
}
