// Package compiler turns extracted slots or a topic classification into
// final executable query text.
//
// Branch selection is an explicit decision procedure over enumerated
// branches, each a pure function from slots and config to compiled text. All
// untrusted values pass through the escaping layer in params.go before they
// reach a template, and a compile fails rather than emit an unresolved
// placeholder. The compiler never executes anything; it returns text plus the
// branch tag.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/extractor"
	"github.com/c360/semquery/llm"
	"github.com/c360/semquery/metric"
	"github.com/c360/semquery/types"
)

// Ontology carries the schema descriptors fetched from the graph store and
// handed to fragment generation. The caller resolves these by running the
// config's ontology, property, and classes queries; compilation itself stays
// free of store access.
type Ontology struct {
	Schema     string
	Properties string
	Classes    string
}

// Compiler selects a template branch and compiles final query text.
type Compiler struct {
	completer llm.Completer
	topics    *extractor.TopicExtractor
	logger    *slog.Logger
	metrics   *metric.Metrics
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger (defaults to slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithMetrics wires compile counters into the service metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Compiler) {
		c.metrics = m
	}
}

// New creates a Compiler. The completer is used only by the graph branch for
// topic extraction and fragment generation; the slot branch makes no external
// calls.
func New(completer llm.Completer, opts ...Option) *Compiler {
	c := &Compiler{
		completer: completer,
		topics:    extractor.NewTopicExtractor(completer),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile selects the slot branch for the given extraction result and binds
// its parameters. Location present selects the availability template with an
// optional date filter; location absent selects the fallback template keyed
// on entity id alone.
func (c *Compiler) Compile(slots types.ExtractionResult, cfg types.TemplateConfig) (*types.CompiledQuery, error) {
	if strings.TrimSpace(slots.EntityID) == "" {
		c.recordCompile(types.BranchFallback, "error")
		return nil, errors.WrapValidation(errors.ErrMissingEntityID, "Compiler", "Compile",
			"entity id required for slot branch")
	}

	if slots.HasLocation() {
		q, err := c.compileAvailability(slots, cfg)
		c.recordCompile(types.BranchAvailability, statusOf(err))
		return q, err
	}
	q, err := c.compileFallback(slots, cfg)
	c.recordCompile(types.BranchFallback, statusOf(err))
	return q, err
}

func (c *Compiler) compileAvailability(slots types.ExtractionResult, cfg types.TemplateConfig) (*types.CompiledQuery, error) {
	if strings.TrimSpace(cfg.AvailabilityTemplate) == "" {
		return nil, errors.WrapConfig(errors.ErrMissingTemplate, "Compiler", "Compile",
			"availability template not configured")
	}

	dateFilter := ""
	if slots.HasDate() {
		dateFilter = fmt.Sprintf("AND slot_date = '%s'", EscapeLiteral(*slots.Date))
	}

	text, err := Resolve(cfg.AvailabilityTemplate, Params{
		"entity_id":   EscapeLiteral(slots.EntityID),
		"location":    EscapeLiteral(*slots.LocationName),
		"date_filter": dateFilter,
	})
	if err != nil {
		return nil, err
	}
	return &types.CompiledQuery{Text: text, Branch: types.BranchAvailability}, nil
}

func (c *Compiler) compileFallback(slots types.ExtractionResult, cfg types.TemplateConfig) (*types.CompiledQuery, error) {
	if strings.TrimSpace(cfg.FallbackTemplate) == "" {
		return nil, errors.WrapConfig(errors.ErrMissingTemplate, "Compiler", "Compile",
			"fallback template not configured")
	}

	text, err := Resolve(cfg.FallbackTemplate, Params{
		"entity_id": EscapeLiteral(slots.EntityID),
	})
	if err != nil {
		return nil, err
	}
	return &types.CompiledQuery{Text: text, Branch: types.BranchFallback}, nil
}

// CompileGraph runs the graph branch: topic extraction, fragment generation
// against the ontology metadata, then wrapping in the topic-filtered or
// topic-free outer template.
func (c *Compiler) CompileGraph(ctx context.Context, question string, cfg types.TemplateConfig, ont Ontology) (*types.CompiledQuery, *types.TopicResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, nil, errors.WrapValidation(errors.ErrEmptyText, "Compiler", "CompileGraph",
			"question is empty")
	}
	if err := validateGraphConfig(cfg); err != nil {
		return nil, nil, err
	}

	topic, err := c.topics.Extract(ctx, question, cfg)
	if err != nil {
		return nil, nil, err
	}

	fragment, err := c.generateFragment(ctx, topic.RewrittenQuery, cfg, ont)
	if err != nil {
		branch := types.BranchTopicFree
		if topic.HasTopic() {
			branch = types.BranchTopicFiltered
		}
		c.recordCompile(branch, "error")
		return nil, &topic, err
	}

	var q *types.CompiledQuery
	if topic.HasTopic() {
		q, err = c.wrapTopic(fragment, topic.Topic, cfg)
		c.recordCompile(types.BranchTopicFiltered, statusOf(err))
	} else {
		q, err = c.wrapNoTopic(fragment, cfg)
		c.recordCompile(types.BranchTopicFree, statusOf(err))
	}
	if err != nil {
		return nil, &topic, err
	}

	c.logger.Debug("graph compile complete", "branch", q.Branch.String(), "topic", topic.Topic)
	return q, &topic, nil
}

// generateFragment asks the model for an inner SPARQL fragment, prompted with
// the ontology metadata and the rewritten question.
func (c *Compiler) generateFragment(ctx context.Context, question string, cfg types.TemplateConfig, ont Ontology) (string, error) {
	prompt, err := Resolve(cfg.GenTemplate, Params{
		"nl_query":       question,
		"classes":        ont.Classes,
		"properties":     ont.Properties,
		"ontology":       ont.Schema,
		"graph":          cfg.Graph,
		"graph_inferred": cfg.GraphInferred,
		"prefixes":       cfg.Prefixes,
		"query_example":  cfg.QueryExample,
		"instructions":   cfg.Instructions,
	})
	if err != nil {
		return "", err
	}

	start := time.Now()
	raw, err := c.completer.Complete(ctx, prompt)
	if c.metrics != nil {
		c.metrics.RecordCompletionCall("fragment", statusOf(err), time.Since(start))
	}
	if err != nil {
		return "", errors.WrapExtraction(err, "Compiler", "CompileGraph", "generate query fragment")
	}

	fragment := stripFences(raw)
	if fragment == "" {
		return "", errors.WrapExtraction(errors.ErrUnparsableOutput, "Compiler", "CompileGraph",
			"model returned an empty fragment")
	}
	return fragment, nil
}

func (c *Compiler) wrapTopic(fragment, topic string, cfg types.TemplateConfig) (*types.CompiledQuery, error) {
	text, err := Resolve(cfg.TopicTemplate, Params{
		"generated_sparql_query": fragment,
		"topic":                  EscapeTerm(topic),
	})
	if err != nil {
		return nil, err
	}
	return &types.CompiledQuery{Text: text, Branch: types.BranchTopicFiltered}, nil
}

func (c *Compiler) wrapNoTopic(fragment string, cfg types.TemplateConfig) (*types.CompiledQuery, error) {
	text, err := Resolve(cfg.NoTopicTemplate, Params{
		"generated_sparql_query": fragment,
	})
	if err != nil {
		return nil, err
	}
	return &types.CompiledQuery{Text: text, Branch: types.BranchTopicFree}, nil
}

func validateGraphConfig(cfg types.TemplateConfig) error {
	missing := ""
	switch {
	case strings.TrimSpace(cfg.TopicExtractTemplate) == "":
		missing = "topic extraction template"
	case strings.TrimSpace(cfg.GenTemplate) == "":
		missing = "fragment generation template"
	case strings.TrimSpace(cfg.TopicTemplate) == "":
		missing = "topic-filtered template"
	case strings.TrimSpace(cfg.NoTopicTemplate) == "":
		missing = "topic-free template"
	case strings.TrimSpace(cfg.Graph) == "":
		missing = "graph identifier"
	}
	if missing != "" {
		return errors.WrapConfig(errors.ErrMissingOntology, "Compiler", "CompileGraph",
			missing+" not configured")
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line when present.
		first := strings.TrimSpace(s[:idx])
		if first != "" && !strings.ContainsAny(first, " \t") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func (c *Compiler) recordCompile(branch types.Branch, status string) {
	if c.metrics != nil {
		c.metrics.RecordCompile(branch.String(), status)
	}
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
