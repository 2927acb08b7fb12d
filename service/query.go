package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360/semquery/compiler"
	"github.com/c360/semquery/config"
	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/normalizer"
	"github.com/c360/semquery/types"
)

// QueryResult is the response of both translation paths: the compiled text,
// the branch that produced it, and the normalized result rows.
type QueryResult struct {
	Branch   string                `json:"branch"`
	Compiled string                `json:"compiled"`
	Topic    string                `json:"topic,omitempty"`
	Columns  []string              `json:"columns"`
	Rows     []types.NormalizedRow `json:"rows"`
}

// TranslateQuery runs the slot path: extract slots, compile the availability
// or fallback branch, execute, normalize.
func (s *Service) TranslateQuery(ctx context.Context, queryText string) (*QueryResult, error) {
	cfg, err := s.templates(ctx)
	if err != nil {
		return nil, err
	}

	slots, err := s.extractor.Extract(ctx, queryText)
	if err != nil {
		return nil, err
	}

	compiled, err := s.compiler.Compile(slots, cfg)
	if err != nil {
		return nil, err
	}

	columns, rows, err := s.store.Execute(ctx, compiled)
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		Branch:   compiled.Branch.String(),
		Compiled: compiled.Text,
		Columns:  columns,
		Rows:     normalizer.NormalizeOrdered(columns, rows),
	}, nil
}

// GraphQuery runs the topic path: topic extraction, fragment generation with
// ontology metadata, outer template wrap, execute, normalize.
func (s *Service) GraphQuery(ctx context.Context, queryText string) (*QueryResult, error) {
	cfg, err := s.templates(ctx)
	if err != nil {
		return nil, err
	}

	ont, err := s.fetchOntology(ctx, cfg)
	if err != nil {
		return nil, err
	}

	compiled, topic, err := s.compiler.CompileGraph(ctx, queryText, cfg, ont)
	if err != nil {
		return nil, err
	}

	columns, rows, err := s.store.Execute(ctx, compiled)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Branch:   compiled.Branch.String(),
		Compiled: compiled.Text,
		Columns:  columns,
		Rows:     normalizer.NormalizeOrdered(columns, rows),
	}
	if topic != nil && topic.HasTopic() {
		result.Topic = topic.Topic
	}
	return result, nil
}

// fetchOntology resolves the schema descriptors by running the configured
// metadata queries. Unset queries leave their descriptor empty; the
// generation template decides how much metadata it needs.
func (s *Service) fetchOntology(ctx context.Context, cfg types.TemplateConfig) (compiler.Ontology, error) {
	var ont compiler.Ontology

	fetch := func(query, name string) (string, error) {
		if strings.TrimSpace(query) == "" {
			return "", nil
		}
		columns, rows, err := s.store.Execute(ctx, &types.CompiledQuery{Text: query})
		if err != nil {
			return "", errors.WrapConfig(err, "Service", "GraphQuery", "run "+name+" metadata query")
		}
		return flattenRows(columns, rows), nil
	}

	var err error
	if ont.Schema, err = fetch(cfg.OntologyQuery, "ontology"); err != nil {
		return ont, err
	}
	if ont.Properties, err = fetch(cfg.PropertyQuery, "property"); err != nil {
		return ont, err
	}
	if ont.Classes, err = fetch(cfg.ClassesQuery, "classes"); err != nil {
		return ont, err
	}
	return ont, nil
}

// flattenRows renders a metadata result as newline-separated rows of
// comma-separated values, header first. The generation prompt consumes this
// as plain text.
func flattenRows(columns []string, rows [][]any) string {
	var b strings.Builder
	b.WriteString(strings.Join(columns, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		for i, v := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			switch val := v.(type) {
			case nil:
			case string:
				b.WriteString(val)
			case []byte:
				b.Write(val)
			default:
				fmt.Fprint(&b, val)
			}
		}
	}
	return b.String()
}

// Templates returns the active template configuration: the stored singleton
// when present, the built-in defaults otherwise.
func (s *Service) Templates(ctx context.Context) (types.TemplateConfig, error) {
	return s.templates(ctx)
}

func (s *Service) templates(ctx context.Context) (types.TemplateConfig, error) {
	cfg, err := s.store.GetTemplateConfig(ctx)
	if err != nil {
		return types.TemplateConfig{}, errors.WrapConfig(err, "Service", "Templates",
			"read template config")
	}
	if cfg == nil {
		return config.DefaultTemplates(), nil
	}
	return *cfg, nil
}

// UpdateTemplates validates and replaces the template configuration. The
// write path is separate from compilation; a compile in flight keeps its
// snapshot.
func (s *Service) UpdateTemplates(ctx context.Context, cfg types.TemplateConfig) error {
	if err := validateTemplates(cfg); err != nil {
		return err
	}
	if err := s.store.ReplaceTemplateConfig(ctx, cfg); err != nil {
		return errors.WrapConfig(err, "Service", "UpdateTemplates", "replace template config")
	}
	s.logger.Info("template config replaced")
	return nil
}

// validateTemplates rejects configurations whose slot templates are missing
// the placeholders compilation binds. Graph templates are optional until the
// graph path is used.
func validateTemplates(cfg types.TemplateConfig) error {
	checks := []struct {
		template, placeholder, name string
	}{
		{cfg.AvailabilityTemplate, "{location}", "availability template"},
		{cfg.FallbackTemplate, "{entity_id}", "fallback template"},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.template) == "" {
			return errors.WrapConfig(errors.ErrMissingTemplate, "Service", "UpdateTemplates",
				c.name+" required")
		}
		if !strings.Contains(c.template, c.placeholder) {
			return errors.WrapConfig(errors.ErrInvalidConfig, "Service", "UpdateTemplates",
				c.name+" missing "+c.placeholder)
		}
	}
	if cfg.TopicExtractTemplate != "" && !strings.Contains(cfg.TopicExtractTemplate, "{question}") {
		return errors.WrapConfig(errors.ErrInvalidConfig, "Service", "UpdateTemplates",
			"topic extraction template missing {question}")
	}
	return nil
}
