package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/c360/semquery/types"
)

// GetTemplateConfig reads the singleton template configuration. Returns nil
// without error when no configuration has been stored yet; callers fall back
// to their built-in defaults. The read is a single-statement snapshot, so one
// compilation never observes a half-applied update.
func (s *Store) GetTemplateConfig(ctx context.Context) (*types.TemplateConfig, error) {
	var cfg types.TemplateConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT availability_template, fallback_template,
		       query_template, query_template_no_topic,
		       ontology_query, property_query, classes_query,
		       instructions, prefixes, graph, graph_inferred,
		       query_example, gen_template, topic_extract_template
		FROM template_config WHERE id = 1`).Scan(
		&cfg.AvailabilityTemplate, &cfg.FallbackTemplate,
		&cfg.TopicTemplate, &cfg.NoTopicTemplate,
		&cfg.OntologyQuery, &cfg.PropertyQuery, &cfg.ClassesQuery,
		&cfg.Instructions, &cfg.Prefixes, &cfg.Graph, &cfg.GraphInferred,
		&cfg.QueryExample, &cfg.GenTemplate, &cfg.TopicExtractTemplate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading template config: %w", err)
	}
	return &cfg, nil
}

// ReplaceTemplateConfig replaces the singleton configuration atomically.
func (s *Store) ReplaceTemplateConfig(ctx context.Context, cfg types.TemplateConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO template_config (
			id, availability_template, fallback_template,
			query_template, query_template_no_topic,
			ontology_query, property_query, classes_query,
			instructions, prefixes, graph, graph_inferred,
			query_example, gen_template, topic_extract_template, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			availability_template = excluded.availability_template,
			fallback_template = excluded.fallback_template,
			query_template = excluded.query_template,
			query_template_no_topic = excluded.query_template_no_topic,
			ontology_query = excluded.ontology_query,
			property_query = excluded.property_query,
			classes_query = excluded.classes_query,
			instructions = excluded.instructions,
			prefixes = excluded.prefixes,
			graph = excluded.graph,
			graph_inferred = excluded.graph_inferred,
			query_example = excluded.query_example,
			gen_template = excluded.gen_template,
			topic_extract_template = excluded.topic_extract_template,
			updated_at = CURRENT_TIMESTAMP`,
		cfg.AvailabilityTemplate, cfg.FallbackTemplate,
		cfg.TopicTemplate, cfg.NoTopicTemplate,
		cfg.OntologyQuery, cfg.PropertyQuery, cfg.ClassesQuery,
		cfg.Instructions, cfg.Prefixes, cfg.Graph, cfg.GraphInferred,
		cfg.QueryExample, cfg.GenTemplate, cfg.TopicExtractTemplate)
	if err != nil {
		return fmt.Errorf("replacing template config: %w", err)
	}
	return nil
}
