// Package semquery provides semantic classification and natural-language
// query translation over a relational store.
//
// The service has two independent capabilities:
//
// Classification: free-text items are assigned to the category whose
// embedding is most similar, in full-refresh runs that replace the entire
// assignment set atomically. Ties resolve to the lowest category id and
// ineligible items are skipped, never failed.
//
// Query translation: a natural-language question becomes executable query
// text through slot extraction (entity, location, date) and template
// compilation, or through the graph path (topic extraction, fragment
// generation against ontology metadata, outer template wrap). Compiled text
// is executed against the store and results are normalized so every column is
// present in every row with explicit nulls.
//
// # Architecture
//
// Leaf-first package layout:
//
//   - errors: error taxonomy (validation, extraction, config, execution,
//     classification) and wrap helpers
//   - types: shared domain types (Category, Item, Assignment, TemplateConfig,
//     CompiledQuery)
//   - oracle: embedding client and similarity scoring
//   - llm: completion client
//   - extractor: slot and topic extraction from completions
//   - classifier: nearest-category batch classification
//   - compiler: template branch selection and safe parameter binding
//   - normalizer: uniform null handling for result rows
//   - store: SQLite persistence and the compiled-query executor
//   - service: pipeline wiring
//   - gateway: HTTP façade
//
// The binary lives in cmd/semquery.
package semquery
