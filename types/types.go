// Package types defines the shared domain types for SemQuery: the
// category/item corpus, classification assignments, extracted slots, the
// template configuration singleton, and compiled queries.
package types

import "strings"

// Category is one member of the finite category set. The embedding is
// derived and owned by the embedding service; ID is assigned sequentially at
// creation and is stable for the lifetime of the set.
type Category struct {
	ID          int       `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Embedding   []float32 `json:"-"`
}

// Item is a unit to be classified (an advisory, a topic).
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Assignment maps an item to its nearest category. Unique per ItemID;
// produced only by a full classification run.
type Assignment struct {
	ItemID     string `json:"item_id"`
	CategoryID int    `json:"category_id"`
}

// ExtractionResult is the validated structured record produced from one
// natural-language query. EntityID is required; LocationName and Date are
// optional and nil when not mentioned. Date, when present, is an ISO 8601
// date (YYYY-MM-DD).
type ExtractionResult struct {
	EntityID     string  `json:"entity_id"`
	LocationName *string `json:"location_name"`
	Date         *string `json:"date"`
}

// HasLocation reports whether a non-empty location was extracted.
func (r ExtractionResult) HasLocation() bool {
	return r.LocationName != nil && strings.TrimSpace(*r.LocationName) != ""
}

// HasDate reports whether a non-empty date was extracted.
func (r ExtractionResult) HasDate() bool {
	return r.Date != nil && strings.TrimSpace(*r.Date) != ""
}

// TopicResult is the outcome of the topic extraction step on the graph-query
// path. Topic is the literal string "None" when no topic applies;
// RewrittenQuery is the question rewritten for fragment generation.
type TopicResult struct {
	Topic          string `json:"topic"`
	RewrittenQuery string `json:"query"`
}

// NoTopic is the sentinel topic value meaning no topic filter applies.
const NoTopic = "None"

// HasTopic reports whether a topic filter should be applied.
func (r TopicResult) HasTopic() bool {
	return r.Topic != "" && r.Topic != NoTopic
}

// TemplateConfig is the singleton holding the named query templates and the
// ontology metadata used by the graph-query branch. It is read-mostly:
// mutated only through the administrative update path, never by compilation.
type TemplateConfig struct {
	// Relational templates (slot branch)
	AvailabilityTemplate string `json:"availability_template"`
	FallbackTemplate     string `json:"fallback_template"`

	// Graph templates (topic branch)
	TopicTemplate   string `json:"query_template"`
	NoTopicTemplate string `json:"query_template_no_topic"`

	// Ontology metadata supplied to fragment generation
	OntologyQuery        string `json:"ontology_query"`
	PropertyQuery        string `json:"property_query"`
	ClassesQuery         string `json:"classes_query"`
	Instructions         string `json:"instructions"`
	Prefixes             string `json:"prefixes"`
	Graph                string `json:"graph"`
	GraphInferred        string `json:"graph_inferred"`
	QueryExample         string `json:"query_example"`
	GenTemplate          string `json:"template"`
	TopicExtractTemplate string `json:"template_similarity"`
}

// Branch identifies which template branch produced a compiled query.
type Branch int

const (
	// BranchAvailability is the slot branch chosen when a location is present.
	BranchAvailability Branch = iota
	// BranchFallback is the slot branch chosen when no location is present.
	BranchFallback
	// BranchTopicFiltered is the graph branch with a topic filter applied.
	BranchTopicFiltered
	// BranchTopicFree is the graph branch without a topic filter.
	BranchTopicFree
)

// String returns the branch tag used in responses and error reports.
func (b Branch) String() string {
	switch b {
	case BranchAvailability:
		return "availability"
	case BranchFallback:
		return "fallback"
	case BranchTopicFiltered:
		return "topic-filtered"
	case BranchTopicFree:
		return "topic-free"
	default:
		return "unknown"
	}
}

// CompiledQuery is the ephemeral result of template compilation: final
// executable query text plus the branch tag for observability. Never
// persisted; produced fresh per request.
type CompiledQuery struct {
	Text   string `json:"text"`
	Branch Branch `json:"branch"`
}

// NormalizedRow is an ordered field -> value mapping with every declared
// column present in every row. Missing cells, SQL NULLs, and numeric NaN all
// appear as nil values so consumers never special-case absent keys.
type NormalizedRow struct {
	Columns []string
	Values  map[string]any
}
