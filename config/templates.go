package config

import "github.com/c360/semquery/types"

// DefaultTemplates returns the built-in template configuration used until an
// administrative update replaces it. The slot templates target the store's
// bookings_availability and advisories tables; the graph templates and
// prompts must be supplied by the operator because they depend on the
// deployed ontology.
func DefaultTemplates() types.TemplateConfig {
	return types.TemplateConfig{
		AvailabilityTemplate: `SELECT location_name, slot_date, slot_time
FROM bookings_availability
WHERE UPPER(location_name) = UPPER('{location}')
{date_filter}
ORDER BY slot_date DESC, slot_time DESC
LIMIT 3`,

		FallbackTemplate: `SELECT solution, solution_two, solution_three
FROM advisories
WHERE entity_id = '{entity_id}'
LIMIT 3`,

		TopicExtractTemplate: `You classify a question into a topic and rewrite it for query generation.
Respond with only a JSON object with exactly two keys:
{"topic": "<topic name, or the string None when no topic applies>", "query": "<the question rewritten as a standalone request>"}

Question: {question}`,
	}
}
