// Package classifier assigns free-text items to their most semantically
// similar category using precomputed embeddings.
//
// A classification run is a full refresh: it scores every eligible item
// against every category and produces a complete assignment set that replaces
// the previous one (persistence is the store's concern). Similarity
// evaluations fan out over a bounded worker pool so large item×category
// products never serialize against the remote oracle; all scores for an item
// are collected before selection, which keeps the tie-break deterministic
// regardless of completion order.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/metric"
	"github.com/c360/semquery/oracle"
	"github.com/c360/semquery/pkg/worker"
	"github.com/c360/semquery/types"
)

// SkippedItem records one item excluded from a run and why. Skipped items
// are not failures of the batch.
type SkippedItem struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// Result is the outcome of one classification run.
type Result struct {
	RunID       string             `json:"run_id"`
	Assignments []types.Assignment `json:"assignments"`
	Skipped     []SkippedItem      `json:"skipped"`
	Evaluations int                `json:"evaluations"`
	Duration    time.Duration      `json:"duration"`
}

// Classifier computes nearest-category assignments.
type Classifier struct {
	oracle  oracle.Oracle
	workers int
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithWorkers bounds the similarity fan-out concurrency (default 8).
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger (defaults to slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithMetrics wires run counters into the service metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// New creates a Classifier backed by the given similarity oracle.
func New(o oracle.Oracle, opts ...Option) *Classifier {
	c := &Classifier{
		oracle:  o,
		workers: 8,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// itemScore carries the completed score table for one item.
type itemScore struct {
	item       types.Item
	best       int  // category id with maximal score
	assigned   bool // false when the item was skipped
	skipReason string
}

// Classify scores every eligible item against every category and returns the
// full-refresh assignment set.
//
// Items with empty text, and items whose text cannot be embedded, are skipped
// and reported; the batch still succeeds. An empty category set yields an
// empty result. When multiple categories share the maximal score the lowest
// category id wins, independent of evaluation order.
func (c *Classifier) Classify(ctx context.Context, categories []types.Category, items []types.Item) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	result := &Result{
		RunID:       runID,
		Assignments: []types.Assignment{},
		Skipped:     []SkippedItem{},
	}

	if len(categories) == 0 {
		c.logger.Info("classification run with no categories", "run_id", runID, "items", len(items))
		return result, nil
	}

	if err := validateCorpus(categories, items); err != nil {
		if c.metrics != nil {
			c.metrics.RecordClassificationRun("error", 0, 0)
		}
		return nil, err
	}

	// Sorted copy so selection order is a function of ids, not input order.
	sorted := make([]types.Category, len(categories))
	copy(sorted, categories)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	// Categories without a precomputed embedding are embedded from their
	// description; a category that cannot be embedded poisons the whole run
	// (every item would score against a partial category set).
	for i := range sorted {
		if len(sorted[i].Embedding) > 0 {
			continue
		}
		vec, err := c.oracle.Embed(ctx, sorted[i].Description)
		if err != nil {
			if c.metrics != nil {
				c.metrics.RecordClassificationRun("error", 0, 0)
			}
			return nil, errors.WrapClassification(err, "Classifier", "Classify",
				fmt.Sprintf("embed category %d", sorted[i].ID))
		}
		sorted[i].Embedding = vec
	}

	var (
		mu     sync.Mutex
		scores = make([]itemScore, 0, len(items))
		wg     sync.WaitGroup
	)

	pool := worker.NewPool(c.workers, len(items)+1, func(ctx context.Context, item types.Item) error {
		defer wg.Done()
		// Items drained after cancellation are skipped without touching
		// the oracle; the run reports the cancellation as a whole.
		if ctx.Err() != nil {
			mu.Lock()
			scores = append(scores, itemScore{item: item, skipReason: "run cancelled"})
			mu.Unlock()
			return ctx.Err()
		}
		s := c.scoreItem(ctx, item, sorted)
		mu.Lock()
		scores = append(scores, s)
		mu.Unlock()
		return nil
	})

	if err := pool.Start(ctx); err != nil {
		return nil, errors.WrapClassification(err, "Classifier", "Classify", "start worker pool")
	}
	defer func() { _ = pool.Stop(5 * time.Second) }()

	for _, item := range items {
		wg.Add(1)
		if err := pool.Submit(item); err != nil {
			// Queue sized to the batch; a submit failure means shutdown
			wg.Done()
			return nil, errors.WrapClassification(err, "Classifier", "Classify", "submit item")
		}
	}
	wg.Wait()

	if ctx.Err() != nil {
		if c.metrics != nil {
			c.metrics.RecordClassificationRun("cancelled", 0, 0)
		}
		return nil, errors.WrapClassification(ctx.Err(), "Classifier", "Classify", "run cancelled")
	}

	for _, s := range scores {
		if !s.assigned {
			result.Skipped = append(result.Skipped, SkippedItem{ItemID: s.item.ID, Reason: s.skipReason})
			continue
		}
		result.Assignments = append(result.Assignments, types.Assignment{
			ItemID:     s.item.ID,
			CategoryID: s.best,
		})
		result.Evaluations += len(sorted)
	}

	// Deterministic output order for idempotence checks and stable persistence
	sort.Slice(result.Assignments, func(i, j int) bool {
		return result.Assignments[i].ItemID < result.Assignments[j].ItemID
	})
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].ItemID < result.Skipped[j].ItemID
	})

	result.Duration = time.Since(start)

	if c.metrics != nil {
		c.metrics.RecordClassificationRun("success", len(result.Assignments), len(result.Skipped))
		c.metrics.RecordSimilarityEvaluations(result.Evaluations)
	}
	c.logger.Info("classification run complete",
		"run_id", runID,
		"assigned", len(result.Assignments),
		"skipped", len(result.Skipped),
		"categories", len(sorted),
		"duration", result.Duration)

	return result, nil
}

// scoreItem embeds one item and selects its nearest category. The full score
// table is computed before selection; iteration over the id-sorted category
// slice with a strict greater-than comparison implements the lowest-id
// tie-break.
func (c *Classifier) scoreItem(ctx context.Context, item types.Item, sorted []types.Category) itemScore {
	if strings.TrimSpace(item.Text) == "" {
		return itemScore{item: item, skipReason: "empty text"}
	}

	vec, err := c.oracle.Embed(ctx, item.Text)
	if err != nil {
		c.logger.Warn("item skipped: embedding failed", "item_id", item.ID, "error", err)
		return itemScore{item: item, skipReason: "embedding failed: " + err.Error()}
	}

	best := sorted[0].ID
	bestScore := c.oracle.Similarity(vec, sorted[0].Embedding)
	for _, cat := range sorted[1:] {
		score := c.oracle.Similarity(vec, cat.Embedding)
		if score > bestScore {
			best = cat.ID
			bestScore = score
		}
	}

	return itemScore{item: item, best: best, assigned: true}
}

// validateCorpus rejects malformed category/item input before any oracle
// calls are made.
func validateCorpus(categories []types.Category, items []types.Item) error {
	seen := make(map[int]bool, len(categories))
	for _, cat := range categories {
		if seen[cat.ID] {
			return errors.WrapClassification(errors.ErrCorpusMalformed, "Classifier", "Classify",
				fmt.Sprintf("duplicate category id %d", cat.ID))
		}
		seen[cat.ID] = true
		if strings.TrimSpace(cat.Description) == "" && len(cat.Embedding) == 0 {
			return errors.WrapClassification(errors.ErrCorpusMalformed, "Classifier", "Classify",
				fmt.Sprintf("category %d has neither description nor embedding", cat.ID))
		}
	}

	seenItems := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ID == "" {
			return errors.WrapClassification(errors.ErrCorpusMalformed, "Classifier", "Classify",
				"item with empty id")
		}
		if seenItems[item.ID] {
			return errors.WrapClassification(errors.ErrCorpusMalformed, "Classifier", "Classify",
				fmt.Sprintf("duplicate item id %s", item.ID))
		}
		seenItems[item.ID] = true
	}
	return nil
}
