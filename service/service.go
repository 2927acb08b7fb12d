// Package service wires the SemQuery pipeline together: classification runs
// over the stored corpus, the two query translation paths, and the
// administrative template configuration.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/c360/semquery/classifier"
	"github.com/c360/semquery/compiler"
	"github.com/c360/semquery/config"
	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/extractor"
	"github.com/c360/semquery/health"
	"github.com/c360/semquery/metric"
	"github.com/c360/semquery/oracle"
	"github.com/c360/semquery/store"
	"github.com/c360/semquery/types"
)

// Service owns the pipeline components and the persistence layer.
type Service struct {
	cfg        *config.SafeConfig
	store      *store.Store
	oracle     oracle.Oracle
	extractor  *extractor.SlotExtractor
	classifier *classifier.Classifier
	compiler   *compiler.Compiler
	metrics    *metric.Metrics
	monitor    *health.Monitor
	logger     *slog.Logger

	// Serializes classification runs; a run that arrives while another is
	// active is rejected, not queued.
	runActive chan struct{}
}

// Deps carries the constructed dependencies into New.
type Deps struct {
	Config     *config.SafeConfig
	Store      *store.Store
	Oracle     oracle.Oracle
	Extractor  *extractor.SlotExtractor
	Classifier *classifier.Classifier
	Compiler   *compiler.Compiler
	Metrics    *metric.Metrics
	Logger     *slog.Logger
}

// New assembles the service. All dependencies are required except Metrics and
// Logger.
func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		cfg:        deps.Config,
		store:      deps.Store,
		oracle:     deps.Oracle,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		compiler:   deps.Compiler,
		metrics:    deps.Metrics,
		monitor:    health.NewMonitor(),
		logger:     logger,
		runActive:  make(chan struct{}, 1),
	}
	s.runActive <- struct{}{}
	return s
}

// Monitor exposes the health monitor for the gateway.
func (s *Service) Monitor() *health.Monitor {
	return s.monitor
}

// RefreshResult summarizes one category refresh plus classification run.
type RefreshResult struct {
	RunID      string                   `json:"run_id"`
	Categories []types.Category         `json:"categories"`
	Assigned   int                      `json:"assigned"`
	Skipped    []classifier.SkippedItem `json:"skipped"`
	Duration   time.Duration            `json:"duration"`
}

// RefreshCategories replaces the category set from label -> description
// pairs, embeds every description, and runs a full classification of the item
// corpus. Ids are assigned sequentially in the order given. Classification
// runs against the incoming definitions before anything is written; the
// category and assignment sets are then swapped together in one transaction,
// so readers keep the previous corpus for the whole duration of the run and a
// failed run changes nothing. A refresh that arrives while another run is
// active is rejected with a classification error.
func (s *Service) RefreshCategories(ctx context.Context, defs []types.Category) (*RefreshResult, error) {
	select {
	case <-s.runActive:
		defer func() { s.runActive <- struct{}{} }()
	default:
		return nil, errors.WrapClassification(errors.ErrRunInProgress, "Service", "RefreshCategories",
			"start classification run")
	}

	if len(defs) == 0 {
		return nil, errors.WrapValidation(errors.ErrNoCategories, "Service", "RefreshCategories",
			"validate category definitions")
	}
	for _, def := range defs {
		if strings.TrimSpace(def.Label) == "" || strings.TrimSpace(def.Description) == "" {
			return nil, errors.WrapValidation(errors.ErrMissingInput, "Service", "RefreshCategories",
				"category label and description required")
		}
	}

	for i := range defs {
		defs[i].ID = i + 1
		vec, err := s.oracle.Embed(ctx, defs[i].Description)
		if err != nil {
			return nil, errors.WrapClassification(err, "Service", "RefreshCategories",
				"embed category description")
		}
		defs[i].Embedding = vec
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, errors.WrapExecution(err, "Service", "RefreshCategories",
			"load item corpus", "", "")
	}

	result, err := s.classifier.Classify(ctx, defs, items)
	if err != nil {
		return nil, err
	}

	categories, err := s.store.ReplaceCorpus(ctx, result.RunID, defs, result.Assignments)
	if err != nil {
		return nil, errors.WrapExecution(err, "Service", "RefreshCategories",
			"swap category and assignment sets", "", "")
	}

	s.logger.Info("category refresh complete",
		"run_id", result.RunID,
		"categories", len(categories),
		"assigned", len(result.Assignments),
		"skipped", len(result.Skipped))

	return &RefreshResult{
		RunID:      result.RunID,
		Categories: categories,
		Assigned:   len(result.Assignments),
		Skipped:    result.Skipped,
		Duration:   result.Duration,
	}, nil
}

// Categories lists the stored category set.
func (s *Service) Categories(ctx context.Context) ([]types.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, errors.WrapExecution(err, "Service", "Categories", "list categories", "", "")
	}
	return cats, nil
}

// UpsertItems adds or updates corpus items.
func (s *Service) UpsertItems(ctx context.Context, items []store.ItemRecord) error {
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return errors.WrapValidation(errors.ErrInvalidID, "Service", "UpsertItems",
				"item id required")
		}
	}
	if err := s.store.UpsertItems(ctx, items); err != nil {
		return errors.WrapExecution(err, "Service", "UpsertItems", "upsert items", "", "")
	}
	return nil
}

// Assignments lists the current assignment set with category labels.
func (s *Service) Assignments(ctx context.Context) ([]store.AssignmentView, error) {
	views, err := s.store.ListAssignments(ctx)
	if err != nil {
		return nil, errors.WrapExecution(err, "Service", "Assignments", "list assignments", "", "")
	}
	return views, nil
}

// AssignmentsByOwner returns per-owner category counts, optionally filtered
// to one owner.
func (s *Service) AssignmentsByOwner(ctx context.Context, owner string) ([]store.OwnerCategoryCount, error) {
	counts, err := s.store.CountByOwner(ctx, owner)
	if err != nil {
		return nil, errors.WrapExecution(err, "Service", "AssignmentsByOwner",
			"count assignments by owner", "", "")
	}
	return counts, nil
}

// Health pings the store and returns the aggregated service health.
func (s *Service) Health(ctx context.Context) health.Status {
	if err := s.store.DB().PingContext(ctx); err != nil {
		s.monitor.UpdateUnhealthy("store", "ping failed")
	} else {
		s.monitor.UpdateHealthy("store", "connected")
	}
	status := s.monitor.Overall("semquery")
	if s.metrics != nil {
		for _, sub := range status.SubStatuses {
			s.metrics.RecordHealthStatus(sub.Component, sub.Healthy)
		}
	}
	return status
}

// Close releases the persistence layer.
func (s *Service) Close() error {
	return s.store.Close()
}
