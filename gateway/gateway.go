// Package gateway provides the HTTP façade over the SemQuery service:
// category refresh and listing, the two query translation paths, template
// administration, health, and metrics.
package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/metric"
	"github.com/c360/semquery/service"
	"github.com/c360/semquery/store"
	"github.com/c360/semquery/types"
)

// Gateway serves the HTTP API.
type Gateway struct {
	svc     *service.Service
	metrics *metric.Metrics
	handler http.Handler
	logger  *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger (defaults to slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithMetrics records request counters and exposes /metrics from the given
// registry.
func WithMetrics(m *metric.Metrics, metricsHandler http.Handler) Option {
	return func(g *Gateway) {
		g.metrics = m
		if metricsHandler != nil {
			g.handler = metricsHandler
		}
	}
}

// New builds the gateway and its route table.
func New(svc *service.Service, opts ...Option) *Gateway {
	g := &Gateway{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Routes returns the fully wired HTTP handler.
func (g *Gateway) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /categories/refresh", g.handleRefresh)
	mux.HandleFunc("GET /categories", g.handleCategories)
	mux.HandleFunc("POST /items", g.handleUpsertItems)
	mux.HandleFunc("GET /assignments", g.handleAssignments)
	mux.HandleFunc("GET /assignments/by-owner", g.handleAssignmentsByOwner)
	mux.HandleFunc("POST /query/translate", g.handleTranslate)
	mux.HandleFunc("POST /query/graph", g.handleGraph)
	mux.HandleFunc("GET /config/templates", g.handleGetTemplates)
	mux.HandleFunc("PUT /config/templates", g.handlePutTemplates)
	mux.HandleFunc("GET /healthz", g.handleHealth)
	if g.handler != nil {
		mux.Handle("GET /metrics", g.handler)
	}

	return g.withMiddleware(mux)
}

// getOrGenerateRequestID extracts the request ID from headers or generates a
// new one for tracing.
func getOrGenerateRequestID(r *http.Request) string {
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		return reqID
	}
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (g *Gateway) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := getOrGenerateRequestID(r)
		w.Header().Set("X-Request-ID", reqID)

		applyCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		if g.metrics != nil {
			g.metrics.RecordRequest(r.URL.Path, fmt.Sprintf("%d", rec.status), duration)
		}
		g.logger.Debug("request handled",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", duration)
	})
}

func applyCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
}

// statusForError maps an error kind to its HTTP status.
func statusForError(err error) int {
	kind, ok := errors.KindOf(err)
	if !ok {
		return http.StatusBadRequest
	}
	switch kind {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindExtraction:
		return http.StatusUnprocessableEntity
	case errors.KindConfig:
		return http.StatusInternalServerError
	case errors.KindExecution:
		return http.StatusBadGateway
	case errors.KindClassification:
		if stderrors.Is(err, errors.ErrRunInProgress) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Warn("response encode failed", "error", err)
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	payload := errors.ToPayload(err)
	if g.metrics != nil {
		g.metrics.RecordError("gateway", payload.Kind)
	}
	g.writeJSON(w, statusForError(err), map[string]any{"error": payload})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.WrapValidation(err, "Gateway", "decodeBody", "decode request body")
	}
	return nil
}

// refreshRequest mirrors the original refresh payload: label -> description.
type refreshRequest struct {
	Categories map[string]string `json:"categories"`
}

// categoriesFromMap turns the label -> description payload into category
// definitions in sorted label order, so id assignment does not depend on map
// iteration.
func categoriesFromMap(m map[string]string) []types.Category {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	defs := make([]types.Category, 0, len(labels))
	for _, label := range labels {
		defs = append(defs, types.Category{Label: label, Description: m[label]})
	}
	return defs
}

func (g *Gateway) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		g.writeError(w, err)
		return
	}
	defs := categoriesFromMap(req.Categories)

	result, err := g.svc.RefreshCategories(r.Context(), defs)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, result)
}

func (g *Gateway) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := g.svc.Categories(r.Context())
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (g *Gateway) handleUpsertItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []store.ItemRecord `json:"items"`
	}
	if err := decodeBody(r, &req); err != nil {
		g.writeError(w, err)
		return
	}
	if err := g.svc.UpsertItems(r.Context(), req.Items); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"upserted": len(req.Items)})
}

func (g *Gateway) handleAssignments(w http.ResponseWriter, r *http.Request) {
	views, err := g.svc.Assignments(r.Context())
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"assignments": views})
}

func (g *Gateway) handleAssignmentsByOwner(w http.ResponseWriter, r *http.Request) {
	counts, err := g.svc.AssignmentsByOwner(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (g *Gateway) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		g.writeError(w, err)
		return
	}
	result, err := g.svc.TranslateQuery(r.Context(), req.Query)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, result)
}

func (g *Gateway) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		g.writeError(w, err)
		return
	}
	result, err := g.svc.GraphQuery(r.Context(), req.Query)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, result)
}

func (g *Gateway) handleGetTemplates(w http.ResponseWriter, r *http.Request) {
	cfg, err := g.svc.Templates(r.Context())
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, cfg)
}

func (g *Gateway) handlePutTemplates(w http.ResponseWriter, r *http.Request) {
	var cfg types.TemplateConfig
	if err := decodeBody(r, &cfg); err != nil {
		g.writeError(w, err)
		return
	}
	if err := g.svc.UpdateTemplates(r.Context(), cfg); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"message": "configuration updated"})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := g.svc.Health(r.Context())
	code := http.StatusOK
	if status.IsUnhealthy() {
		code = http.StatusServiceUnavailable
	}
	g.writeJSON(w, code, status)
}
