package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semquery/classifier"
	"github.com/c360/semquery/compiler"
	"github.com/c360/semquery/config"
	"github.com/c360/semquery/extractor"
	"github.com/c360/semquery/llm"
	"github.com/c360/semquery/oracle"
	"github.com/c360/semquery/service"
	"github.com/c360/semquery/store"
)

type stubOracle struct {
	vecs map[string][]float32
}

func (s *stubOracle) Embed(_ context.Context, text string) ([]float32, error) {
	vec, ok := s.vecs[text]
	if !ok {
		return nil, fmt.Errorf("no embedding for %q", text)
	}
	return vec, nil
}

func (s *stubOracle) Similarity(a, b []float32) float64 {
	return oracle.CosineSimilarity(a, b)
}

func newTestGateway(t *testing.T, o oracle.Oracle, completer llm.Completer) (*Gateway, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := service.New(service.Deps{
		Config:     config.NewSafeConfig(config.Default()),
		Store:      st,
		Oracle:     o,
		Extractor:  extractor.NewSlotExtractor(completer),
		Classifier: classifier.New(o, classifier.WithWorkers(2)),
		Compiler:   compiler.New(completer),
	})
	return New(svc), st
}

func fixed(response string) llm.Completer {
	return llm.CompleterFunc(func(context.Context, string) (string, error) {
		return response, nil
	})
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRefreshAndListFlow(t *testing.T) {
	o := &stubOracle{vecs: map[string][]float32{
		"connectivity problems": {1, 0},
		"payment disputes":      {0, 1},
		"double charged again":  {0.2, 0.9},
	}}
	g, _ := newTestGateway(t, o, fixed(""))
	h := g.Routes()

	rec := doRequest(t, h, http.MethodPost, "/items",
		`{"items": [{"id": "itm-1", "owner": "alice", "text": "double charged again"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, h, http.MethodPost, "/categories/refresh",
		`{"categories": {"Billing disputes": "payment disputes", "Network issues": "connectivity problems"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refresh struct {
		RunID    string `json:"run_id"`
		Assigned int    `json:"assigned"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refresh))
	assert.NotEmpty(t, refresh.RunID)
	assert.Equal(t, 1, refresh.Assigned)

	rec = doRequest(t, h, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cats struct {
		Categories []struct {
			ID    int    `json:"id"`
			Label string `json:"label"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats.Categories, 2)
	// Sorted label order fixes the id assignment.
	assert.Equal(t, "Billing disputes", cats.Categories[0].Label)
	assert.Equal(t, 1, cats.Categories[0].ID)

	rec = doRequest(t, h, http.MethodGet, "/assignments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"item_id":"itm-1"`)
	assert.Contains(t, rec.Body.String(), `"category_label":"Billing disputes"`)

	rec = doRequest(t, h, http.MethodGet, "/assignments/by-owner?owner=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"owner":"alice"`)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestTranslateEndpoint(t *testing.T) {
	g, st := newTestGateway(t, &stubOracle{}, fixed(
		`{"entity_id": "12345", "location_name": null, "date": null}`))
	h := g.Routes()

	_, err := st.DB().Exec(`INSERT INTO advisories (entity_id, solution, solution_two, solution_three)
		VALUES ('12345', 'call support', NULL, NULL)`)
	require.NoError(t, err)

	rec := doRequest(t, h, http.MethodPost, "/query/translate", `{"query": "help me"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Branch   string `json:"branch"`
		Compiled string `json:"compiled"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "fallback", result.Branch)
	assert.Contains(t, result.Compiled, "12345")
	assert.Contains(t, rec.Body.String(), `"solution_two":null`)
}

func TestErrorStatusMapping(t *testing.T) {
	// Completion returns junk that never parses: extraction error, 422.
	g, _ := newTestGateway(t, &stubOracle{}, fixed("not json at all"))
	h := g.Routes()

	rec := doRequest(t, h, http.MethodPost, "/query/translate", `{"query": "help"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "extraction", body.Error.Kind)
	assert.NotEmpty(t, body.Error.Message)

	// Malformed request body: validation error, 400.
	rec = doRequest(t, h, http.MethodPost, "/query/translate", `{"unknown_key": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Refresh with no categories: validation error, 400.
	rec = doRequest(t, h, http.MethodPost, "/categories/refresh", `{"categories": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplatesEndpoints(t *testing.T) {
	g, _ := newTestGateway(t, &stubOracle{}, fixed(""))
	h := g.Routes()

	rec := doRequest(t, h, http.MethodGet, "/config/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "{location}")

	tpl := config.DefaultTemplates()
	tpl.Graph = "main"
	payload, err := json.Marshal(tpl)
	require.NoError(t, err)

	rec = doRequest(t, h, http.MethodPut, "/config/templates", string(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/config/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"graph":"main"`)

	// Invalid template config: config error, 500.
	bad := config.DefaultTemplates()
	bad.AvailabilityTemplate = "no placeholders here"
	payload, err = json.Marshal(bad)
	require.NoError(t, err)
	rec = doRequest(t, h, http.MethodPut, "/config/templates", string(payload))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	g, _ := newTestGateway(t, &stubOracle{}, fixed(""))
	h := g.Routes()

	rec := doRequest(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestRequestIDAndCORS(t *testing.T) {
	g, _ := newTestGateway(t, &stubOracle{}, fixed(""))
	h := g.Routes()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// Preflight short-circuits.
	req = httptest.NewRequest(http.MethodOptions, "/query/translate", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Generated when absent.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
