package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quote-pipeline/internal/db"
	"github.com/jonathan/quote-pipeline/internal/llm"
	"github.com/jonathan/quote-pipeline/internal/observability"
	"github.com/jonathan/quote-pipeline/internal/pipeline"
	"github.com/jonathan/quote-pipeline/internal/pipeline/steps"
	"github.com/jonathan/quote-pipeline/internal/server/ratelimit"
	"github.com/jonathan/quote-pipeline/internal/types"
)

var testNow = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// memoryStore implements QuoteStore in memory
type memoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*db.QuoteRecord
	saveErr error
	pingErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[uuid.UUID]*db.QuoteRecord{}}
}

func (m *memoryStore) SaveQuote(_ context.Context, q *types.Quote, validation *types.ValidationResult) (uuid.UUID, error) {
	if m.saveErr != nil {
		return uuid.Nil, m.saveErr
	}
	id, err := uuid.Parse(q.ID)
	if err != nil {
		return uuid.Nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = &db.QuoteRecord{
		ID:         id,
		Quote:      q,
		Validation: validation,
		Blocking:   validation != nil && !validation.Passed,
		StoredAt:   testNow,
	}
	return id, nil
}

func (m *memoryStore) GetQuote(_ context.Context, id uuid.UUID) (*db.QuoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id], nil
}

func (m *memoryStore) ListQuotes(_ context.Context, filters db.QuoteFilters) ([]db.QuoteSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.QuoteSummary
	for _, r := range m.records {
		if filters.JobType != "" && r.Quote.JobType != filters.JobType {
			continue
		}
		if filters.Blocking != nil && r.Blocking != *filters.Blocking {
			continue
		}
		out = append(out, db.QuoteSummary{
			ID:           r.ID,
			JobType:      r.Quote.JobType,
			Category:     r.Quote.Category,
			TotalWithVAT: r.Quote.Summary.TotalWithVAT,
			CustomerPays: r.Quote.Summary.CustomerPays,
			Blocking:     r.Blocking,
			CreatedAt:    r.Quote.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memoryStore) DeleteQuote(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: %s", db.ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func (m *memoryStore) Ping(context.Context) error {
	return m.pingErr
}

// stubDrafts returns a fixed model response
type stubDrafts struct {
	raw   string
	err   error
	calls int
}

func (d *stubDrafts) Generate(context.Context, *types.QuoteRequest) (string, error) {
	d.calls++
	return d.raw, d.err
}

type testServer struct {
	*Server
	handler http.Handler
	store   *memoryStore
}

func newTestServer(t *testing.T, mutate func(*Config)) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	store := newMemoryStore()
	cfg := Config{
		Store:     store,
		Metrics:   observability.NewMetrics(reg),
		Gatherer:  reg,
		RateLimit: &ratelimit.Config{Enabled: false},
		Now:       func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s := New(cfg)
	t.Cleanup(s.Close)
	return &testServer{Server: s, handler: s.Handler(), store: store}
}

func (ts *testServer) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func work(name string, hours float64) types.WorkItem {
	return types.WorkItem{Name: name, Hours: hours, HourlyRate: 650}
}

// bathroomRequest lacks the electrical installation
func bathroomRequest() *types.QuoteRequest {
	return &types.QuoteRequest{
		Description: "Renovera badrum 6 kvm",
		JobType:     "bathroom_renovation",
		Area:        6,
		Draft: &types.Draft{
			WorkItems: []types.WorkItem{
				work("Rivning", 9),
				work("Tätskikt", 6),
				work("Kakelsättning vägg", 7.5),
				work("Klinkerläggning golv", 6),
				work("VVS-installation", 16),
			},
		},
	}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("without database", func(t *testing.T) {
		ts := newTestServer(t, func(c *Config) { c.Store = nil })
		w := ts.do(http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[map[string]string](t, w)
		assert.Equal(t, "ok", resp["status"])
		assert.Equal(t, "disabled", resp["database"])
	})

	t.Run("unreachable database", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.store.pingErr = errors.New("connection refused")
		w := ts.do(http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[map[string]string](t, w)
		assert.Equal(t, "degraded", resp["status"])
		assert.Equal(t, "unreachable", resp["database"])
	})
}

func TestCreateQuote(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/quotes?autofix=true", bathroomRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[QuoteResponse](t, w)
	assert.False(t, resp.Blocking)
	assert.True(t, resp.Stored)
	require.NotNil(t, resp.Quote)
	assert.Len(t, resp.Quote.WorkItems, 6)
	assert.Equal(t, 55181.0, resp.Quote.Summary.CustomerPays)
	assert.True(t, testNow.Equal(resp.Quote.CreatedAt))

	id := uuid.MustParse(resp.Quote.ID)
	stored, err := ts.store.GetQuote(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Blocking)
}

func TestCreateQuote_BlockingWithoutAutoFix(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/quotes", bathroomRequest())
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[QuoteResponse](t, w)
	assert.True(t, resp.Blocking)
	assert.Equal(t, []string{"El-installation våtrum"}, resp.Validation.MissingItems)
}

func TestCreateQuote_DateSelectsDeductionRate(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/quotes?autofix=true&date=2026-01-01", bathroomRequest())
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[QuoteResponse](t, w)
	assert.Equal(t, 0.3, resp.Quote.DeductionRate)
}

func TestCreateQuote_DeductionCap(t *testing.T) {
	large := &types.QuoteRequest{
		JobType: "painting",
		Area:    50,
		Draft:   &types.Draft{WorkItems: []types.WorkItem{work("Målning väggar", 200)}},
	}

	tests := []struct {
		name     string
		capped   bool
		target   string
		expected float64
	}{
		{name: "uncapped by default", target: "/quotes", expected: 65000},
		{name: "capped by query", target: "/quotes?cap_deduction=true", expected: 50000},
		{name: "capped by server config", capped: true, target: "/quotes", expected: 50000},
		{name: "query overrides server config", capped: true, target: "/quotes?cap_deduction=false", expected: 65000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, func(c *Config) { c.CapDeduction = tt.capped })
			w := ts.do(http.MethodPost, tt.target, large)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			resp := decodeBody[QuoteResponse](t, w)
			assert.Equal(t, tt.expected, resp.Quote.Summary.DeductionAmount)
		})
	}
}

func TestCreateQuote_StoreFailureStillAnswers(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.store.saveErr = errors.New("disk full")

	w := ts.do(http.MethodPost, "/quotes?autofix=true", bathroomRequest())
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[QuoteResponse](t, w)
	assert.False(t, resp.Stored)
}

func TestCreateQuote_BadInput(t *testing.T) {
	ts := newTestServer(t, nil)

	negative := bathroomRequest()
	negative.Area = -1

	tests := []struct {
		name   string
		target string
		body   any
	}{
		{name: "invalid JSON", target: "/quotes", body: `{invalid json}`},
		{name: "failed validation", target: "/quotes", body: negative},
		{name: "empty request", target: "/quotes", body: `{}`},
		{name: "bad autofix", target: "/quotes?autofix=maybe", body: bathroomRequest()},
		{name: "bad date", target: "/quotes?date=02/06/2025", body: bathroomRequest()},
		{name: "bad cap_deduction", target: "/quotes?cap_deduction=maybe", body: bathroomRequest()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeBody[map[string]string](t, w)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestCreateQuoteStream(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/quotes/stream?autofix=true", bathroomRequest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, len(steps.Order)+1, strings.Count(body, "event: step\n"))
	assert.Contains(t, body, "event: result\n")
	assert.Contains(t, body, "event: complete\n")
	assert.Contains(t, body, `"status":"final"`)
	assert.Less(t, strings.Index(body, "event: result"), strings.Index(body, "event: complete"))
}

func TestCreateQuoteStream_InvalidRequestIsPlainJSON(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/quotes/stream", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

const modelDraft = "```json\n" + `{
  "work_items": [
    {"name": "Rivning", "hours": 9, "hourly_rate": 650},
    {"name": "Tätskikt", "hours": 6, "hourly_rate": 650},
    {"name": "Kakelsättning vägg", "hours": 7.5, "hourly_rate": 650},
    {"name": "Klinkerläggning golv", "hours": 6, "hourly_rate": 650},
    {"name": "VVS-installation", "hours": "16", "hourly_rate": 650}
  ],
  "materials": []
}` + "\n```"

func TestDraftQuote(t *testing.T) {
	t.Run("model draft runs through the pipeline", func(t *testing.T) {
		drafts := &stubDrafts{raw: modelDraft}
		ts := newTestServer(t, func(c *Config) { c.Drafts = drafts })

		req := bathroomRequest()
		req.Draft = nil
		w := ts.do(http.MethodPost, "/quotes/draft?autofix=true", req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeBody[QuoteResponse](t, w)
		assert.Equal(t, 1, drafts.calls)
		assert.False(t, resp.Blocking)
		assert.Len(t, resp.Quote.WorkItems, 6)
		assert.True(t, resp.Stored)
	})

	t.Run("not configured", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do(http.MethodPost, "/quotes/draft", bathroomRequest())
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("invalid request skips the model", func(t *testing.T) {
		drafts := &stubDrafts{raw: modelDraft}
		ts := newTestServer(t, func(c *Config) { c.Drafts = drafts })
		w := ts.do(http.MethodPost, "/quotes/draft", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, drafts.calls)
	})

	t.Run("model timeout", func(t *testing.T) {
		drafts := &stubDrafts{err: &llm.APICallError{Model: "gemini", Message: "generate", Cause: context.DeadlineExceeded}}
		ts := newTestServer(t, func(c *Config) { c.Drafts = drafts })
		w := ts.do(http.MethodPost, "/quotes/draft", bathroomRequest())
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("unparseable draft", func(t *testing.T) {
		drafts := &stubDrafts{raw: "I cannot help with that"}
		ts := newTestServer(t, func(c *Config) { c.Drafts = drafts })
		w := ts.do(http.MethodPost, "/quotes/draft", bathroomRequest())
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestValidateQuote(t *testing.T) {
	ts := newTestServer(t, nil)

	fixed, err := pipeline.Run(context.Background(), bathroomRequest(), pipeline.Options{AutoFix: true, Now: testNow})
	require.NoError(t, err)
	blocked, err := pipeline.Run(context.Background(), bathroomRequest(), pipeline.Options{Now: testNow})
	require.NoError(t, err)

	t.Run("passing quote", func(t *testing.T) {
		w := ts.do(http.MethodPost, "/quotes/validate", ValidateRequest{Quote: fixed.Quote})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[ValidateResponse](t, w)
		assert.False(t, resp.Blocking)
		assert.Empty(t, resp.Corrections)
	})

	t.Run("blocking quote", func(t *testing.T) {
		w := ts.do(http.MethodPost, "/quotes/validate", ValidateRequest{Quote: blocked.Quote})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[ValidateResponse](t, w)
		assert.True(t, resp.Blocking)
	})

	t.Run("missing quote", func(t *testing.T) {
		w := ts.do(http.MethodPost, "/quotes/validate", `{"description": "x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStoredQuotes(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/quotes?autofix=true", bathroomRequest())
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody[QuoteResponse](t, w).Quote.ID

	t.Run("get", func(t *testing.T) {
		w := ts.do(http.MethodGet, "/quotes/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		record := decodeBody[db.QuoteRecord](t, w)
		assert.Equal(t, id, record.ID.String())
		assert.Equal(t, 55181.0, record.Quote.Summary.CustomerPays)
	})

	t.Run("list with filters", func(t *testing.T) {
		w := ts.do(http.MethodGet, "/quotes", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decodeBody[QuoteListResponse](t, w).Count)

		w = ts.do(http.MethodGet, "/quotes?blocking=true", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[QuoteListResponse](t, w)
		assert.Equal(t, 0, resp.Count)
		assert.NotNil(t, resp.Quotes)
	})

	t.Run("bad filters", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/quotes?limit=0", nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/quotes?blocking=perhaps", nil).Code)
	})

	t.Run("bad id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/quotes/not-a-uuid", nil).Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/quotes/"+uuid.NewString(), nil).Code)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/quotes/"+id, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/quotes/"+id, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/quotes/"+id, nil).Code)
	})
}

func TestStoredQuotes_NoDatabase(t *testing.T) {
	ts := newTestServer(t, func(c *Config) { c.Store = nil })

	tests := []struct {
		method string
		target string
	}{
		{method: http.MethodGet, target: "/quotes"},
		{method: http.MethodGet, target: "/quotes/" + uuid.NewString()},
		{method: http.MethodDelete, target: "/quotes/" + uuid.NewString()},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			assert.Equal(t, http.StatusServiceUnavailable, ts.do(tt.method, tt.target, nil).Code)
		})
	}

	w := ts.do(http.MethodPost, "/quotes?autofix=true", bathroomRequest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeBody[QuoteResponse](t, w).Stored)
}

func TestJobsEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Jobs  []JobSummary `json:"jobs"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 7, list.Count)
	assert.Equal(t, "bathroom_renovation", list.Jobs[0].JobType)
	assert.Equal(t, "generic", list.Jobs[len(list.Jobs)-1].JobType)

	w = ts.do(http.MethodGet, "/jobs/painting", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var def map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &def))
	assert.Equal(t, "painting", def["job_type"])

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/jobs/rocket_science", nil).Code)
}

func TestStepsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/steps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[StepsResponse](t, w)
	require.Len(t, resp.Steps, len(steps.Order))
	assert.Equal(t, steps.ClassifyJob, resp.Steps[0].Name)
	assert.Equal(t, steps.MathGuard, resp.Steps[len(resp.Steps)-1].Name)
	assert.Equal(t, []string{steps.ClassifyJob, steps.DetectFlags}, resp.Status.Available)
	assert.Empty(t, resp.Status.Completed)

	w = ts.do(http.MethodGet, "/steps?completed=classify_job,detect_flags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeBody[StepsResponse](t, w)
	assert.Equal(t, []string{steps.ApplyDefaults, steps.ResolveDeduction}, resp.Status.Available)
	assert.Len(t, resp.Status.Blocked, 7)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/steps?completed=bogus", nil).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	ts := newTestServer(t, func(c *Config) {
		c.RateLimit = &ratelimit.Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute}
	})

	first := ts.do(http.MethodGet, "/jobs", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := ts.do(http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	resp := decodeBody[map[string]any](t, second)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.Equal(t, ratelimit.TierDefault, resp["tier"])

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", nil).Code, "health is exempt")
	}
}

func TestCORSMiddleware(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodOptions, "/quotes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	w = ts.do(http.MethodGet, "/jobs", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/quotes?autofix=true", bathroomRequest()).Code)
	ts.do(http.MethodGet, "/nowhere", nil)

	w := ts.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `quote_pipeline_quotes_total{category="bathroom",outcome="final"} 1`)
	assert.Contains(t, body, `quote_pipeline_http_requests_total{code="2xx",route="POST /quotes"} 1`)
	assert.Contains(t, body, `quote_pipeline_http_requests_total{code="4xx",route="unmatched"} 1`)
}
