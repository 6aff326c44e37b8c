package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrodesk/app"
	"agrodesk/domain/core"
	"agrodesk/internal/metrics"
	"agrodesk/models"
)

// memoryCosts scopes rows the way the database does: admins see all
type memoryCosts struct {
	mu   sync.Mutex
	rows []*models.Cost
}

func (m *memoryCosts) visible(session models.Session, c *models.Cost) bool {
	return session.IsAdmin() || c.UserID == session.UserID
}

func (m *memoryCosts) List(_ context.Context, session models.Session, filter models.CostFilter) ([]*models.Cost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Cost{}
	for _, c := range m.rows {
		if !m.visible(session, c) {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryCosts) Get(_ context.Context, session models.Session, id uuid.UUID) (*models.Cost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.ID == id && m.visible(session, c) {
			return c, nil
		}
	}
	return nil, core.NewNotFoundError("cost", id.String())
}

func (m *memoryCosts) Create(_ context.Context, cost *models.Cost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cost.ID = core.NewID()
	m.rows = append(m.rows, cost)
	return nil
}

func (m *memoryCosts) Update(ctx context.Context, session models.Session, cost *models.Cost) error {
	current, err := m.Get(ctx, session, cost.ID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	*current = *cost
	return nil
}

func (m *memoryCosts) Delete(ctx context.Context, session models.Session, id uuid.UUID) error {
	if _, err := m.Get(ctx, session, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.rows {
		if c.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryCosts) Total(ctx context.Context, session models.Session, filter models.CostFilter) (float64, error) {
	rows, _ := m.List(ctx, session, filter)
	var total float64
	for _, c := range rows {
		total += c.Amount
	}
	return total, nil
}

type memoryEvents struct {
	mu   sync.Mutex
	rows []*models.Event
}

func (m *memoryEvents) List(context.Context) ([]*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Event{}, m.rows...), nil
}

func (m *memoryEvents) GetByIDOrSlug(_ context.Context, ref string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.rows {
		if e.Slug == ref || e.ID.String() == ref {
			copied := *e
			return &copied, nil
		}
	}
	return nil, core.NewNotFoundError("event", ref)
}

func (m *memoryEvents) Create(_ context.Context, e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = core.NewID()
	m.rows = append(m.rows, e)
	return nil
}

func (m *memoryEvents) Update(_ context.Context, e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == e.ID {
			m.rows[i] = e
			return nil
		}
	}
	return core.NewNotFoundError("event", e.ID.String())
}

func (m *memoryEvents) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return core.NewNotFoundError("event", id.String())
}

type testServer struct {
	handler http.Handler
	costs   *memoryCosts
	events  *memoryEvents
}

func newTestServer(t *testing.T, m *metrics.Metrics) *testServer {
	t.Helper()
	costs := &memoryCosts{}
	events := &memoryEvents{}
	srv := NewServer(Services{
		Costs:  app.NewCostService(costs, nil),
		Events: app.NewEventService(events),
	}, Options{DefaultDays: 30, Alpha: 0.05}, nil, m)
	return &testServer{handler: srv.Handler(), costs: costs, events: events}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func userHeaders(id uuid.UUID, role string) map[string]string {
	return map[string]string{headerUserID: id.String(), headerUserRole: role}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/metrics", nil, nil).Code)

	ts = newTestServer(t, metrics.New("agrodesk"))
	ts.do(t, http.MethodGet, "/healthz", nil, nil)
	rec := ts.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `agrodesk_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestANOVA(t *testing.T) {
	ts := newTestServer(t, metrics.New("agrodesk"))

	rec := ts.do(t, http.MethodPost, "/api/stats/anova", map[string]any{
		"groups": map[string][]float64{
			"Fungicide": {10, 11, 12},
			"Control":   {4, 5, 6},
			"Bio":       {7, 8, 9},
		},
		"order": []string{"Fungicide", "Control", "Bio"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		Summaries []struct {
			Label string  `json:"label"`
			Mean  float64 `json:"mean"`
		} `json:"summaries"`
		ANOVA struct {
			F           float64 `json:"f"`
			DFBetween   int     `json:"df_between"`
			DFWithin    int     `json:"df_within"`
			Alpha       float64 `json:"alpha"`
			Significant bool    `json:"significant"`
		} `json:"anova"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Summaries, 3)
	assert.Equal(t, "Fungicide", report.Summaries[0].Label)
	assert.InDelta(t, 11, report.Summaries[0].Mean, 1e-9)
	assert.InDelta(t, 27, report.ANOVA.F, 1e-9)
	assert.Equal(t, 2, report.ANOVA.DFBetween)
	assert.Equal(t, 6, report.ANOVA.DFWithin)
	assert.InDelta(t, 0.05, report.ANOVA.Alpha, 1e-12)
	assert.True(t, report.ANOVA.Significant)
}

func TestANOVARejectsBadInput(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"single group", map[string]any{"groups": map[string][]float64{"a": {1, 2}}}, http.StatusUnprocessableEntity, "DEGENERATE_INPUT"},
		{"empty group", map[string]any{"groups": map[string][]float64{"a": {1, 2}, "b": {}}}, http.StatusUnprocessableEntity, "DEGENERATE_INPUT"},
		{"no groups", map[string]any{}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"alpha above one", map[string]any{"groups": map[string][]float64{"a": {1, 2}, "b": {3, 4}}, "alpha": 5}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"zero alpha", map[string]any{"groups": map[string][]float64{"a": {1, 2}, "b": {3, 4}}, "alpha": 0}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/stats/anova", tt.body, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestANOVAAlphaAndOutcomes(t *testing.T) {
	m := metrics.New("agrodesk")
	ts := newTestServer(t, m)
	groups := map[string][]float64{"a": {1, 2}, "b": {5, 6}}

	rec := ts.do(t, http.MethodPost, "/api/stats/anova", map[string]any{"groups": groups, "alpha": 0.01}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		ANOVA struct {
			F           float64 `json:"f"`
			Alpha       float64 `json:"alpha"`
			Significant bool    `json:"significant"`
		} `json:"anova"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.InDelta(t, 32, report.ANOVA.F, 1e-9)
	assert.InDelta(t, 0.01, report.ANOVA.Alpha, 1e-12)
	assert.False(t, report.ANOVA.Significant)

	rec = ts.do(t, http.MethodPost, "/api/stats/anova", map[string]any{"groups": map[string][]float64{"a": {1, 2}, "b": {}}}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := ts.do(t, http.MethodGet, "/metrics", nil, nil).Body.String()
	assert.Contains(t, body, `agrodesk_trial_analyses_total{outcome="ok"} 1`)
	assert.Contains(t, body, `agrodesk_trial_analyses_total{outcome="degenerate"} 1`)
	assert.NotContains(t, body, `outcome="error"`)
}

func TestSessionHeaders(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/costs", nil, map[string]string{headerUserID: "not-a-uuid"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)

	rec = ts.do(t, http.MethodGet, "/api/costs", nil, userHeaders(core.NewID(), "owner"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)

	// Anonymous listing degrades to an empty list
	rec = ts.do(t, http.MethodGet, "/api/costs", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/costs", map[string]any{"date": "2024-01-10", "category": "rent", "amount": 10}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCostRoutesScopeBySession(t *testing.T) {
	ts := newTestServer(t, nil)
	alice, bob := core.NewID(), core.NewID()

	create := func(user uuid.UUID, category string, amount float64) models.Cost {
		rec := ts.do(t, http.MethodPost, "/api/costs", map[string]any{
			"date": "2024-03-01", "category": category, "amount": amount, "expense_type": "monthly",
		}, userHeaders(user, "user"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var c models.Cost
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		return c
	}
	rent := create(alice, "rent", 1000)
	create(alice, "fuel", 50)
	create(bob, "rent", 700)

	list := func(headers map[string]string, query string) []models.Cost {
		rec := ts.do(t, http.MethodGet, "/api/costs"+query, nil, headers)
		require.Equal(t, http.StatusOK, rec.Code)
		var costs []models.Cost
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &costs))
		return costs
	}
	assert.Len(t, list(userHeaders(alice, "user"), ""), 2)
	assert.Len(t, list(userHeaders(alice, "user"), "?category=rent"), 1)
	assert.Len(t, list(userHeaders(bob, "admin"), ""), 3)

	assert.Equal(t, alice, rent.UserID)

	rec := ts.do(t, http.MethodDelete, "/api/costs/"+rent.ID.String(), nil, userHeaders(bob, "user"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)

	rec = ts.do(t, http.MethodDelete, "/api/costs/"+rent.ID.String(), nil, userHeaders(alice, "user"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, list(userHeaders(alice, "user"), ""), 1)

	rec = ts.do(t, http.MethodGet, "/api/costs?start=yesterday", nil, userHeaders(alice, "user"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/costs/42", nil, userHeaders(alice, "user"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventRoutesBySlug(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/events", map[string]any{
		"title": "Spring Field Day", "date": "2025-04-12",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "spring-field-day", created.Slug)

	rec = ts.do(t, http.MethodGet, "/api/events/spring-field-day", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/events/"+created.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/events/spring-field-day", map[string]any{
		"title": "Spring Field Day (moved)", "date": "2025-04-19", "slug": "renamed",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "spring-field-day", updated.Slug)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "2025-04-19", updated.Date.String())

	rec = ts.do(t, http.MethodDelete, "/api/events/spring-field-day", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/events/spring-field-day", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnmountedServices(t *testing.T) {
	ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/trials", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/documents", nil, nil).Code)
}
