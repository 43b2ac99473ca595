package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"callinsights/internal/config"
	"callinsights/internal/models"
)

// fakeStore is an in-memory Datastore for handler tests.
type fakeStore struct {
	rows    []models.Conversation
	pingErr error
	err     error
}

func (s *fakeStore) matching(filter models.ConversationFilter) []models.Conversation {
	var out []models.Conversation
	for _, r := range s.rows {
		if filter.AgentID != "" && r.AgentID != filter.AgentID {
			continue
		}
		if filter.StartUnix != nil && r.StartTimeUnixSecs < *filter.StartUnix {
			continue
		}
		if filter.EndUnixExclusive != nil && r.StartTimeUnixSecs >= *filter.EndUnixExclusive {
			continue
		}
		if filter.Category != "" && (r.SummaryCategory == nil || *r.SummaryCategory != filter.Category) {
			continue
		}
		if filter.CategorizedOnly && r.SummaryCategory == nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

func window(rows []models.Conversation, offset, limit int) []models.Conversation {
	if offset >= len(rows) {
		return nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func (s *fakeStore) QueryConversations(ctx context.Context, filter models.ConversationFilter, offset, limit int) ([]models.Conversation, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := s.matching(filter)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartTimeUnixSecs < rows[j].StartTimeUnixSecs
	})
	return window(rows, offset, limit), nil
}

func (s *fakeStore) ListConversations(ctx context.Context, filter models.ConversationFilter, offset, limit int) ([]models.Conversation, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := s.matching(filter)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartTimeUnixSecs > rows[j].StartTimeUnixSecs
	})
	return window(rows, offset, limit), nil
}

func (s *fakeStore) CountConversations(ctx context.Context, filter models.ConversationFilter) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return len(s.matching(filter)), nil
}

func (s *fakeStore) Ping(ctx context.Context) error {
	return s.pingErr
}

func testConfig() *config.Config {
	return &config.Config{
		FetchPageSize: 10,
		FetchTimeout:  5 * time.Second,
	}
}

func testLog() *logrus.Entry {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return logrus.NewEntry(base)
}

func seedRows(n int, agentID, agentName string, startUnix int64) []models.Conversation {
	rows := make([]models.Conversation, n)
	for i := range rows {
		rows[i] = models.Conversation{
			ConversationID:    fmt.Sprintf("%s_conv_%03d", agentID, i),
			AgentID:           agentID,
			AgentName:         agentName,
			StartTimeUnixSecs: startUnix + int64(i*60),
			CallDurationSecs:  90,
			MessageCount:      10,
		}
	}
	return rows
}

// envelope decodes the standard response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, app *fiber.App, path string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decoding %s response: %v", path, err)
	}
	return resp.StatusCode, env
}

// jan1 is 2025-01-01T00:00:00Z.
var jan1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

func TestMetricsListRequiresDates(t *testing.T) {
	app := fiber.New()
	h := NewMetricsHandler(&fakeStore{}, testConfig(), testLog())
	app.Get("/api/metrics", h.List)

	status, env := doRequest(t, app, "/api/metrics")
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if env.Status != "error" || env.Error == "" {
		t.Errorf("envelope = %+v, want error with message", env)
	}
}

func TestMetricsList(t *testing.T) {
	store := &fakeStore{}
	store.rows = append(store.rows, seedRows(25, "a2", "Bob", jan1+3600)...)
	store.rows = append(store.rows, seedRows(3, "a1", "Alice", jan1+3600)...)

	app := fiber.New()
	h := NewMetricsHandler(store, testConfig(), testLog())
	app.Get("/api/metrics", h.List)

	status, env := doRequest(t, app, "/api/metrics?start_date=2025-01-01&end_date=2025-01-02")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, env.Error)
	}

	var data struct {
		Metrics []models.AgentMetrics `json:"metrics"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(data.Metrics) != 2 {
		t.Fatalf("got %d agents, want 2", len(data.Metrics))
	}
	// Sorted by agent name.
	if data.Metrics[0].AgentName != "Alice" || data.Metrics[1].AgentName != "Bob" {
		t.Errorf("order = %s, %s; want Alice, Bob", data.Metrics[0].AgentName, data.Metrics[1].AgentName)
	}
	if data.Metrics[1].TotalConversations != 25 {
		t.Errorf("Bob total = %d, want 25 (spans store pages)", data.Metrics[1].TotalConversations)
	}
	if data.Metrics[0].AvgCallDuration != 90 {
		t.Errorf("Alice avg duration = %d, want 90", data.Metrics[0].AvgCallDuration)
	}
}

func TestMetricsListStoreError(t *testing.T) {
	app := fiber.New()
	h := NewMetricsHandler(&fakeStore{err: errors.New("boom")}, testConfig(), testLog())
	app.Get("/api/metrics", h.List)

	status, env := doRequest(t, app, "/api/metrics?start_date=2025-01-01&end_date=2025-01-02")
	if status != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if env.Status != "error" {
		t.Errorf("envelope status = %q, want error", env.Status)
	}
}

func TestAgentsList(t *testing.T) {
	store := &fakeStore{rows: seedRows(4, "a1", "Alice", jan1+60)}

	app := fiber.New()
	h := NewAgentHandler(store, testConfig(), testLog())
	app.Get("/api/agents", h.List)

	status, env := doRequest(t, app, "/api/agents?start_date=2025-01-01&end_date=2025-01-01")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, env.Error)
	}

	var data struct {
		Agents    []models.Agent    `json:"agents"`
		DateRange map[string]string `json:"dateRange"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(data.Agents) != 1 || data.Agents[0].TotalConversations != 4 {
		t.Errorf("agents = %+v, want Alice with 4", data.Agents)
	}
	if data.DateRange["startDate"] != "2025-01-01" {
		t.Errorf("dateRange = %v", data.DateRange)
	}
}

func TestCategoryHistogramEndpoint(t *testing.T) {
	title := "Customer asking about oil change prices"
	rows := seedRows(2, "a1", "Alice", jan1+60)
	rows[0].CallSummaryTitle = &title
	rows[1].CallDurationSecs = 5
	rows[1].MessageCount = 1

	app := fiber.New()
	h := NewCategoryHandler(&fakeStore{rows: rows}, testConfig(), testLog())
	app.Get("/api/categories", h.Histogram)

	status, env := doRequest(t, app, "/api/categories")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, env.Error)
	}

	var data struct {
		TotalCalls int                    `json:"totalCalls"`
		Categories []models.CategoryCount `json:"categories"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if data.TotalCalls != 2 {
		t.Errorf("totalCalls = %d, want 2", data.TotalCalls)
	}
	sum := 0
	for _, c := range data.Categories {
		sum += c.Count
	}
	if sum != 2 {
		t.Errorf("category counts sum to %d, want 2", sum)
	}
}

func TestCategoryDetailsRejectsUnknownCategory(t *testing.T) {
	app := fiber.New()
	h := NewCategoryHandler(&fakeStore{}, testConfig(), testLog())
	app.Get("/api/categories/details", h.Details)

	status, _ := doRequest(t, app, "/api/categories/details?category=Nonsense")
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestCategoryDetails(t *testing.T) {
	title := "Checking on repair status of the vehicle"
	rows := seedRows(3, "a1", "Alice", jan1+60)
	rows[1].CallSummaryTitle = &title

	app := fiber.New()
	h := NewCategoryHandler(&fakeStore{rows: rows}, testConfig(), testLog())
	app.Get("/api/categories/details", h.Details)

	status, env := doRequest(t, app, "/api/categories/details?category=Repair+Status+%26+Shop+Updates")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, env.Error)
	}

	var data struct {
		Category      string                        `json:"category"`
		TotalTitles   int                           `json:"totalTitles"`
		Conversations []models.CategoryConversation `json:"conversations"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if data.TotalTitles != 1 || len(data.Conversations) != 1 {
		t.Fatalf("data = %+v, want the single repair-status conversation", data)
	}
	if data.Conversations[0].CallSummaryTitle != title {
		t.Errorf("title = %q, want %q", data.Conversations[0].CallSummaryTitle, title)
	}
}

func TestTrendsDaily(t *testing.T) {
	rows := seedRows(2, "a1", "Alice", jan1+3600)

	app := fiber.New()
	h := NewTrendHandler(&fakeStore{rows: rows}, testConfig(), testLog())
	app.Get("/api/trends", h.Daily)

	status, env := doRequest(t, app, "/api/trends?start_date=2025-01-01&end_date=2025-01-03")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, env.Error)
	}

	var data struct {
		DailyMetrics []models.DailyMetric `json:"dailyMetrics"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(data.DailyMetrics) != 3 {
		t.Fatalf("got %d days, want 3 zero-filled", len(data.DailyMetrics))
	}
	if data.DailyMetrics[0].ConversationCount != 2 {
		t.Errorf("day 1 count = %d, want 2", data.DailyMetrics[0].ConversationCount)
	}
	if data.DailyMetrics[2].ConversationCount != 0 {
		t.Errorf("day 3 count = %d, want 0", data.DailyMetrics[2].ConversationCount)
	}
}

func TestConversationsListPagination(t *testing.T) {
	store := &fakeStore{rows: seedRows(7, "a1", "Alice", jan1+60)}

	app := fiber.New()
	h := NewConversationHandler(store, testConfig(), testLog())
	app.Get("/api/conversations", h.List)

	status, env := doRequest(t, app, "/api/conversations?start_date=2025-01-01&end_date=2025-01-01&agent_id=a1&page=1&limit=5")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, env.Error)
	}

	var data struct {
		Conversations []models.Conversation `json:"conversations"`
		Pagination    models.PaginationInfo `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(data.Conversations) != 5 {
		t.Fatalf("page 1 has %d rows, want 5", len(data.Conversations))
	}
	// Newest first.
	if data.Conversations[0].StartTimeUnixSecs < data.Conversations[4].StartTimeUnixSecs {
		t.Error("conversations not sorted newest first")
	}
	if !data.Pagination.HasMore || data.Pagination.Total != 7 {
		t.Errorf("pagination = %+v, want total 7 with more pages", data.Pagination)
	}

	// Last page.
	status, env = doRequest(t, app, "/api/conversations?start_date=2025-01-01&end_date=2025-01-01&agent_id=a1&page=2&limit=5")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, env.Error)
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(data.Conversations) != 2 || data.Pagination.HasMore {
		t.Errorf("page 2 = %d rows hasMore=%v, want 2 rows and no more", len(data.Conversations), data.Pagination.HasMore)
	}
}

func TestConversationsListRequiresAgent(t *testing.T) {
	app := fiber.New()
	h := NewConversationHandler(&fakeStore{}, testConfig(), testLog())
	app.Get("/api/conversations", h.List)

	status, _ := doRequest(t, app, "/api/conversations?start_date=2025-01-01&end_date=2025-01-01")
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(&fakeStore{}, testLog())
	app.Get("/api/health", h.Check)

	status, env := doRequest(t, app, "/api/health")
	if status != fiber.StatusOK || env.Status != "ok" {
		t.Fatalf("healthy store: status = %d/%s, want 200/ok", status, env.Status)
	}

	app = fiber.New()
	h = NewHealthHandler(&fakeStore{pingErr: errors.New("down")}, testLog())
	app.Get("/api/health", h.Check)

	status, env = doRequest(t, app, "/api/health")
	if status != fiber.StatusInternalServerError || env.Status != "error" {
		t.Fatalf("down store: status = %d/%s, want 500/error", status, env.Status)
	}
}

func TestExportMetricsReturnsWorkbook(t *testing.T) {
	store := &fakeStore{rows: seedRows(2, "a1", "Alice", jan1+60)}

	app := fiber.New()
	h := NewExportHandler(store, testConfig(), testLog())
	app.Get("/api/export/metrics", h.Metrics)

	req := httptest.NewRequest(http.MethodGet, "/api/export/metrics?start_date=2025-01-01&end_date=2025-01-01", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type = %q, want %q", ct, xlsxContentType)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd == "" {
		t.Error("missing Content-Disposition header")
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Error("empty workbook body")
	}
}
