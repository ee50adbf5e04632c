package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/shared/server/middleware"
	"insightgen-backend/internal/shared/storage/object/local"
)

func setupAnalysisRouter(t *testing.T) (*gin.Engine, *Service, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Store: local.New(t.TempDir()), LLM: &fakeLLM{response: q4SalesResult}}
	handler := NewHandler(svc)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Auth())
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router, svc, repo
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}

func multipartSubmission(t *testing.T, title, dataType string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if title != "" {
		if err := writer.WriteField("title", title); err != nil {
			t.Fatalf("write title: %v", err)
		}
	}
	if dataType != "" {
		if err := writer.WriteField("dataType", dataType); err != nil {
			t.Fatalf("write dataType: %v", err)
		}
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestSubmitAnalysisEndpoint(t *testing.T) {
	router, _, repo := setupAnalysisRouter(t)

	body, contentType := multipartSubmission(t, "Q4 Sales", "sales", map[string]string{
		"q4.csv": "month,revenue\nOct,400000",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		AnalysisID   string `json:"analysisId"`
		Status       string `json:"status"`
		DashboardURL string `json:"dashboardUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.AnalysisID == "" || created.Status != StatusProcessing {
		t.Fatalf("unexpected response: %+v", created)
	}
	if created.DashboardURL != "/Dashboard?id="+created.AnalysisID {
		t.Fatalf("unexpected dashboard url: %q", created.DashboardURL)
	}

	waitForTerminal(t, repo, created.AnalysisID)
}

func TestSubmitAnalysisRejectsMissingTitle(t *testing.T) {
	router, _, _ := setupAnalysisRouter(t)

	body, contentType := multipartSubmission(t, "", "sales", map[string]string{"a.csv": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSubmitAnalysisRejectsNoFiles(t *testing.T) {
	router, _, _ := setupAnalysisRouter(t)

	body, contentType := multipartSubmission(t, "Q4 Sales", "sales", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetAnalysisPollLimit(t *testing.T) {
	router, _, repo := setupAnalysisRouter(t)

	now := time.Now().UTC()
	if err := repo.Create(context.Background(), Analysis{
		ID: "a-1", UserID: "guest:test-guest", Title: "T", DataType: "sales",
		Status: StatusProcessing, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/a-1", nil)
	addGuestHeader(req)
	router.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first poll expected 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/a-1", nil)
	addGuestHeader(req2)
	router.ServeHTTP(second, req2)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second poll expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	router, _, _ := setupAnalysisRouter(t)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/nope", nil)
	addGuestHeader(req)
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestViewAnalysisRequiresCompletion(t *testing.T) {
	router, _, repo := setupAnalysisRouter(t)

	now := time.Now().UTC()
	if err := repo.Create(context.Background(), Analysis{
		ID: "a-2", UserID: "guest:test-guest", Title: "T", DataType: "sales",
		Status: StatusProcessing, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/a-2/view", nil)
	addGuestHeader(req)
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestViewAnalysisCompleted(t *testing.T) {
	router, _, repo := setupAnalysisRouter(t)

	seed := completedAnalysis()
	seed.UserID = "guest:test-guest"
	if err := repo.Create(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+seed.ID+"/view", nil)
	addGuestHeader(req)
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var view View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.InsightChart) == 0 || !strings.HasSuffix(view.InsightChart[0].Name, "...") {
		t.Fatalf("unexpected chart: %+v", view.InsightChart)
	}
}

func TestListAnalysesNewestFirst(t *testing.T) {
	router, _, repo := setupAnalysisRouter(t)

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		if err := repo.Create(context.Background(), Analysis{
			ID: id, UserID: "guest:test-guest", Title: id, DataType: "sales",
			Status: StatusProcessing, CreatedAt: base.Add(time.Duration(i) * time.Minute), UpdatedAt: base,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses?limit=2", nil)
	addGuestHeader(req)
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload struct {
		Analyses []struct {
			ID string `json:"id"`
		} `json:"analyses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Analyses) != 2 || payload.Analyses[0].ID != "new" || payload.Analyses[1].ID != "mid" {
		t.Fatalf("unexpected ordering: %+v", payload.Analyses)
	}
}
