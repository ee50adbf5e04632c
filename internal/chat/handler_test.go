package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"insightgen-backend/internal/shared/server/middleware"
)

func setupChatRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Auth())
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func doChat(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Guest-Id", "test-guest")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoints(t *testing.T) {
	client := &scriptedLLM{responses: []string{"Enterprise renewals drove the growth."}}
	svc, id := newTestService(t, client, "guest:test-guest")
	router := setupChatRouter(t, svc)

	rec := doChat(t, router, http.MethodGet, "/api/v1/analyses/"+id+"/chat", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("transcript status = %d, body %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Role != RoleAssistant {
		t.Fatalf("expected seeded greeting, got %+v", payload.Messages)
	}

	rec = doChat(t, router, http.MethodPost, "/api/v1/analyses/"+id+"/chat", `{"message":"What drove growth?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("send status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode send: %v", err)
	}
	if len(payload.Messages) != 3 {
		t.Fatalf("expected 3 messages after send, got %d", len(payload.Messages))
	}

	rec = doChat(t, router, http.MethodPost, "/api/v1/analyses/"+id+"/chat", `{"message":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty message status = %d", rec.Code)
	}

	rec = doChat(t, router, http.MethodGet, "/api/v1/analyses/unknown/chat", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown analysis status = %d", rec.Code)
	}
}
