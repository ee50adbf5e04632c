package forecasts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"insightgen-backend/internal/analyses"
	"insightgen-backend/internal/llm"
)

const sampleForecast = `{
	"short_term": {"timeframe": "1-3 months", "prediction": "Revenue grows 5%", "confidence": "high", "trend": "up"},
	"medium_term": {"timeframe": "3-6 months", "prediction": "Growth moderates", "confidence": "medium", "trend": "stable"},
	"long_term": {"timeframe": "6-12 months", "prediction": "Expansion resumes", "confidence": "low", "trend": "up"},
	"risk_factors": [{"factor": "SMB churn", "severity": "medium", "mitigation": "Retention program"}],
	"optimization_actions": ["Expand enterprise sales"],
	"forecast_data": [{"period": "2026-04", "value": 430000, "confidence_low": 410000, "confidence_high": 450000}]
}`

type scriptedLLM struct {
	mu        sync.Mutex
	calls     int
	responses []string
	errs      []error
	delay     time.Duration
}

func (s *scriptedLLM) Invoke(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return sampleForecast, nil
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func seedCompleted(t *testing.T, repo *analyses.MemoryRepo, userID, analysisID string) {
	t.Helper()
	score := 0.7
	now := time.Now().UTC()
	err := repo.Create(context.Background(), analyses.Analysis{
		ID: analysisID, UserID: userID, Title: "Q4 Sales", DataType: "sales",
		Status: analyses.StatusCompleted,
		Result: &analyses.Result{
			Summary:         "Strong quarter.",
			KeyInsights:     []analyses.KeyInsight{{Title: "Growth", Impact: "high"}},
			Recommendations: []analyses.Recommendation{},
			Anomalies:       []string{},
			Metrics:         map[string]any{"total_revenue": 1250000},
			SentimentScore:  &score,
		},
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func newForecastService(t *testing.T, client llm.Client) (*Service, *analyses.MemoryRepo) {
	t.Helper()
	repo := analyses.NewMemoryRepo()
	analysesSvc := &analyses.Service{Repo: repo}
	return NewService(analysesSvc, client), repo
}

func TestGetGeneratesOnceAndCaches(t *testing.T) {
	client := &scriptedLLM{}
	svc, repo := newForecastService(t, client)
	seedCompleted(t, repo, "u", "a-1")

	first, err := svc.Get(context.Background(), "u", "a-1")
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if first.ShortTerm.Trend != "up" {
		t.Fatalf("unexpected forecast: %+v", first.ShortTerm)
	}

	second, err := svc.Get(context.Background(), "u", "a-1")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if second.ShortTerm.Prediction != first.ShortTerm.Prediction {
		t.Fatal("cache returned different forecast")
	}
	if client.callCount() != 1 {
		t.Fatalf("expected exactly one LLM call, got %d", client.callCount())
	}
}

func TestConcurrentGetsShareOneCall(t *testing.T) {
	client := &scriptedLLM{delay: 50 * time.Millisecond}
	svc, repo := newForecastService(t, client)
	seedCompleted(t, repo, "u", "a-1")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Get(context.Background(), "u", "a-1"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()
	if client.callCount() != 1 {
		t.Fatalf("expected one shared call, got %d", client.callCount())
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	client := &scriptedLLM{errs: []error{errors.New("overloaded")}}
	svc, repo := newForecastService(t, client)
	seedCompleted(t, repo, "u", "a-1")

	if _, err := svc.Get(context.Background(), "u", "a-1"); err == nil {
		t.Fatal("expected first call to fail")
	}
	forecast, err := svc.Get(context.Background(), "u", "a-1")
	if err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if forecast.ShortTerm.Trend != "up" {
		t.Fatalf("unexpected forecast after retry: %+v", forecast)
	}
	if client.callCount() != 2 {
		t.Fatalf("expected retry to hit the model, got %d calls", client.callCount())
	}
}

func TestEvictForcesRegeneration(t *testing.T) {
	client := &scriptedLLM{}
	svc, repo := newForecastService(t, client)
	seedCompleted(t, repo, "u", "a-1")

	if _, err := svc.Get(context.Background(), "u", "a-1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := svc.Evict(context.Background(), "u", "a-1"); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if _, err := svc.Get(context.Background(), "u", "a-1"); err != nil {
		t.Fatalf("Get after evict: %v", err)
	}
	if client.callCount() != 2 {
		t.Fatalf("expected regeneration after evict, got %d calls", client.callCount())
	}
}

func TestGetRequiresCompletedAnalysis(t *testing.T) {
	client := &scriptedLLM{}
	svc, repo := newForecastService(t, client)
	now := time.Now().UTC()
	if err := repo.Create(context.Background(), analyses.Analysis{
		ID: "a-2", UserID: "u", Title: "T", DataType: "sales",
		Status: analyses.StatusProcessing, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Get(context.Background(), "u", "a-2"); !errors.Is(err, analyses.ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
	if client.callCount() != 0 {
		t.Fatal("LLM should not be called for incomplete analyses")
	}
}
