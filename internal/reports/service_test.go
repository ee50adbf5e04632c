package reports

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"insightgen-backend/internal/analyses"
	"insightgen-backend/internal/llm"
	"insightgen-backend/internal/shared/storage/object/local"
)

func newReportService(t *testing.T) (*Service, *analyses.MemoryRepo) {
	t.Helper()
	repo := analyses.NewMemoryRepo()
	svc := &analyses.Service{
		Repo:  repo,
		Store: local.New(t.TempDir()),
		LLM:   &llm.PlaceholderClient{},
	}
	return &Service{Analyses: svc}, repo
}

func addScored(t *testing.T, repo *analyses.MemoryRepo, userID string, idx int, score float64, createdAt time.Time) {
	t.Helper()
	id := fmt.Sprintf("an-%d", idx)
	if err := repo.Create(context.Background(), analyses.Analysis{
		ID:        id,
		UserID:    userID,
		Title:     fmt.Sprintf("Weekly report number %d", idx),
		DataType:  "sales",
		Status:    analyses.StatusProcessing,
		CreatedAt: createdAt,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	result := analyses.Result{Summary: "ok", SentimentScore: &score}
	if err := repo.Complete(context.Background(), id, result); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestOverviewEmptyHistory(t *testing.T) {
	svc, _ := newReportService(t)

	overview, err := svc.Overview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.TotalAnalyses != 0 || overview.Sentiment != nil {
		t.Fatalf("expected empty overview, got %+v", overview)
	}
}

func TestOverviewDecliningSentiment(t *testing.T) {
	svc, repo := newReportService(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Older analysis scored 0.8, newer scored 0.3.
	addScored(t, repo, "user-1", 1, 0.8, base)
	addScored(t, repo, "user-1", 2, 0.3, base.Add(24*time.Hour))

	overview, err := svc.Overview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	trend := overview.Sentiment
	if trend == nil {
		t.Fatal("expected sentiment trend")
	}
	if len(trend.Series) != 2 {
		t.Fatalf("series length = %d, want 2", len(trend.Series))
	}
	if trend.Series[0].Score != 0.8 || trend.Series[1].Score != 0.3 {
		t.Fatalf("series must run oldest first: %+v", trend.Series)
	}
	if math.Abs(trend.SentimentChange-(-0.5)) > 1e-9 {
		t.Fatalf("change = %v, want -0.5", trend.SentimentChange)
	}
	if trend.Trend != TrendDeclining {
		t.Fatalf("trend = %q, want %q", trend.Trend, TrendDeclining)
	}
	if math.Abs(trend.AverageSentiment-0.55) > 1e-9 {
		t.Fatalf("average = %v, want 0.55", trend.AverageSentiment)
	}
}

func TestOverviewSeriesCapAndTitles(t *testing.T) {
	svc, repo := newReportService(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		addScored(t, repo, "user-1", i, 0.5, base.Add(time.Duration(i)*time.Hour))
	}

	overview, err := svc.Overview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.TotalAnalyses != 12 || overview.CompletedAnalyses != 12 {
		t.Fatalf("totals wrong: %+v", overview)
	}
	trend := overview.Sentiment
	if trend == nil || len(trend.Series) != 10 {
		t.Fatalf("expected 10-point series, got %+v", trend)
	}
	// The two oldest analyses fall outside the window.
	if trend.Series[0].AnalysisID != "an-2" {
		t.Fatalf("series starts at %q, want an-2", trend.Series[0].AnalysisID)
	}
	if trend.Series[0].Title != "Weekly report number..." {
		t.Fatalf("title truncation wrong: %q", trend.Series[0].Title)
	}
	if trend.Trend != TrendStable {
		t.Fatalf("flat series trend = %q, want %q", trend.Trend, TrendStable)
	}
}

func TestOverviewCountsMixedStatuses(t *testing.T) {
	svc, repo := newReportService(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	addScored(t, repo, "user-1", 1, 0.6, base)
	if err := repo.Create(context.Background(), analyses.Analysis{
		ID: "an-p", UserID: "user-1", Title: "Pending", Status: analyses.StatusProcessing, CreatedAt: base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(context.Background(), analyses.Analysis{
		ID: "an-f", UserID: "user-1", Title: "Broken", Status: analyses.StatusProcessing, CreatedAt: base.Add(2 * time.Hour),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Fail(context.Background(), "an-f", "INTERNAL_ERROR", "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	overview, err := svc.Overview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.TotalAnalyses != 3 || overview.CompletedAnalyses != 1 ||
		overview.ProcessingCount != 1 || overview.FailedCount != 1 {
		t.Fatalf("status totals wrong: %+v", overview)
	}
	if len(overview.Sentiment.Series) != 1 {
		t.Fatalf("only scored analyses belong in the series: %+v", overview.Sentiment)
	}
}
