package analyses

import (
	"testing"
	"time"
)

func completedAnalysis() Analysis {
	score := 0.72
	return Analysis{
		ID:       "a-1",
		UserID:   "u",
		Title:    "Q4 Sales",
		DataType: "customer_feedback",
		Status:   StatusCompleted,
		Result: &Result{
			Summary: "Strong quarter.",
			KeyInsights: []KeyInsight{
				{Title: "Enterprise segment accelerating fast", Impact: "high"},
				{Title: "SMB churn", Impact: "medium"},
				{Title: "Flat support volume", Impact: "low"},
			},
			Recommendations: []Recommendation{{Action: "Hire", Priority: "high", ExpectedImpact: "Growth"}},
			Anomalies:       []string{"December spike"},
			Metrics:         map[string]any{"total_revenue": float64(1250000), "growth_rate": 0.12},
			SentimentScore:  &score,
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestBuildViewChartWeights(t *testing.T) {
	view, err := BuildView(completedAnalysis())
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	if len(view.InsightChart) != 3 {
		t.Fatalf("expected 3 chart points, got %d", len(view.InsightChart))
	}
	weights := []int{view.InsightChart[0].Impact, view.InsightChart[1].Impact, view.InsightChart[2].Impact}
	if weights[0] != 3 || weights[1] != 2 || weights[2] != 1 {
		t.Fatalf("unexpected impact weights: %v", weights)
	}
	if view.InsightChart[0].Name != "Enterprise segment a..." {
		t.Fatalf("title not truncated to 20 chars: %q", view.InsightChart[0].Name)
	}
}

func TestBuildViewMetricsAndLabels(t *testing.T) {
	view, err := BuildView(completedAnalysis())
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	if view.DataTypeLabel != "CUSTOMER FEEDBACK" {
		t.Fatalf("unexpected data type label: %q", view.DataTypeLabel)
	}
	if len(view.Metrics) != 2 {
		t.Fatalf("expected 2 metric pairs, got %d", len(view.Metrics))
	}
	// Keys are sorted, so growth_rate comes first.
	if view.Metrics[0].Label != "GROWTH RATE" || view.Metrics[0].Value != "0.12" {
		t.Fatalf("unexpected first metric: %+v", view.Metrics[0])
	}
	if view.Metrics[1].Label != "TOTAL REVENUE" || view.Metrics[1].Value != "1,250,000" {
		t.Fatalf("unexpected second metric: %+v", view.Metrics[1])
	}
	if view.SentimentLabel != "Very Positive" {
		t.Fatalf("unexpected sentiment label: %q", view.SentimentLabel)
	}
}

func TestBuildViewRejectsProcessing(t *testing.T) {
	analysis := completedAnalysis()
	analysis.Status = StatusProcessing
	analysis.Result = nil
	if _, err := BuildView(analysis); err == nil {
		t.Fatal("expected ErrNotCompleted")
	}
}

func TestSentimentLabels(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.9, "Very Positive"},
		{0.65, "Positive"},
		{0.55, "Somewhat Positive"},
		{0.45, "Neutral"},
		{0.35, "Somewhat Negative"},
		{0.1, "Negative"},
	}
	for _, tc := range cases {
		if got := SentimentLabel(tc.score); got != tc.want {
			t.Errorf("SentimentLabel(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
