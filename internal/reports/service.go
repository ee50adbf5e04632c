// Package reports aggregates analyses into the overview report.
package reports

import (
	"context"

	"insightgen-backend/internal/analyses"
)

// sentimentScanWindow caps how many recent analyses feed the overview.
const sentimentScanWindow = 50

// sentimentSeriesLen is the number of scored analyses in the trend series.
const sentimentSeriesLen = 10

// Trend labels.
const (
	TrendImproving = "Improving"
	TrendDeclining = "Declining"
	TrendStable    = "Stable"
)

// SeriesPoint is one entry in the sentiment time series.
type SeriesPoint struct {
	AnalysisID string  `json:"analysisId"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	CreatedAt  string  `json:"createdAt"`
}

// SentimentTrend summarizes recent sentiment movement.
type SentimentTrend struct {
	Series           []SeriesPoint `json:"series"`
	AverageSentiment float64       `json:"averageSentiment"`
	LatestSentiment  float64       `json:"latestSentiment"`
	SentimentChange  float64       `json:"sentimentChange"`
	Trend            string        `json:"trend"`
}

// Overview is the reports overview document.
type Overview struct {
	TotalAnalyses     int             `json:"totalAnalyses"`
	CompletedAnalyses int             `json:"completedAnalyses"`
	ProcessingCount   int             `json:"processingCount"`
	FailedCount       int             `json:"failedCount"`
	Sentiment         *SentimentTrend `json:"sentiment,omitempty"`
}

// Service builds overview reports from the analysis history.
type Service struct {
	Analyses *analyses.Service
}

// Overview aggregates the user's recent analyses: status totals plus the
// sentiment series built from the latest scored analyses, reversed to run
// oldest first.
func (s *Service) Overview(ctx context.Context, userID string) (Overview, error) {
	recent, err := s.Analyses.List(ctx, userID, sentimentScanWindow, 0)
	if err != nil {
		return Overview{}, err
	}

	overview := Overview{TotalAnalyses: len(recent)}
	scored := []analyses.Analysis{}
	for _, analysis := range recent {
		switch analysis.Status {
		case analyses.StatusCompleted:
			overview.CompletedAnalyses++
		case analyses.StatusProcessing:
			overview.ProcessingCount++
		case analyses.StatusFailed:
			overview.FailedCount++
		}
		if analysis.Result != nil && analysis.Result.SentimentScore != nil {
			scored = append(scored, analysis)
		}
	}
	if len(scored) == 0 {
		return overview, nil
	}

	if len(scored) > sentimentSeriesLen {
		scored = scored[:sentimentSeriesLen]
	}
	// recent is newest first, the chart runs oldest first.
	series := make([]SeriesPoint, 0, len(scored))
	for i := len(scored) - 1; i >= 0; i-- {
		analysis := scored[i]
		series = append(series, SeriesPoint{
			AnalysisID: analysis.ID,
			Title:      chartTitle(analysis.Title),
			Score:      *analysis.Result.SentimentScore,
			CreatedAt:  analysis.CreatedAt.Format("Jan 2"),
		})
	}

	sum := 0.0
	for _, point := range series {
		sum += point.Score
	}
	latest := series[len(series)-1].Score
	previous := latest
	if len(series) > 1 {
		previous = series[len(series)-2].Score
	}
	change := latest - previous

	overview.Sentiment = &SentimentTrend{
		Series:           series,
		AverageSentiment: sum / float64(len(series)),
		LatestSentiment:  latest,
		SentimentChange:  change,
		Trend:            trendLabel(change),
	}
	return overview, nil
}

func trendLabel(change float64) string {
	switch {
	case change > 0:
		return TrendImproving
	case change < 0:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func chartTitle(title string) string {
	runes := []rune(title)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	return string(runes) + "..."
}
