package analyses

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// View is the render-ready projection of a completed analysis.
type View struct {
	AnalysisID      string           `json:"analysisId"`
	Title           string           `json:"title"`
	DataTypeLabel   string           `json:"dataTypeLabel"`
	Status          string           `json:"status"`
	Summary         string           `json:"summary"`
	InsightChart    []InsightPoint   `json:"insightChart"`
	KeyInsights     []KeyInsight     `json:"keyInsights"`
	Recommendations []Recommendation `json:"recommendations"`
	Anomalies       []string         `json:"anomalies"`
	Metrics         []MetricPair     `json:"metrics"`
	SentimentScore  *float64         `json:"sentimentScore,omitempty"`
	SentimentLabel  string           `json:"sentimentLabel,omitempty"`
	FileNames       []string         `json:"fileNames"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// InsightPoint is one bar in the insight impact chart.
type InsightPoint struct {
	Name   string `json:"name"`
	Impact int    `json:"impact"`
}

// MetricPair is one label/value cell in the metrics grid.
type MetricPair struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BuildView projects a completed analysis into its view model.
func BuildView(analysis Analysis) (View, error) {
	if analysis.Status != StatusCompleted || analysis.Result == nil {
		return View{}, ErrNotCompleted
	}
	result := *analysis.Result

	chart := make([]InsightPoint, 0, len(result.KeyInsights))
	for _, insight := range result.KeyInsights {
		chart = append(chart, InsightPoint{
			Name:   chartName(insight.Title),
			Impact: impactWeight(insight.Impact),
		})
	}

	view := View{
		AnalysisID:      analysis.ID,
		Title:           analysis.Title,
		DataTypeLabel:   dataTypeLabel(analysis.DataType),
		Status:          analysis.Status,
		Summary:         result.Summary,
		InsightChart:    chart,
		KeyInsights:     result.KeyInsights,
		Recommendations: result.Recommendations,
		Anomalies:       result.Anomalies,
		Metrics:         metricPairs(result.Metrics),
		SentimentScore:  result.SentimentScore,
		FileNames:       analysis.FileNames,
		CreatedAt:       analysis.CreatedAt,
	}
	if result.SentimentScore != nil {
		view.SentimentLabel = SentimentLabel(*result.SentimentScore)
	}
	return view, nil
}

func chartName(title string) string {
	runes := []rune(title)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	return string(runes) + "..."
}

func impactWeight(impact string) int {
	switch impact {
	case "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

func dataTypeLabel(dataType string) string {
	return strings.ToUpper(strings.ReplaceAll(dataType, "_", " "))
}

// SentimentLabel maps a 0..1 score to its display label.
func SentimentLabel(score float64) string {
	switch {
	case score >= 0.7:
		return "Very Positive"
	case score >= 0.6:
		return "Positive"
	case score >= 0.5:
		return "Somewhat Positive"
	case score >= 0.4:
		return "Neutral"
	case score >= 0.3:
		return "Somewhat Negative"
	default:
		return "Negative"
	}
}

func metricPairs(metrics map[string]any) []MetricPair {
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]MetricPair, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, MetricPair{
			Label: strings.ToUpper(strings.ReplaceAll(key, "_", " ")),
			Value: formatMetricValue(metrics[key]),
		})
	}
	return pairs
}

func formatMetricValue(value any) string {
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) {
			return groupThousands(int64(v))
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return groupThousands(int64(v))
	case int64:
		return groupThousands(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	if len(s) <= 3 {
		if negative {
			return "-" + s
		}
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}
