package analyses

import (
	"encoding/json"
	"fmt"
)

// Result is the structured analysis produced by the model.
type Result struct {
	Summary         string           `json:"summary"`
	KeyInsights     []KeyInsight     `json:"key_insights"`
	Recommendations []Recommendation `json:"recommendations"`
	Anomalies       []string         `json:"anomalies"`
	Metrics         map[string]any   `json:"metrics"`
	SentimentScore  *float64         `json:"sentiment_score,omitempty"`
}

// KeyInsight is one observation with an impact rating.
type KeyInsight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Recommendation is one suggested action with priority and expected impact.
type Recommendation struct {
	Action         string `json:"action"`
	Priority       string `json:"priority"`
	ExpectedImpact string `json:"expected_impact"`
}

// ResultSchema is the JSON Schema the model reply must conform to.
var ResultSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"key_insights": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"description": {"type": "string"},
					"impact": {"type": "string", "enum": ["high", "medium", "low"]}
				}
			}
		},
		"recommendations": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"action": {"type": "string"},
					"priority": {"type": "string", "enum": ["high", "medium", "low"]},
					"expected_impact": {"type": "string"}
				}
			}
		},
		"anomalies": {
			"type": "array",
			"items": {"type": "string"}
		},
		"metrics": {
			"type": "object",
			"additionalProperties": true
		},
		"sentiment_score": {"type": "number"}
	}
}`)

// ParseResult decodes a validated model reply into a Result.
func ParseResult(doc string) (Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return Result{}, fmt.Errorf("llm output parse: %w", err)
	}
	if result.KeyInsights == nil {
		result.KeyInsights = []KeyInsight{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []Recommendation{}
	}
	if result.Anomalies == nil {
		result.Anomalies = []string{}
	}
	if result.Metrics == nil {
		result.Metrics = map[string]any{}
	}
	return result, nil
}
