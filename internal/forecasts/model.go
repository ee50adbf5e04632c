package forecasts

import (
	"encoding/json"
	"fmt"
)

// Forecast is the structured predictive analysis for one completed analysis.
type Forecast struct {
	ShortTerm           TermForecast    `json:"short_term"`
	MediumTerm          TermForecast    `json:"medium_term"`
	LongTerm            TermForecast    `json:"long_term"`
	RiskFactors         []RiskFactor    `json:"risk_factors"`
	OptimizationActions []string        `json:"optimization_actions"`
	ForecastData        []ForecastPoint `json:"forecast_data"`
}

// TermForecast is one horizon's prediction.
type TermForecast struct {
	Timeframe  string `json:"timeframe"`
	Prediction string `json:"prediction"`
	Confidence string `json:"confidence"`
	Trend      string `json:"trend"`
}

// RiskFactor is one risk with severity and mitigation.
type RiskFactor struct {
	Factor     string `json:"factor"`
	Severity   string `json:"severity"`
	Mitigation string `json:"mitigation"`
}

// ForecastPoint is one point in the projected series with confidence bounds.
type ForecastPoint struct {
	Period         string  `json:"period"`
	Value          float64 `json:"value"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
}

// Schema is the JSON Schema the forecast reply must conform to.
var Schema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"short_term": {
			"type": "object",
			"properties": {
				"timeframe": {"type": "string"},
				"prediction": {"type": "string"},
				"confidence": {"type": "string", "enum": ["high", "medium", "low"]},
				"trend": {"type": "string", "enum": ["up", "down", "stable"]}
			}
		},
		"medium_term": {
			"type": "object",
			"properties": {
				"timeframe": {"type": "string"},
				"prediction": {"type": "string"},
				"confidence": {"type": "string", "enum": ["high", "medium", "low"]},
				"trend": {"type": "string", "enum": ["up", "down", "stable"]}
			}
		},
		"long_term": {
			"type": "object",
			"properties": {
				"timeframe": {"type": "string"},
				"prediction": {"type": "string"},
				"confidence": {"type": "string", "enum": ["high", "medium", "low"]},
				"trend": {"type": "string", "enum": ["up", "down", "stable"]}
			}
		},
		"risk_factors": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"factor": {"type": "string"},
					"severity": {"type": "string", "enum": ["high", "medium", "low"]},
					"mitigation": {"type": "string"}
				}
			}
		},
		"optimization_actions": {
			"type": "array",
			"items": {"type": "string"}
		},
		"forecast_data": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"period": {"type": "string"},
					"value": {"type": "number"},
					"confidence_low": {"type": "number"},
					"confidence_high": {"type": "number"}
				}
			}
		}
	}
}`)

// ParseForecast decodes a validated model reply.
func ParseForecast(doc string) (Forecast, error) {
	var forecast Forecast
	if err := json.Unmarshal([]byte(doc), &forecast); err != nil {
		return Forecast{}, fmt.Errorf("forecast parse: %w", err)
	}
	if forecast.RiskFactors == nil {
		forecast.RiskFactors = []RiskFactor{}
	}
	if forecast.OptimizationActions == nil {
		forecast.OptimizationActions = []string{}
	}
	if forecast.ForecastData == nil {
		forecast.ForecastData = []ForecastPoint{}
	}
	return forecast, nil
}
