package llm

import (
	"fmt"
	"strings"
)

// maxPromptDataChars bounds how much raw file data is embedded into the
// analysis prompt.
const maxPromptDataChars = 50000

// TruncateForPrompt caps raw data at the prompt embedding limit.
func TruncateForPrompt(data string) string {
	runes := []rune(data)
	if len(runes) <= maxPromptDataChars {
		return data
	}
	return string(runes[:maxPromptDataChars])
}

// BuildAnalysisPrompt embeds combined file data into the analysis prompt.
func BuildAnalysisPrompt(combinedData string) string {
	return fmt.Sprintf(`You are an expert business analyst powered by Claude 3.5. Analyze the following business data and provide comprehensive insights.

DATA:
%s

Provide your analysis in the following structure:
1. Executive Summary (2-3 sentences)
2. Key Insights (3-5 bullet points with impact assessment)
3. Detected Patterns & Anomalies
4. Sentiment Analysis (if applicable)
5. Actionable Recommendations (3-5 items with priority and expected impact)
6. Key Metrics (extract any numerical data points)

Be specific, data-driven, and actionable. Focus on business impact.`, TruncateForPrompt(combinedData))
}

// ForecastPromptInput carries the completed analysis fields the forecast
// prompt is built from. The JSON fields are pre-marshaled by the caller.
type ForecastPromptInput struct {
	Title               string
	DataType            string
	Summary             string
	KeyInsightsJSON     string
	RecommendationsJSON string
	MetricsJSON         string
	Anomalies           []string
}

// BuildForecastPrompt embeds a completed analysis into the forecasting prompt.
func BuildForecastPrompt(in ForecastPromptInput) string {
	anomalies := strings.Join(in.Anomalies, ", ")
	if anomalies == "" {
		anomalies = "None"
	}
	return fmt.Sprintf(`You are an expert data scientist and business forecaster. Based on the following business analysis, generate predictive insights and forecasts.

CURRENT ANALYSIS:
Title: %s
Data Type: %s
Summary: %s
Key Insights: %s
Recommendations: %s
Metrics: %s
Anomalies: %s

Generate a predictive analysis including:
1. Short-term forecast (next 1-3 months)
2. Medium-term forecast (3-6 months)
3. Long-term forecast (6-12 months)
4. Key risk factors that could impact predictions
5. Confidence levels for each prediction
6. Recommended actions to optimize future outcomes

Be specific, data-driven, and provide actionable predictions. Include both optimistic and realistic scenarios.`,
		in.Title, in.DataType, in.Summary, in.KeyInsightsJSON, in.RecommendationsJSON, in.MetricsJSON, anomalies)
}

// BuildChatPrompt embeds analysis context and a user question into the chat prompt.
func BuildChatPrompt(contextJSON, question string) string {
	return fmt.Sprintf(`You are an expert business analyst assistant helping a user understand their data analysis.

ANALYSIS CONTEXT:
%s

USER QUESTION: %s

Provide a helpful, concise, and actionable response. Be conversational but professional. If the question relates to specific insights or recommendations from the analysis, reference them directly. If asked about trends or patterns, provide data-driven explanations.`, contextJSON, question)
}
