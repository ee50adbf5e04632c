package forecasts

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"insightgen-backend/internal/analyses"
	"insightgen-backend/internal/llm"
	"insightgen-backend/internal/shared/metrics"
	"insightgen-backend/internal/shared/telemetry"
)

// Service generates and caches forecasts per analysis. A forecast is
// computed at most once per analysis; concurrent callers share the
// in-flight generation and failures are not cached.
type Service struct {
	Analyses *analyses.Service
	LLM      llm.Client

	mu       sync.Mutex
	cache    map[string]Forecast
	inflight map[string]*forecastCall
}

type forecastCall struct {
	done     chan struct{}
	forecast Forecast
	err      error
}

// NewService constructs a forecast service.
func NewService(analysesSvc *analyses.Service, client llm.Client) *Service {
	return &Service{
		Analyses: analysesSvc,
		LLM:      client,
		cache:    make(map[string]Forecast),
		inflight: make(map[string]*forecastCall),
	}
}

// Get returns the cached forecast for a completed analysis, generating it
// on first call.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Forecast, error) {
	analysis, err := s.Analyses.Get(ctx, userID, analysisID)
	if err != nil {
		return Forecast{}, err
	}
	if analysis.Status != analyses.StatusCompleted || analysis.Result == nil {
		return Forecast{}, analyses.ErrNotCompleted
	}

	s.mu.Lock()
	if forecast, ok := s.cache[analysisID]; ok {
		s.mu.Unlock()
		return forecast, nil
	}
	call, ok := s.inflight[analysisID]
	if !ok {
		call = &forecastCall{done: make(chan struct{})}
		s.inflight[analysisID] = call
		// Generation outlives any single waiter so a canceled caller
		// does not poison the shared result.
		go s.generate(context.Background(), analysis, call)
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return Forecast{}, ctx.Err()
	case <-call.done:
	}
	return call.forecast, call.err
}

// Evict drops the cached forecast for an analysis the user owns.
func (s *Service) Evict(ctx context.Context, userID, analysisID string) error {
	if _, err := s.Analyses.Get(ctx, userID, analysisID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, analysisID)
	s.mu.Unlock()
	return nil
}

func (s *Service) generate(ctx context.Context, analysis analyses.Analysis, call *forecastCall) {
	defer func() {
		s.mu.Lock()
		delete(s.inflight, analysis.ID)
		if call.err == nil {
			s.cache[analysis.ID] = call.forecast
		}
		s.mu.Unlock()
		close(call.done)
	}()

	prompt, err := buildPrompt(analysis)
	if err != nil {
		call.err = err
		metrics.IncForecastFailed()
		return
	}

	raw, err := s.LLM.Invoke(ctx, llm.Request{
		Prompt:             prompt,
		ResponseJSONSchema: Schema,
	})
	if err != nil {
		call.err = fmt.Errorf("forecast generate: %w", err)
		metrics.IncForecastFailed()
		telemetry.Warn("forecast.failed", map[string]any{
			"analysis_id": analysis.ID,
			"error":       err.Error(),
		})
		return
	}

	forecast, err := ParseForecast(raw)
	if err != nil {
		call.err = err
		metrics.IncForecastFailed()
		return
	}
	call.forecast = forecast
	metrics.IncForecastGenerated()
}

func buildPrompt(analysis analyses.Analysis) (string, error) {
	result := analysis.Result
	keyInsights, err := json.MarshalIndent(result.KeyInsights, "", "  ")
	if err != nil {
		return "", fmt.Errorf("forecast prompt: %w", err)
	}
	recommendations, err := json.MarshalIndent(result.Recommendations, "", "  ")
	if err != nil {
		return "", fmt.Errorf("forecast prompt: %w", err)
	}
	metricsJSON, err := json.MarshalIndent(result.Metrics, "", "  ")
	if err != nil {
		return "", fmt.Errorf("forecast prompt: %w", err)
	}
	return llm.BuildForecastPrompt(llm.ForecastPromptInput{
		Title:               analysis.Title,
		DataType:            analysis.DataType,
		Summary:             result.Summary,
		KeyInsightsJSON:     string(keyInsights),
		RecommendationsJSON: string(recommendations),
		MetricsJSON:         string(metricsJSON),
		Anomalies:           result.Anomalies,
	}), nil
}
