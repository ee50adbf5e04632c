package analyses

import (
	"context"
	"time"
)

const (
	awaitPollInterval = 2 * time.Second
	awaitMaxWait      = 25 * time.Second
)

// Await blocks until the analysis leaves the processing state, the wait
// window elapses, or the request context is canceled. It returns the most
// recently observed state.
func (s *Service) Await(ctx context.Context, userID, analysisID string) (Analysis, error) {
	analysis, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if analysis.Status != StatusProcessing {
		return analysis, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, awaitMaxWait)
	defer cancel()

	ticker := time.NewTicker(awaitPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return Analysis{}, ctx.Err()
			}
			return analysis, nil
		case <-ticker.C:
			latest, err := s.Get(waitCtx, userID, analysisID)
			if err != nil {
				return Analysis{}, err
			}
			analysis = latest
			if analysis.Status != StatusProcessing {
				return analysis, nil
			}
		}
	}
}
