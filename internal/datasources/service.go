package datasources

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"insightgen-backend/internal/queue"
	"insightgen-backend/internal/shared/metrics"
	"insightgen-backend/internal/shared/telemetry"
)

// CreateInput carries the fields of a create request.
type CreateInput struct {
	Name          string
	SourceType    string
	ConnectionURL string
	SyncFrequency string
	AutoAnalyze   bool
}

// Service implements the data source registry operations.
type Service struct {
	Repo  Repo
	Queue queue.Client
}

// Create validates and registers a new data source. New sources start
// inactive until their first sync.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (DataSource, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return DataSource{}, ValidationError{Field: "name", Issue: "must not be empty"}
	}
	if !ValidSourceType(in.SourceType) {
		return DataSource{}, ValidationError{Field: "sourceType", Issue: "unknown source type"}
	}
	connectionURL := strings.TrimSpace(in.ConnectionURL)
	if connectionURL == "" && in.SourceType != TypeManualUpload {
		return DataSource{}, ValidationError{Field: "connectionUrl", Issue: "required for this source type"}
	}
	frequency := in.SyncFrequency
	if frequency == "" {
		frequency = FrequencyManual
	}
	if !ValidSyncFrequency(frequency) {
		return DataSource{}, ValidationError{Field: "syncFrequency", Issue: "unknown sync frequency"}
	}

	source := DataSource{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		SourceType:    in.SourceType,
		ConnectionURL: connectionURL,
		SyncFrequency: frequency,
		AutoAnalyze:   in.AutoAnalyze,
		Status:        StatusInactive,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, source); err != nil {
		return DataSource{}, err
	}
	return s.get(ctx, userID, source.ID)
}

// List returns the user's registered data sources, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]DataSource, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Sync records a completed sync: last_synced is set to now and the source
// becomes active. No data is fetched here; connected feeds deliver their
// rows through the upload path.
func (s *Service) Sync(ctx context.Context, userID, sourceID string) (DataSource, error) {
	source, err := s.get(ctx, userID, sourceID)
	if err != nil {
		return DataSource{}, err
	}
	if err := s.Repo.MarkSynced(ctx, sourceID, time.Now().UTC()); err != nil {
		return DataSource{}, err
	}
	metrics.IncDataSourceSynced()

	if source.AutoAnalyze && s.Queue != nil {
		msg := queue.Message{
			Kind:         queue.KindDataSourceSync,
			DataSourceID: sourceID,
			EnqueuedAt:   time.Now().UTC(),
			Version:      queue.MessageVersion,
		}
		if err := s.Queue.Enqueue(ctx, msg); err != nil {
			telemetry.Warn("datasource.notify_failed", map[string]any{
				"data_source_id": sourceID,
				"error":          err.Error(),
			})
		}
	}

	return s.get(ctx, userID, sourceID)
}

// Delete removes a data source owned by the user.
func (s *Service) Delete(ctx context.Context, userID, sourceID string) error {
	if _, err := s.get(ctx, userID, sourceID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, sourceID)
}

func (s *Service) get(ctx context.Context, userID, sourceID string) (DataSource, error) {
	source, err := s.Repo.GetByID(ctx, sourceID)
	if err != nil {
		return DataSource{}, err
	}
	if source.UserID != userID {
		return DataSource{}, ErrNotFound
	}
	return source, nil
}
