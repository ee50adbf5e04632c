package datasources

import (
	"context"
	"time"
)

// Repo persists data sources.
type Repo interface {
	Create(ctx context.Context, source DataSource) error
	GetByID(ctx context.Context, sourceID string) (DataSource, error)
	ListByUser(ctx context.Context, userID string) ([]DataSource, error)
	MarkSynced(ctx context.Context, sourceID string, syncedAt time.Time) error
	Delete(ctx context.Context, sourceID string) error
}
