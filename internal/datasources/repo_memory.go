package datasources

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for local development and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]DataSource
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]DataSource)}
}

func (r *MemoryRepo) Create(ctx context.Context, source DataSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[source.ID] = source
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, sourceID string) (DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.byID[sourceID]
	if !ok {
		return DataSource{}, ErrNotFound
	}
	return source, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := []DataSource{}
	for _, source := range r.byID {
		if source.UserID == userID {
			sources = append(sources, source)
		}
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.After(sources[j].CreatedAt)
	})
	return sources, nil
}

func (r *MemoryRepo) MarkSynced(ctx context.Context, sourceID string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	source, ok := r.byID[sourceID]
	if !ok {
		return ErrNotFound
	}
	source.Status = StatusActive
	source.LastSyncedAt = &syncedAt
	r.byID[sourceID] = source
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, sourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[sourceID]; !ok {
		return ErrNotFound
	}
	delete(r.byID, sourceID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
