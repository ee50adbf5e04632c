package preferences

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo for local development and tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	byUser map[string]Preferences
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUser: make(map[string]Preferences)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefs, ok := r.byUser[userID]
	if !ok {
		return Preferences{}, ErrNotFound
	}
	return prefs, nil
}

func (r *MemoryRepo) Put(ctx context.Context, prefs Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[prefs.UserID] = prefs
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
