package preferences

import (
	"context"
	"errors"
)

// ErrNotFound means the user has never saved preferences.
var ErrNotFound = errors.New("preferences not found")

// Repo persists preference documents.
type Repo interface {
	Get(ctx context.Context, userID string) (Preferences, error)
	Put(ctx context.Context, prefs Preferences) error
}
