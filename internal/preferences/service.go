package preferences

import (
	"context"
	"errors"
)

// ErrInvalidDigestDay rejects saves with an unknown weekday.
var ErrInvalidDigestDay = errors.New("digest day must be a lowercase weekday name")

// Service reads and saves preference documents.
type Service struct {
	Repo Repo
}

// Get returns the user's stored preferences, or the defaults when the user
// has never saved.
func (s *Service) Get(ctx context.Context, userID string) (Preferences, error) {
	prefs, err := s.Repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Default(userID), nil
	}
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// Save overwrites the user's preferences wholesale.
func (s *Service) Save(ctx context.Context, userID string, prefs Preferences) (Preferences, error) {
	if !ValidDigestDay(prefs.DigestDay) {
		return Preferences{}, ErrInvalidDigestDay
	}
	prefs.UserID = userID
	if err := s.Repo.Put(ctx, prefs); err != nil {
		return Preferences{}, err
	}
	return s.Repo.Get(ctx, userID)
}
