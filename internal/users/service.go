package users

import (
	"context"
	"time"
)

// Service manages account records.
type Service struct {
	Repo Repo
}

// UpsertFromProfile records the signed-in profile, creating the account on
// first login.
func (s *Service) UpsertFromProfile(ctx context.Context, id, email, name, picture string) (User, error) {
	now := time.Now().UTC()
	user := User{
		ID:        id,
		Email:     email,
		Name:      name,
		Picture:   picture,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Upsert(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, id)
}
