package service

import (
	"context"
	"errors"

	"jobtracker/internal/models"
	"jobtracker/internal/storage/sqlstore"
	"jobtracker/internal/tracker"
)

// Profile returns the actor's profile, creating the default one on first
// access.
func (s *Service) Profile(ctx context.Context, actor *models.User) (*models.UserProfile, error) {
	p, err := s.store.GetProfile(ctx, actor.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sqlstore.ErrNotFound) {
		return nil, err
	}

	def := models.DefaultProfile(actor.ID)
	now := s.Now()
	def.CreatedAt, def.UpdatedAt = now, now

	if err := s.store.CreateProfile(ctx, &def); err != nil {
		if errors.Is(err, sqlstore.ErrDuplicate) {
			// created concurrently
			return s.store.GetProfile(ctx, actor.ID)
		}
		return nil, err
	}

	return &def, nil
}

// UpdateProfile validates and saves p as the actor's profile.
func (s *Service) UpdateProfile(ctx context.Context, actor *models.User, p models.UserProfile) (*models.UserProfile, error) {
	cur, err := s.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}

	p.UserID = actor.ID
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.Now()

	if err := s.check(p); err != nil {
		return nil, err
	}
	if p.SalaryExpectationMin != nil && p.SalaryExpectationMax != nil && *p.SalaryExpectationMax < *p.SalaryExpectationMin {
		return nil, tracker.FieldError("salary_expectation_max", "Must not be lower than the minimum.")
	}

	if err := s.store.UpdateProfile(ctx, &p); err != nil {
		return nil, storeErr(err)
	}

	return &p, nil
}
