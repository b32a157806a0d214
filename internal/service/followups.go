package service

import (
	"context"

	"jobtracker/internal/models"
	"jobtracker/internal/tracker"
)

func (s *Service) ListFollowUps(ctx context.Context, actor *models.User, applicationID int64) ([]models.FollowUpItem, error) {
	if _, err := s.Get(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return s.store.ListFollowUps(ctx, applicationID)
}

func (s *Service) CreateFollowUp(ctx context.Context, actor *models.User, applicationID int64, dueOn, note string) (*models.FollowUpItem, error) {
	detail, err := s.Get(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	f, err := tracker.NewFollowUp(applicationID, dueOn, note, s.Now())
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateFollowUp(ctx, f); err != nil {
		return nil, err
	}

	return &models.FollowUpItem{
		FollowUp: *f,
		OwnerID:  detail.Application.OwnerID,
		Company:  detail.Job.Company,
		Title:    detail.Job.Title,
	}, nil
}

// UpdateFollowUp applies a partial update to a follow-up item. The parent
// application's own follow-up is left alone.
func (s *Service) UpdateFollowUp(ctx context.Context, actor *models.User, id int64, u tracker.FollowUpUpdate) (*models.FollowUpItem, error) {
	item, err := s.store.GetFollowUp(ctx, scopeOf(actor), id)
	if err != nil {
		return nil, storeErr(err)
	}

	next, err := tracker.ApplyFollowUpUpdate(item.FollowUp, u, s.Now())
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateFollowUp(ctx, next); err != nil {
		return nil, storeErr(err)
	}

	item.FollowUp = *next
	return item, nil
}

func (s *Service) DeleteFollowUp(ctx context.Context, actor *models.User, id int64) error {
	if _, err := s.store.GetFollowUp(ctx, scopeOf(actor), id); err != nil {
		return storeErr(err)
	}
	return storeErr(s.store.DeleteFollowUp(ctx, id))
}
