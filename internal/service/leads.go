package service

import (
	"context"

	"jobtracker/internal/models"
	"jobtracker/internal/storage/sqlstore"

	"go.uber.org/zap"
)

func (s *Service) ListLeads(ctx context.Context, actor *models.User, archived bool) ([]models.JobLead, error) {
	return s.store.ListLeads(ctx, scopeOf(actor), archived)
}

// ConvertLead starts a wishlist application for a lead. The application
// belongs to the lead's owner; unowned leads are claimed by actor.
func (s *Service) ConvertLead(ctx context.Context, actor *models.User, leadID int64) (*ApplicationResult, error) {
	now := s.Now()
	var result *ApplicationResult

	err := s.store.WithTx(ctx, func(tx *sqlstore.Store) error {
		lead, err := tx.GetLead(ctx, scopeOf(actor), leadID)
		if err != nil {
			return storeErr(err)
		}

		if lead.OwnerID == nil {
			ownerID := actor.ID
			lead.OwnerID = &ownerID
			lead.UpdatedAt = now
			if err := tx.SetLeadOwner(ctx, lead.ID, ownerID, now); err != nil {
				return err
			}
		}

		app := models.Application{
			JobID:        lead.ID,
			OwnerID:      *lead.OwnerID,
			Status:       models.StatusWishlist,
			JobURL:       lead.JobURL,
			LocationText: lead.Location,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := tx.CreateApplication(ctx, &app); err != nil {
			return storeErr(err)
		}

		result = &ApplicationResult{
			ApplicationDetail: models.ApplicationDetail{Application: app, Job: *lead},
			SavedAt:           now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCounts(ctx, result.Application.OwnerID)

	s.logger.Info("lead converted",
		zap.Int64("job_id", leadID),
		zap.Int64("application_id", result.Application.ID),
	)

	return result, nil
}

// ArchiveLead hides a lead from the active list. Archiving twice keeps the
// first timestamp.
func (s *Service) ArchiveLead(ctx context.Context, actor *models.User, leadID int64) (*models.JobLead, error) {
	lead, err := s.store.GetLead(ctx, scopeOf(actor), leadID)
	if err != nil {
		return nil, storeErr(err)
	}

	if lead.IsArchived {
		return lead, nil
	}

	now := s.Now()
	lead.IsArchived = true
	lead.ArchivedAt = &now
	lead.UpdatedAt = now

	if err := s.store.UpdateLead(ctx, lead); err != nil {
		return nil, err
	}

	return lead, nil
}
