package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobtracker/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

var leadColumns = []string{
	"owner_id",
	"title",
	"company",
	"location",
	"work_mode",
	"source",
	"job_url",
	"jd_text",
	"notes",
	"is_scam_suspected",
	"scam_reasons",
	"is_archived",
	"archived_at",
	"discovered_at",
	"created_at",
	"updated_at",
}

func (s *Store) CreateLead(ctx context.Context, lead *models.JobLead) error {
	var id int64
	err := s.sess.
		InsertInto("job_leads").
		Columns(leadColumns...).
		Record(lead).
		Returning("id").
		LoadContext(ctx, &id)

	if err != nil {
		s.logger.Error("failed to create job lead",
			zap.String("company", lead.Company),
			zap.String("title", lead.Title),
			zap.Error(err),
		)
		return fmt.Errorf("create job lead: %w", err)
	}

	lead.ID = id

	s.logger.Debug("job lead created",
		zap.Int64("job_id", lead.ID),
		zap.String("company", lead.Company),
	)

	return nil
}

func (s *Store) GetLead(ctx context.Context, sc Scope, leadID int64) (*models.JobLead, error) {
	var lead models.JobLead

	q := s.sess.
		Select("*").
		From("job_leads").
		Where("id = ?", leadID)

	err := scoped(q, "owner_id", sc).LoadOneContext(ctx, &lead)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		s.logger.Error("failed to get job lead",
			zap.Int64("job_id", leadID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get job lead: %w", err)
	}

	return &lead, nil
}

func (s *Store) UpdateLead(ctx context.Context, lead *models.JobLead) error {
	_, err := s.sess.
		Update("job_leads").
		Set("title", lead.Title).
		Set("company", lead.Company).
		Set("location", lead.Location).
		Set("work_mode", lead.WorkMode).
		Set("source", lead.Source).
		Set("job_url", lead.JobURL).
		Set("jd_text", lead.JDText).
		Set("notes", lead.Notes).
		Set("is_archived", lead.IsArchived).
		Set("archived_at", lead.ArchivedAt).
		Set("updated_at", lead.UpdatedAt).
		Where("id = ?", lead.ID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update job lead",
			zap.Int64("job_id", lead.ID),
			zap.Error(err),
		)
		return fmt.Errorf("update job lead: %w", err)
	}

	return nil
}

// DeleteLeadIfOrphaned removes the lead when no application references it.
func (s *Store) DeleteLeadIfOrphaned(ctx context.Context, leadID int64) (bool, error) {
	var refs int
	err := s.sess.
		Select("COUNT(*)").
		From("applications").
		Where("job_id = ?", leadID).
		LoadOneContext(ctx, &refs)

	if err != nil {
		s.logger.Error("failed to count lead applications",
			zap.Int64("job_id", leadID),
			zap.Error(err),
		)
		return false, fmt.Errorf("count lead applications: %w", err)
	}

	if refs > 0 {
		return false, nil
	}

	if _, err := s.sess.DeleteFrom("job_leads").Where("id = ?", leadID).ExecContext(ctx); err != nil {
		s.logger.Error("failed to delete job lead",
			zap.Int64("job_id", leadID),
			zap.Error(err),
		)
		return false, fmt.Errorf("delete job lead: %w", err)
	}

	return true, nil
}

// ListLeads returns leads newest first. Archived leads are listed only when
// archived is set, and then exclusively.
func (s *Store) ListLeads(ctx context.Context, sc Scope, archived bool) ([]models.JobLead, error) {
	var leads []models.JobLead

	q := s.sess.
		Select("*").
		From("job_leads").
		Where("is_archived = ?", archived).
		OrderDesc("discovered_at").
		OrderDesc("id")

	_, err := scoped(q, "owner_id", sc).LoadContext(ctx, &leads)

	if err != nil {
		s.logger.Error("failed to list job leads",
			zap.Int64("owner_id", sc.OwnerID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list job leads: %w", err)
	}

	return leads, nil
}

// LeadURLExists reports whether the owner already has a lead for jobURL.
func (s *Store) LeadURLExists(ctx context.Context, ownerID int64, jobURL string) (bool, error) {
	var count int

	err := s.sess.
		Select("COUNT(*)").
		From("job_leads").
		Where("owner_id = ? AND job_url = ?", ownerID, jobURL).
		LoadOneContext(ctx, &count)

	if err != nil {
		s.logger.Error("failed to check job lead url",
			zap.Int64("owner_id", ownerID),
			zap.String("job_url", jobURL),
			zap.Error(err),
		)
		return false, fmt.Errorf("lead url exists: %w", err)
	}

	return count > 0, nil
}

// SetLeadOwner claims an unowned lead.
func (s *Store) SetLeadOwner(ctx context.Context, leadID, ownerID int64, now time.Time) error {
	_, err := s.sess.
		Update("job_leads").
		Set("owner_id", ownerID).
		Set("updated_at", now).
		Where("id = ? AND owner_id IS NULL", leadID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set job lead owner",
			zap.Int64("job_id", leadID),
			zap.Int64("owner_id", ownerID),
			zap.Error(err),
		)
		return fmt.Errorf("set job lead owner: %w", err)
	}

	return nil
}
