package sqlstore

import (
	"context"
	"fmt"
	"time"

	"jobtracker/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

var applicationColumns = []string{
	"job_id",
	"owner_id",
	"status",
	"next_action",
	"follow_up_at",
	"applied_at",
	"notes",
	"job_url",
	"source",
	"compensation_text",
	"location_text",
	"created_at",
	"updated_at",
}

func (s *Store) CreateApplication(ctx context.Context, app *models.Application) error {
	var id int64
	err := s.sess.
		InsertInto("applications").
		Columns(applicationColumns...).
		Record(app).
		Returning("id").
		LoadContext(ctx, &id)

	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("create application for job %d: %w", app.JobID, ErrDuplicate)
		}
		s.logger.Error("failed to create application",
			zap.Int64("job_id", app.JobID),
			zap.Int64("owner_id", app.OwnerID),
			zap.Error(err),
		)
		return fmt.Errorf("create application: %w", err)
	}

	app.ID = id

	s.logger.Info("application created",
		zap.Int64("application_id", app.ID),
		zap.Int64("owner_id", app.OwnerID),
	)

	return nil
}

func (s *Store) selectApplications() *dbr.SelectBuilder {
	return s.sess.
		Select("a.*").
		From(dbr.I("applications").As("a")).
		Join(dbr.I("job_leads").As("j"), "j.id = a.job_id")
}

// GetApplication loads an application visible in sc together with its lead.
func (s *Store) GetApplication(ctx context.Context, sc Scope, id int64) (*models.ApplicationDetail, error) {
	q := scoped(s.selectApplications().Where("a.id = ?", id), "a.owner_id", sc)

	details, err := s.loadDetails(ctx, q)
	if err != nil {
		s.logger.Error("failed to get application",
			zap.Int64("application_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get application: %w", err)
	}

	if len(details) == 0 {
		return nil, ErrNotFound
	}

	return &details[0], nil
}

func (s *Store) UpdateApplication(ctx context.Context, app *models.Application) error {
	result, err := s.sess.
		Update("applications").
		Set("status", app.Status).
		Set("next_action", app.NextAction).
		Set("follow_up_at", app.FollowUpAt).
		Set("applied_at", app.AppliedAt).
		Set("notes", app.Notes).
		Set("job_url", app.JobURL).
		Set("source", app.Source).
		Set("compensation_text", app.CompensationText).
		Set("location_text", app.LocationText).
		Set("updated_at", app.UpdatedAt).
		Where("id = ?", app.ID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update application",
			zap.Int64("application_id", app.ID),
			zap.Error(err),
		)
		return fmt.Errorf("update application: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) DeleteApplication(ctx context.Context, id int64) error {
	result, err := s.sess.
		DeleteFrom("applications").
		Where("id = ?", id).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete application",
			zap.Int64("application_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("delete application: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	s.logger.Info("application deleted", zap.Int64("application_id", id))

	return nil
}

// ListApplications returns the applications in sc matching f. now anchors
// the due filters.
func (s *Store) ListApplications(ctx context.Context, sc Scope, f models.ListFilter, now time.Time) ([]models.ApplicationDetail, error) {
	q := scoped(s.selectApplications(), "a.owner_id", sc)

	if f.Query != "" {
		p := likePattern(f.Query)
		q = q.Where(
			"(LOWER(j.company) LIKE ? ESCAPE '!' OR LOWER(j.title) LIKE ? ESCAPE '!' OR LOWER(j.location) LIKE ? ESCAPE '!')",
			p, p, p,
		)
	}

	if f.Status != "" {
		q = q.Where("a.status = ?", f.Status)
	}

	q = applyDue(q, f.Due, now)

	switch f.Sort {
	case models.SortCompany:
		q = q.OrderBy("LOWER(j.company)").OrderAsc("a.id")
	case models.SortFollowUp:
		q = q.OrderBy("a.follow_up_at IS NULL").OrderAsc("a.follow_up_at").OrderAsc("a.id")
	default:
		q = q.OrderDesc("a.updated_at").OrderDesc("a.id")
	}

	details, err := s.loadDetails(ctx, q)
	if err != nil {
		s.logger.Error("failed to list applications",
			zap.Int64("owner_id", sc.OwnerID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list applications: %w", err)
	}

	return details, nil
}

func applyDue(q *dbr.SelectBuilder, due string, now time.Time) *dbr.SelectBuilder {
	switch due {
	case models.DueOverdue:
		return q.Where("a.follow_up_at < ? AND a.status IN ?", now, models.OpenStatuses())
	case models.DueWeek:
		return q.Where("a.follow_up_at >= ? AND a.follow_up_at <= ? AND a.status IN ?",
			now, now.Add(7*24*time.Hour), models.OpenStatuses())
	case models.DueNone:
		return q.Where("a.follow_up_at IS NULL")
	}
	return q
}

type statusCount struct {
	Status models.Status `db:"status"`
	Count  int           `db:"n"`
}

// SidebarCounts summarizes the applications in sc by status and due state.
func (s *Store) SidebarCounts(ctx context.Context, sc Scope, now time.Time) (*models.SidebarCounts, error) {
	counts, err := s.StatusCounts(ctx, sc)
	if err != nil {
		return nil, err
	}
	if err := s.DueCounts(ctx, sc, now, counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// StatusCounts fills the counts that do not depend on the clock: total,
// per status and without a follow-up.
func (s *Store) StatusCounts(ctx context.Context, sc Scope) (*models.SidebarCounts, error) {
	counts := &models.SidebarCounts{Statuses: make(map[models.Status]int)}
	for _, st := range models.Statuses() {
		counts.Statuses[st] = 0
	}

	var rows []statusCount
	q := s.sess.
		Select("a.status", "COUNT(*) AS n").
		From(dbr.I("applications").As("a")).
		GroupBy("a.status")

	if _, err := scoped(q, "a.owner_id", sc).LoadContext(ctx, &rows); err != nil {
		s.logger.Error("failed to count applications",
			zap.Int64("owner_id", sc.OwnerID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("count applications: %w", err)
	}

	for _, r := range rows {
		counts.Statuses[r.Status] = r.Count
		counts.Total += r.Count
	}

	if err := s.countDue(ctx, sc, models.DueNone, time.Time{}, &counts.None); err != nil {
		return nil, err
	}

	return counts, nil
}

// DueCounts sets the overdue and due within a week counts as of now.
func (s *Store) DueCounts(ctx context.Context, sc Scope, now time.Time, counts *models.SidebarCounts) error {
	if err := s.countDue(ctx, sc, models.DueOverdue, now, &counts.Overdue); err != nil {
		return err
	}
	return s.countDue(ctx, sc, models.DueWeek, now, &counts.Due7)
}

func (s *Store) countDue(ctx context.Context, sc Scope, due string, now time.Time, dest *int) error {
	q := s.sess.Select("COUNT(*)").From(dbr.I("applications").As("a"))
	q = applyDue(scoped(q, "a.owner_id", sc), due, now)
	if err := q.LoadOneContext(ctx, dest); err != nil {
		s.logger.Error("failed to count due applications",
			zap.Int64("owner_id", sc.OwnerID),
			zap.String("due", due),
			zap.Error(err),
		)
		return fmt.Errorf("count due applications: %w", err)
	}
	return nil
}

// ApplicationsDueBetween returns the owner's applications whose follow-up
// falls in [from, to), ordered by company.
func (s *Store) ApplicationsDueBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]models.ApplicationDetail, error) {
	q := s.selectApplications().
		Where("a.owner_id = ? AND a.follow_up_at >= ? AND a.follow_up_at < ?", ownerID, from, to).
		OrderBy("LOWER(j.company)").
		OrderAsc("a.id")

	details, err := s.loadDetails(ctx, q)
	if err != nil {
		s.logger.Error("failed to list due applications",
			zap.Int64("owner_id", ownerID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("applications due between: %w", err)
	}

	return details, nil
}

// loadDetails runs q, which must select a.*, and attaches each row's lead.
func (s *Store) loadDetails(ctx context.Context, q *dbr.SelectBuilder) ([]models.ApplicationDetail, error) {
	var apps []models.Application
	if _, err := q.LoadContext(ctx, &apps); err != nil {
		return nil, err
	}

	if len(apps) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(apps))
	seen := make(map[int64]bool, len(apps))
	for _, a := range apps {
		if !seen[a.JobID] {
			seen[a.JobID] = true
			ids = append(ids, a.JobID)
		}
	}

	var leads []models.JobLead
	if _, err := s.sess.Select("*").From("job_leads").Where("id IN ?", ids).LoadContext(ctx, &leads); err != nil {
		return nil, err
	}

	byID := make(map[int64]models.JobLead, len(leads))
	for _, l := range leads {
		byID[l.ID] = l
	}

	details := make([]models.ApplicationDetail, 0, len(apps))
	for _, a := range apps {
		job, ok := byID[a.JobID]
		if !ok {
			return nil, fmt.Errorf("application %d: job lead %d missing", a.ID, a.JobID)
		}
		details = append(details, models.ApplicationDetail{Application: a, Job: job})
	}

	return details, nil
}
