package sqlstore

import (
	"context"
	"fmt"
	"time"

	"jobtracker/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

type followUpRow struct {
	ID            int64       `db:"id"`
	ApplicationID int64       `db:"application_id"`
	DueOn         models.Date `db:"due_on"`
	Note          string      `db:"note"`
	IsCompleted   bool        `db:"is_completed"`
	CompletedAt   *time.Time  `db:"completed_at"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
	OwnerID       int64       `db:"owner_id"`
	Company       string      `db:"company"`
	Title         string      `db:"title"`
}

func (r followUpRow) item() models.FollowUpItem {
	return models.FollowUpItem{
		FollowUp: models.FollowUp{
			ID:            r.ID,
			ApplicationID: r.ApplicationID,
			DueOn:         r.DueOn,
			Note:          r.Note,
			IsCompleted:   r.IsCompleted,
			CompletedAt:   r.CompletedAt,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		},
		OwnerID: r.OwnerID,
		Company: r.Company,
		Title:   r.Title,
	}
}

func (s *Store) selectFollowUps() *dbr.SelectBuilder {
	return s.sess.
		Select("f.*", "a.owner_id", "j.company", "j.title").
		From(dbr.I("followups").As("f")).
		Join(dbr.I("applications").As("a"), "a.id = f.application_id").
		Join(dbr.I("job_leads").As("j"), "j.id = a.job_id")
}

func (s *Store) loadFollowUps(ctx context.Context, q *dbr.SelectBuilder) ([]models.FollowUpItem, error) {
	var rows []followUpRow
	if _, err := q.LoadContext(ctx, &rows); err != nil {
		return nil, err
	}

	items := make([]models.FollowUpItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.item())
	}
	return items, nil
}

func (s *Store) CreateFollowUp(ctx context.Context, f *models.FollowUp) error {
	var id int64
	err := s.sess.
		InsertInto("followups").
		Columns("application_id", "due_on", "note", "is_completed", "completed_at", "created_at", "updated_at").
		Record(f).
		Returning("id").
		LoadContext(ctx, &id)

	if err != nil {
		s.logger.Error("failed to create follow-up",
			zap.Int64("application_id", f.ApplicationID),
			zap.Error(err),
		)
		return fmt.Errorf("create follow-up: %w", err)
	}

	f.ID = id

	return nil
}

func (s *Store) GetFollowUp(ctx context.Context, sc Scope, id int64) (*models.FollowUpItem, error) {
	q := scoped(s.selectFollowUps().Where("f.id = ?", id), "a.owner_id", sc)

	items, err := s.loadFollowUps(ctx, q)
	if err != nil {
		s.logger.Error("failed to get follow-up",
			zap.Int64("followup_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get follow-up: %w", err)
	}

	if len(items) == 0 {
		return nil, ErrNotFound
	}

	return &items[0], nil
}

// ListFollowUps returns the follow-up items of one application, earliest
// due first.
func (s *Store) ListFollowUps(ctx context.Context, applicationID int64) ([]models.FollowUpItem, error) {
	q := s.selectFollowUps().
		Where("f.application_id = ?", applicationID).
		OrderAsc("f.due_on").
		OrderAsc("f.id")

	items, err := s.loadFollowUps(ctx, q)
	if err != nil {
		s.logger.Error("failed to list follow-ups",
			zap.Int64("application_id", applicationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}

	return items, nil
}

func (s *Store) UpdateFollowUp(ctx context.Context, f *models.FollowUp) error {
	result, err := s.sess.
		Update("followups").
		Set("due_on", f.DueOn).
		Set("note", f.Note).
		Set("is_completed", f.IsCompleted).
		Set("completed_at", f.CompletedAt).
		Set("updated_at", f.UpdatedAt).
		Where("id = ?", f.ID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update follow-up",
			zap.Int64("followup_id", f.ID),
			zap.Error(err),
		)
		return fmt.Errorf("update follow-up: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) DeleteFollowUp(ctx context.Context, id int64) error {
	result, err := s.sess.
		DeleteFrom("followups").
		Where("id = ?", id).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete follow-up",
			zap.Int64("followup_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("delete follow-up: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// OpenFollowUpsDueOn returns the owner's incomplete follow-up items due on
// day, ordered by company.
func (s *Store) OpenFollowUpsDueOn(ctx context.Context, ownerID int64, day models.Date) ([]models.FollowUpItem, error) {
	q := s.selectFollowUps().
		Where("a.owner_id = ? AND f.due_on = ? AND f.is_completed = ?", ownerID, day, false).
		OrderBy("LOWER(j.company)").
		OrderAsc("f.id")

	items, err := s.loadFollowUps(ctx, q)
	if err != nil {
		s.logger.Error("failed to list due follow-ups",
			zap.Int64("owner_id", ownerID),
			zap.String("due_on", day.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("open follow-ups due on: %w", err)
	}

	return items, nil
}
