package sqlstore

import (
	"context"
	"fmt"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

// ReminderTarget is a user who opted in to follow-up reminders. Users
// without a profile row get the profile defaults.
type ReminderTarget struct {
	UserID             int64  `db:"user_id"`
	Username           string `db:"username"`
	Email              string `db:"email"`
	ReminderDaysBefore int    `db:"reminder_days_before"`
	TelegramChatID     *int64 `db:"telegram_chat_id"`
}

func (s *Store) ReminderTargets(ctx context.Context) ([]ReminderTarget, error) {
	var targets []ReminderTarget

	_, err := s.sess.
		Select(
			"u.id AS user_id",
			"u.username",
			"u.email",
			"COALESCE(p.reminder_days_before, 0) AS reminder_days_before",
			"p.telegram_chat_id",
		).
		From(dbr.I("users").As("u")).
		LeftJoin(dbr.I("user_profiles").As("p"), "p.user_id = u.id").
		Where("COALESCE(p.email_reminders_enabled, ?) = ?", true, true).
		OrderAsc("u.id").
		LoadContext(ctx, &targets)

	if err != nil {
		s.logger.Error("failed to list reminder targets", zap.Error(err))
		return nil, fmt.Errorf("reminder targets: %w", err)
	}

	return targets, nil
}
