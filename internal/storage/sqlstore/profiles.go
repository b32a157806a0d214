package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"jobtracker/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

var profileColumns = []string{
	"user_id",
	"full_name",
	"headline",
	"phone",
	"location_city",
	"location_country",
	"preferred_locations",
	"work_authorization",
	"notice_period_days",
	"experience_years",
	"target_roles",
	"target_companies",
	"salary_expectation_min",
	"salary_expectation_max",
	"remote_preference",
	"linkedin_url",
	"github_url",
	"portfolio_url",
	"timezone",
	"email_reminders_enabled",
	"daily_reminder_time",
	"reminder_days_before",
	"ui_density",
	"theme_preference",
	"reduce_motion",
	"telegram_chat_id",
	"created_at",
	"updated_at",
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var profile models.UserProfile

	err := s.sess.
		Select("*").
		From("user_profiles").
		Where("user_id = ?", userID).
		LoadOneContext(ctx, &profile)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		s.logger.Error("failed to get profile",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	_, err := s.sess.
		InsertInto("user_profiles").
		Columns(profileColumns...).
		Record(profile).
		ExecContext(ctx)

	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("create profile: %w", ErrDuplicate)
		}
		s.logger.Error("failed to create profile",
			zap.Int64("user_id", profile.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info("profile created", zap.Int64("user_id", profile.UserID))

	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *models.UserProfile) error {
	result, err := s.sess.
		Update("user_profiles").
		SetMap(map[string]interface{}{
			"full_name":               p.FullName,
			"headline":                p.Headline,
			"phone":                   p.Phone,
			"location_city":           p.LocationCity,
			"location_country":        p.LocationCountry,
			"preferred_locations":     p.PreferredLocations,
			"work_authorization":      p.WorkAuthorization,
			"notice_period_days":      p.NoticePeriodDays,
			"experience_years":        p.ExperienceYears,
			"target_roles":            p.TargetRoles,
			"target_companies":        p.TargetCompanies,
			"salary_expectation_min":  p.SalaryExpectationMin,
			"salary_expectation_max":  p.SalaryExpectationMax,
			"remote_preference":       p.RemotePreference,
			"linkedin_url":            p.LinkedInURL,
			"github_url":              p.GitHubURL,
			"portfolio_url":           p.PortfolioURL,
			"timezone":                p.Timezone,
			"email_reminders_enabled": p.EmailRemindersOn,
			"daily_reminder_time":     p.DailyReminderTime,
			"reminder_days_before":    p.ReminderDaysBefore,
			"ui_density":              p.UIDensity,
			"theme_preference":        p.ThemePreference,
			"reduce_motion":           p.ReduceMotion,
			"telegram_chat_id":        p.TelegramChatID,
			"updated_at":              p.UpdatedAt,
		}).
		Where("user_id = ?", p.UserID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update profile",
			zap.Int64("user_id", p.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("update profile: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	s.logger.Info("profile updated", zap.Int64("user_id", p.UserID))

	return nil
}
