package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"jobtracker/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

var userColumns = []string{
	"username", "email", "password_hash", "api_token", "is_staff", "is_superuser", "created_at",
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	var id int64
	err := s.sess.
		InsertInto("users").
		Columns(userColumns...).
		Values(user.Username, user.Email, user.PasswordHash, user.APIToken, user.IsStaff, user.IsSuperuser, user.CreatedAt).
		Returning("id").
		LoadContext(ctx, &id)

	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("create user %q: %w", user.Username, ErrDuplicate)
		}
		s.logger.Error("failed to create user",
			zap.String("username", user.Username),
			zap.Error(err),
		)
		return fmt.Errorf("create user: %w", err)
	}

	user.ID = id

	s.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return nil
}

func (s *Store) getUserWhere(ctx context.Context, query string, value interface{}) (*models.User, error) {
	var user models.User

	err := s.sess.
		Select("*").
		From("users").
		Where(query, value).
		LoadOneContext(ctx, &user)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		s.logger.Error("failed to get user",
			zap.String("where", query),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.getUserWhere(ctx, "id = ?", userID)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUserWhere(ctx, "username = ?", username)
}

func (s *Store) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.getUserWhere(ctx, "api_token = ?", token)
}

// UpdateUser saves the credentials and flags of an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := s.sess.
		Update("users").
		Set("email", user.Email).
		Set("password_hash", user.PasswordHash).
		Set("api_token", user.APIToken).
		Set("is_staff", user.IsStaff).
		Set("is_superuser", user.IsSuperuser).
		Where("id = ?", user.ID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update user",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("update user: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int

	err := s.sess.
		Select("COUNT(*)").
		From("users").
		LoadOneContext(ctx, &count)

	if err != nil {
		s.logger.Error("failed to count users", zap.Error(err))
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}
