package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtracker/internal/models"
	"jobtracker/internal/storage/sqlstore"
	"jobtracker/internal/tracker"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login checks the password and returns the user with a usable API token.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, sqlstore.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Info("login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	if user.APIToken == "" {
		user.APIToken = uuid.NewString()
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// Authenticate resolves an API token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	user, err := s.store.GetUserByToken(ctx, token)
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

// NewUser describes an account to create.
type NewUser struct {
	Username    string `json:"username" validate:"required,max=150"`
	Email       string `json:"email" validate:"omitempty,email"`
	Password    string `json:"password" validate:"required,min=8"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (s *Service) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.check(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		APIToken:     uuid.NewString(),
		IsStaff:      in.IsStaff,
		IsSuperuser:  in.IsSuperuser,
		CreatedAt:    s.Now(),
	}

	err = s.store.WithTx(ctx, func(tx *sqlstore.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return createDefaultProfile(ctx, tx, user.ID, user.CreatedAt)
	})
	if err != nil {
		return nil, storeErr(err)
	}

	return user, nil
}

// SeedResult reports what SeedDemoUser did.
type SeedResult struct {
	User        *models.User
	Created     bool
	Application *models.ApplicationDetail
}

// SeedDemoUser creates or refreshes a non-staff demo account with one
// sample application. Existing staff accounts are left untouched.
func (s *Service) SeedDemoUser(ctx context.Context, username, password, email string) (*SeedResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.Now()
	result := &SeedResult{}

	err = s.store.WithTx(ctx, func(tx *sqlstore.Store) error {
		user, err := tx.GetUserByUsername(ctx, username)
		switch {
		case errors.Is(err, sqlstore.ErrNotFound):
			user = &models.User{
				Username:     username,
				Email:        email,
				PasswordHash: string(hash),
				APIToken:     uuid.NewString(),
				CreatedAt:    now,
			}
			if err := tx.CreateUser(ctx, user); err != nil {
				return err
			}
			if err := createDefaultProfile(ctx, tx, user.ID, now); err != nil {
				return err
			}
			result.Created = true
		case err != nil:
			return err
		case user.Privileged():
			return fmt.Errorf("%w: %s", ErrPrivilegedAccount, username)
		default:
			user.Email = email
			user.PasswordHash = string(hash)
			if user.APIToken == "" {
				user.APIToken = uuid.NewString()
			}
			if err := tx.UpdateUser(ctx, user); err != nil {
				return err
			}
			if err := ensureProfile(ctx, tx, user.ID, now); err != nil {
				return err
			}
		}
		result.User = user

		sc := sqlstore.OwnedBy(user.ID)
		existing, err := tx.ListApplications(ctx, sc, models.NormalizeFilter("", "Example Co", "", "", ""), now)
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].Job.Company == "Example Co" && existing[i].Job.Title == "Backend Engineer" {
				result.Application = &existing[i]
				return nil
			}
		}

		ownerID := user.ID
		lead := models.JobLead{
			OwnerID:      &ownerID,
			Title:        "Backend Engineer",
			Company:      "Example Co",
			Location:     "Remote",
			WorkMode:     models.WorkModeRemote,
			Source:       models.LeadSourceManual,
			DiscoveredAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreateLead(ctx, &lead); err != nil {
			return err
		}

		app := models.Application{
			JobID:        lead.ID,
			OwnerID:      user.ID,
			Status:       models.StatusApplied,
			LocationText: lead.Location,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		tracker.Derive(&app, now, false)
		if err := tx.CreateApplication(ctx, &app); err != nil {
			return err
		}

		result.Application = &models.ApplicationDetail{Application: app, Job: lead}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCounts(ctx, result.User.ID)

	return result, nil
}

func createDefaultProfile(ctx context.Context, tx *sqlstore.Store, userID int64, now time.Time) error {
	p := models.DefaultProfile(userID)
	p.CreatedAt, p.UpdatedAt = now, now
	return tx.CreateProfile(ctx, &p)
}

// ensureProfile creates the default profile for accounts made before
// profiles were created with the user.
func ensureProfile(ctx context.Context, tx *sqlstore.Store, userID int64, now time.Time) error {
	_, err := tx.GetProfile(ctx, userID)
	if errors.Is(err, sqlstore.ErrNotFound) {
		return createDefaultProfile(ctx, tx, userID, now)
	}
	return err
}
