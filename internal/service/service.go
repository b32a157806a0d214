package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"jobtracker/internal/models"
	"jobtracker/internal/storage/sqlstore"
	"jobtracker/internal/tracker"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPrivilegedAccount  = errors.New("refusing to modify a staff account")
)

// CountsCache caches per-owner sidebar counts.
type CountsCache interface {
	GetSidebarCounts(ctx context.Context, ownerID int64) (*models.SidebarCounts, error)
	SetSidebarCounts(ctx context.Context, ownerID int64, counts *models.SidebarCounts) error
	InvalidateSidebarCounts(ctx context.Context, ownerID int64) error
}

type Service struct {
	store    *sqlstore.Store
	cache    CountsCache
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// Option is a functional option for Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the zone used as local time for presets and dates
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.loc = loc
	}
}

// WithCountsCache enables caching of sidebar counts
func WithCountsCache(c CountsCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store *sqlstore.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		validate: newValidator(),
		loc:      time.UTC,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func scopeOf(actor *models.User) sqlstore.Scope {
	return sqlstore.Scope{OwnerID: actor.ID, AllOwners: actor.Privileged()}
}

func actorOf(u *models.User) tracker.Actor {
	return tracker.Actor{UserID: u.ID, Privileged: u.Privileged()}
}

// storeErr maps storage sentinels to service errors.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sqlstore.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, sqlstore.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *Service) invalidateCounts(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSidebarCounts(ctx, ownerID); err != nil {
		s.logger.Warn("failed to invalidate sidebar counts",
			zap.Int64("owner_id", ownerID),
			zap.Error(err),
		)
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates v and reports violations as a tracker.ValidationError.
func (s *Service) check(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &tracker.ValidationError{Message: "Please correct the errors below.", Fields: map[string]string{}}
	for _, fe := range verrs {
		if _, exists := out.Fields[fe.Field()]; exists {
			continue
		}
		out.Fields[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "url", "http_url":
		return "Enter a valid URL."
	case "oneof":
		return "Select a valid choice."
	case "datetime":
		return "Enter a valid time."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "timezone":
		return "Enter a valid time zone."
	}
	return "Enter a valid value."
}
