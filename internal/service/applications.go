package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobtracker/internal/models"
	"jobtracker/internal/storage/sqlstore"
	"jobtracker/internal/tracker"

	"go.uber.org/zap"
)

// ApplicationResult is the state saved by an update pathway.
type ApplicationResult struct {
	models.ApplicationDetail
	Changed []string
	SavedAt time.Time
}

// EditForm is the full edit form. Every field is submitted.
type EditForm struct {
	Status           string
	NextAction       string
	FollowUpOn       string
	Notes            string
	JobURL           string
	Source           string
	CompensationText string
	Company          string
	Title            string
	Location         string
}

// QuickAction is the inline update payload. A preset comes either from the
// followup object or from the legacy followup_preset keys.
type QuickAction struct {
	Status         tracker.Opt[string]
	Notes          tracker.Opt[string]
	FollowUpObject bool
	Preset         string
	Date           string
	FollowUpAt     tracker.Opt[string]
	Clear          bool
}

// changeBuilder turns a request into a change set once the current state is
// known.
type changeBuilder func(cur tracker.State, now time.Time) (tracker.ChangeSet, error)

// update loads the application, runs the rule engine and persists the result
// in one transaction.
func (s *Service) update(ctx context.Context, actor *models.User, id int64, force bool, build changeBuilder) (*ApplicationResult, error) {
	now := s.Now()
	var result *ApplicationResult

	err := s.store.WithTx(ctx, func(tx *sqlstore.Store) error {
		detail, err := tx.GetApplication(ctx, scopeOf(actor), id)
		if err != nil {
			return storeErr(err)
		}

		cur := tracker.State{Application: detail.Application, Job: detail.Job}
		cs, err := build(cur, now)
		if err != nil {
			return err
		}

		res, err := tracker.Apply(cur, cs, actorOf(actor), tracker.Options{
			Force:    force,
			Now:      now,
			Location: s.loc,
		})
		if err != nil {
			return err
		}

		if err := tx.UpdateApplication(ctx, &res.Application); err != nil {
			return err
		}
		if res.JobChanged {
			if err := tx.UpdateLead(ctx, &res.Job); err != nil {
				return err
			}
		}

		result = &ApplicationResult{
			ApplicationDetail: models.ApplicationDetail{Application: res.Application, Job: res.Job},
			Changed:           res.Changed,
			SavedAt:           res.SavedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCounts(ctx, result.Application.OwnerID)

	s.logger.Info("application updated",
		zap.Int64("application_id", id),
		zap.Int64("actor_id", actor.ID),
		zap.Strings("changed", result.Changed),
	)

	return result, nil
}

// Edit applies the full edit form. An empty follow-up clears an existing
// one and otherwise leaves room for the default follow-up.
func (s *Service) Edit(ctx context.Context, actor *models.User, id int64, form EditForm) (*ApplicationResult, error) {
	return s.update(ctx, actor, id, false, func(cur tracker.State, _ time.Time) (tracker.ChangeSet, error) {
		cs := tracker.ChangeSet{
			Status:           tracker.Some(form.Status),
			NextAction:       tracker.Some(form.NextAction),
			Notes:            tracker.Some(form.Notes),
			JobURL:           tracker.Some(form.JobURL),
			Source:           tracker.Some(form.Source),
			CompensationText: tracker.Some(form.CompensationText),
			Company:          tracker.Some(form.Company),
			Title:            tracker.Some(form.Title),
			Location:         tracker.Some(form.Location),
		}

		raw := strings.TrimSpace(form.FollowUpOn)
		current := cur.Application.FollowUpOn(s.loc)
		switch {
		case raw == "" && current == nil:
			// nothing to clear
		case current != nil && raw == current.String():
			// same day submitted back, keep the stored time
		default:
			cs.FollowUp = tracker.FollowUpText(raw)
		}

		return cs, nil
	})
}

// Patch applies a partial change set. force is only honored for privileged
// actors.
func (s *Service) Patch(ctx context.Context, actor *models.User, id int64, cs tracker.ChangeSet, force bool) (*ApplicationResult, error) {
	return s.update(ctx, actor, id, force, func(tracker.State, time.Time) (tracker.ChangeSet, error) {
		return cs, nil
	})
}

func (s *Service) QuickAction(ctx context.Context, actor *models.User, id int64, q QuickAction) (*ApplicationResult, error) {
	if q.FollowUpObject && q.FollowUpAt.Set {
		return nil, tracker.FieldError("follow_up_at", "Send either followup or follow_up_at, not both.")
	}

	return s.update(ctx, actor, id, false, func(_ tracker.State, now time.Time) (tracker.ChangeSet, error) {
		var cs tracker.ChangeSet

		if q.Status.Set && strings.TrimSpace(q.Status.Value) != "" {
			cs.Status = q.Status
		}
		cs.Notes = q.Notes

		preset := tracker.Preset(strings.TrimSpace(q.Preset))
		raw := strings.TrimSpace(q.FollowUpAt.Value)

		switch {
		case preset == tracker.PresetClear || q.Clear:
			cs.FollowUp = tracker.FollowUpCleared()
		case preset != "":
			change, err := tracker.ResolvePreset(preset, q.Date, now, s.loc)
			if err != nil {
				return cs, err
			}
			cs.FollowUp = change
		case raw != "":
			t, err := tracker.ParseDateTime(raw, s.loc)
			if err != nil {
				return cs, tracker.FieldError("follow_up_at", "Enter a valid date/time.")
			}
			cs.FollowUp = tracker.FollowUpAt(t)
		}

		return cs, nil
	})
}

// BumpFollowUp moves the follow-up forward by days, starting from now when
// there is none.
func (s *Service) BumpFollowUp(ctx context.Context, actor *models.User, id int64, days int) (*ApplicationResult, error) {
	if days > tracker.MaxBumpDays || days < -tracker.MaxBumpDays {
		return nil, tracker.FieldError("days", fmt.Sprintf("Ensure this value is between -%d and %d.", tracker.MaxBumpDays, tracker.MaxBumpDays))
	}
	return s.update(ctx, actor, id, false, func(cur tracker.State, now time.Time) (tracker.ChangeSet, error) {
		next := tracker.Bump(cur.Application.FollowUpAt, days, now)
		return tracker.ChangeSet{FollowUp: tracker.FollowUpAt(next)}, nil
	})
}

// SetFollowUp sets the follow-up from a datetime. Empty clears it.
func (s *Service) SetFollowUp(ctx context.Context, actor *models.User, id int64, raw string) (*ApplicationResult, error) {
	return s.update(ctx, actor, id, false, func(tracker.State, time.Time) (tracker.ChangeSet, error) {
		return tracker.ChangeSet{FollowUp: tracker.FollowUpText(raw)}, nil
	})
}

// NewApplication is the form creating a job lead and its application.
type NewApplication struct {
	Company  string `json:"company" validate:"required,max=200"`
	Title    string `json:"title" validate:"required,max=200"`
	Location string `json:"location" validate:"max=200"`
	WorkMode string `json:"work_mode" validate:"omitempty,oneof=REMOTE HYBRID ONSITE UNKNOWN"`
	Source   string `json:"source" validate:"omitempty,oneof=MANUAL RSS EMAIL WHITELIST"`
	JobURL   string `json:"job_url" validate:"omitempty,http_url,max=500"`
	JDText   string `json:"jd_text"`
	Status   string `json:"status" validate:"omitempty,oneof=WISHLIST APPLIED SCREENING INTERVIEW OFFER ACCEPTED REJECTED"`
	Notes    string `json:"notes"`
}

// Create saves a new job lead and application owned by actor. Both rows are
// written or neither is.
func (s *Service) Create(ctx context.Context, actor *models.User, in NewApplication) (*ApplicationResult, error) {
	in.Company = strings.TrimSpace(in.Company)
	in.Title = strings.TrimSpace(in.Title)
	in.JobURL = strings.TrimSpace(in.JobURL)
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := s.Now()
	ownerID := actor.ID

	lead := models.JobLead{
		OwnerID:      &ownerID,
		Title:        in.Title,
		Company:      in.Company,
		Location:     in.Location,
		WorkMode:     models.WorkModeUnknown,
		Source:       models.LeadSourceManual,
		JobURL:       in.JobURL,
		JDText:       in.JDText,
		DiscoveredAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.WorkMode != "" {
		lead.WorkMode = models.WorkMode(in.WorkMode)
	}
	if in.Source != "" {
		lead.Source = models.LeadSource(in.Source)
	}

	app := models.Application{
		OwnerID:      actor.ID,
		Status:       models.StatusWishlist,
		Notes:        in.Notes,
		JobURL:       in.JobURL,
		LocationText: in.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Status != "" {
		app.Status = models.Status(in.Status)
	}
	tracker.Derive(&app, now, false)

	err := s.store.WithTx(ctx, func(tx *sqlstore.Store) error {
		if err := tx.CreateLead(ctx, &lead); err != nil {
			return err
		}
		app.JobID = lead.ID
		return storeErr(tx.CreateApplication(ctx, &app))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCounts(ctx, actor.ID)

	s.logger.Info("application created",
		zap.Int64("application_id", app.ID),
		zap.Int64("owner_id", actor.ID),
		zap.String("company", lead.Company),
	)

	return &ApplicationResult{
		ApplicationDetail: models.ApplicationDetail{Application: app, Job: lead},
		SavedAt:           now,
	}, nil
}

// Delete removes the application, and its job lead when nothing else
// references it.
func (s *Service) Delete(ctx context.Context, actor *models.User, id int64) error {
	var ownerID int64

	err := s.store.WithTx(ctx, func(tx *sqlstore.Store) error {
		detail, err := tx.GetApplication(ctx, scopeOf(actor), id)
		if err != nil {
			return storeErr(err)
		}
		ownerID = detail.Application.OwnerID

		if err := tx.DeleteApplication(ctx, id); err != nil {
			return storeErr(err)
		}
		_, err = tx.DeleteLeadIfOrphaned(ctx, detail.Job.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.invalidateCounts(ctx, ownerID)
	return nil
}

func (s *Service) Get(ctx context.Context, actor *models.User, id int64) (*models.ApplicationDetail, error) {
	detail, err := s.store.GetApplication(ctx, scopeOf(actor), id)
	if err != nil {
		return nil, storeErr(err)
	}
	return detail, nil
}

func (s *Service) List(ctx context.Context, actor *models.User, f models.ListFilter) ([]models.ApplicationDetail, error) {
	return s.store.ListApplications(ctx, scopeOf(actor), f, s.Now())
}

// SidebarCounts returns the counts for the actor's applications. Only the
// owner-scoped status counts are cached; overdue and due soon depend on the
// clock and are always counted.
func (s *Service) SidebarCounts(ctx context.Context, actor *models.User) (*models.SidebarCounts, error) {
	sc := scopeOf(actor)
	useCache := s.cache != nil && !sc.AllOwners

	var counts *models.SidebarCounts
	if useCache {
		if cached, err := s.cache.GetSidebarCounts(ctx, actor.ID); err == nil {
			counts = cached
		}
	}

	if counts == nil {
		fresh, err := s.store.StatusCounts(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("sidebar counts: %w", err)
		}
		counts = fresh

		if useCache {
			if err := s.cache.SetSidebarCounts(ctx, actor.ID, counts); err != nil {
				s.logger.Warn("failed to cache sidebar counts",
					zap.Int64("owner_id", actor.ID),
					zap.Error(err),
				)
			}
		}
	}

	if err := s.store.DueCounts(ctx, sc, s.Now(), counts); err != nil {
		return nil, fmt.Errorf("sidebar counts: %w", err)
	}

	return counts, nil
}
