package tracker

import (
	"strings"
	"time"

	"jobtracker/internal/models"
)

// FollowUpUpdate is a partial update of a follow-up item.
type FollowUpUpdate struct {
	DueOn       Opt[string]
	Note        Opt[string]
	IsCompleted Opt[bool]
}

func (u FollowUpUpdate) Empty() bool {
	return !u.DueOn.Set && !u.Note.Set && !u.IsCompleted.Set
}

// ApplyFollowUpUpdate returns cur with u applied. Completing stamps
// completed_at, reopening clears it. The parent application is not touched.
func ApplyFollowUpUpdate(cur models.FollowUp, u FollowUpUpdate, now time.Time) (*models.FollowUp, error) {
	if u.Empty() {
		return nil, ErrNoUpdates
	}

	next := cur

	if u.DueOn.Set {
		due, err := parseDueOn(u.DueOn.Value)
		if err != nil {
			return nil, err
		}
		next.DueOn = due
	}

	if u.Note.Set {
		next.Note = u.Note.Value
	}

	if u.IsCompleted.Set {
		next.IsCompleted = u.IsCompleted.Value
		if next.IsCompleted {
			if next.CompletedAt == nil {
				completed := now
				next.CompletedAt = &completed
			}
		} else {
			next.CompletedAt = nil
		}
	}

	next.UpdatedAt = now
	return &next, nil
}

// NewFollowUp validates the fields of a follow-up item being created.
func NewFollowUp(applicationID int64, dueOn, note string, now time.Time) (*models.FollowUp, error) {
	due, err := parseDueOn(dueOn)
	if err != nil {
		return nil, err
	}

	return &models.FollowUp{
		ApplicationID: applicationID,
		DueOn:         due,
		Note:          note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func parseDueOn(raw string) (models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Date{}, FieldError("due_on", msgRequired)
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, FieldError("due_on", msgBadDate)
	}
	return d, nil
}
