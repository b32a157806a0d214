package tracker

import (
	"time"

	"jobtracker/internal/models"
)

// DefaultFollowUpDelay is how long after applying the follow-up defaults to.
const DefaultFollowUpDelay = 3 * 24 * time.Hour

// Derive fills the timestamps implied by the application's status. When
// skipFollowUpDefault is set the follow-up is left empty for this save.
func Derive(app *models.Application, now time.Time, skipFollowUpDefault bool) {
	if app.Status != models.StatusApplied {
		return
	}

	if app.AppliedAt == nil {
		applied := now
		app.AppliedAt = &applied
	}

	if app.FollowUpAt == nil && !skipFollowUpDefault {
		due := app.AppliedAt.Add(DefaultFollowUpDelay)
		app.FollowUpAt = &due
	}
}
