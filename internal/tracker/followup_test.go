package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/internal/models"
)

func TestApplyFollowUpUpdateCompletionToggle(t *testing.T) {
	cur := models.FollowUp{ID: 3, ApplicationID: 1, DueOn: models.Date{Year: 2024, Month: 5, Day: 2}}

	done, err := ApplyFollowUpUpdate(cur, FollowUpUpdate{IsCompleted: Some(true)}, fixedNow)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, fixedNow, *done.CompletedAt)

	later := fixedNow.Add(time.Hour)
	again, err := ApplyFollowUpUpdate(*done, FollowUpUpdate{IsCompleted: Some(true)}, later)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, *again.CompletedAt)

	reopened, err := ApplyFollowUpUpdate(*done, FollowUpUpdate{IsCompleted: Some(false)}, later)
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	assert.Nil(t, reopened.CompletedAt)

	// Stale completed_at without the flag is still cleared.
	stale := cur
	stale.CompletedAt = &fixedNow
	cleared, err := ApplyFollowUpUpdate(stale, FollowUpUpdate{IsCompleted: Some(false)}, later)
	require.NoError(t, err)
	assert.Nil(t, cleared.CompletedAt)
}

func TestApplyFollowUpUpdateFields(t *testing.T) {
	cur := models.FollowUp{ID: 3, DueOn: models.Date{Year: 2024, Month: 5, Day: 2}, Note: "call"}

	next, err := ApplyFollowUpUpdate(cur, FollowUpUpdate{DueOn: Some("2024-06-01"), Note: Some("email")}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", next.DueOn.String())
	assert.Equal(t, "email", next.Note)
	assert.Equal(t, "call", cur.Note)

	_, err = ApplyFollowUpUpdate(cur, FollowUpUpdate{}, fixedNow)
	assert.ErrorIs(t, err, ErrNoUpdates)

	for _, raw := range []string{"", "tomorrow", "2024-02-31"} {
		_, err := ApplyFollowUpUpdate(cur, FollowUpUpdate{DueOn: Some(raw)}, fixedNow)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, raw)
		assert.Contains(t, verr.Fields, "due_on")
	}
}

func TestNewFollowUp(t *testing.T) {
	f, err := NewFollowUp(9, "2024-05-20", "ping recruiter", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(9), f.ApplicationID)
	assert.Equal(t, "2024-05-20", f.DueOn.String())
	assert.False(t, f.IsCompleted)

	_, err = NewFollowUp(9, "", "", fixedNow)
	assert.Error(t, err)
}
