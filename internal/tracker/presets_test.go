package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePreset(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	morning := time.Date(2024, 5, 1, 9, 15, 0, 0, loc)
	evening := time.Date(2024, 5, 1, 18, 0, 0, 0, loc)

	tests := []struct {
		name   string
		preset Preset
		date   string
		now    time.Time
		want   time.Time
	}{
		{"today before six", PresetToday, "", morning, time.Date(2024, 5, 1, 18, 0, 0, 0, loc)},
		{"today at six rolls over", PresetToday, "", evening, time.Date(2024, 5, 2, 10, 0, 0, 0, loc)},
		{"tomorrow", PresetTomorrow, "", morning, time.Date(2024, 5, 2, 10, 0, 0, 0, loc)},
		{"next week", PresetNextWeek, "", morning, time.Date(2024, 5, 8, 10, 0, 0, 0, loc)},
		{"two weeks", PresetTwoWeeks, "", morning, time.Date(2024, 5, 15, 10, 0, 0, 0, loc)},
		{"date", PresetDate, "2024-07-04", morning, time.Date(2024, 7, 4, 10, 0, 0, 0, loc)},
		{"month end", PresetNextWeek, "", time.Date(2024, 5, 28, 8, 0, 0, 0, loc), time.Date(2024, 6, 4, 10, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := ResolvePreset(tt.preset, tt.date, tt.now, loc)
			require.NoError(t, err)
			require.Equal(t, followUpValue, change.kind)
			assert.True(t, change.at.Equal(tt.want), "got %s want %s", change.at, tt.want)
		})
	}
}

func TestResolvePresetUsesLocalDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-05-01 20:00 UTC is already 2024-05-02 05:00 in Tokyo.
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	change, err := ResolvePreset(PresetTomorrow, "", now, loc)
	require.NoError(t, err)
	assert.True(t, change.at.Equal(time.Date(2024, 5, 3, 10, 0, 0, 0, loc)))
}

func TestResolvePresetClear(t *testing.T) {
	change, err := ResolvePreset(PresetClear, "", fixedNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, followUpClear, change.kind)

	st := newState("WISHLIST")
	res, err := Apply(st, ChangeSet{Status: Some("APPLIED"), FollowUp: change}, Actor{}, opts())
	require.NoError(t, err)
	assert.Nil(t, res.Application.FollowUpAt)
}

func TestResolvePresetErrors(t *testing.T) {
	_, err := ResolvePreset("someday", "", fixedNow, time.UTC)
	assert.ErrorIs(t, err, ErrUnknownPreset)

	for _, date := range []string{"", "05/01/2024", "2024-02-30"} {
		_, err := ResolvePreset(PresetDate, date, fixedNow, time.UTC)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, date)
		assert.Contains(t, verr.Fields, "follow_up_on")
	}
}

func TestBump(t *testing.T) {
	existing := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, existing.Add(3*24*time.Hour), Bump(&existing, 3, fixedNow))
	assert.Equal(t, fixedNow.Add(7*24*time.Hour), Bump(nil, 7, fixedNow))
	assert.Equal(t, existing.Add(-24*time.Hour), Bump(&existing, -1, fixedNow))
	assert.Equal(t, existing.Add(MaxBumpDays*24*time.Hour), Bump(&existing, 1<<40, fixedNow))
	assert.Equal(t, existing.Add(-MaxBumpDays*24*time.Hour), Bump(&existing, -(1<<40), fixedNow))
}
