package tracker

import (
	"fmt"
	"time"

	"jobtracker/internal/models"
)

type Preset string

const (
	PresetToday    Preset = "today"
	PresetTomorrow Preset = "tomorrow"
	PresetNextWeek Preset = "next_week"
	PresetTwoWeeks Preset = "two_weeks"
	PresetDate     Preset = "date"
	PresetClear    Preset = "clear"
)

// ResolvePreset turns a named preset into a follow-up change. date is only
// read for PresetDate.
func ResolvePreset(preset Preset, date string, now time.Time, loc *time.Location) (FollowUpChange, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := models.DateOf(now)

	switch preset {
	case PresetToday:
		target := today.In(loc, EveningHour, 0)
		if !now.Before(target) {
			target = today.AddDays(1).In(loc, MorningHour, 0)
		}
		return FollowUpAt(target), nil
	case PresetTomorrow:
		return FollowUpAt(today.AddDays(1).In(loc, MorningHour, 0)), nil
	case PresetNextWeek:
		return FollowUpAt(today.AddDays(7).In(loc, MorningHour, 0)), nil
	case PresetTwoWeeks:
		return FollowUpAt(today.AddDays(14).In(loc, MorningHour, 0)), nil
	case PresetDate:
		if date == "" {
			return FollowUpChange{}, FieldError("follow_up_on", msgBadDate)
		}
		d, err := models.ParseDate(date)
		if err != nil {
			return FollowUpChange{}, FieldError("follow_up_on", msgBadDate)
		}
		return FollowUpAt(d.In(loc, MorningHour, 0)), nil
	case PresetClear:
		return FollowUpCleared(), nil
	default:
		return FollowUpChange{}, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
}

// MaxBumpDays bounds a single bump in either direction.
const MaxBumpDays = 3650

// Bump moves the follow-up forward by days, starting from now when there is
// none. days is clamped to ±MaxBumpDays.
func Bump(current *time.Time, days int, now time.Time) time.Time {
	if days > MaxBumpDays {
		days = MaxBumpDays
	} else if days < -MaxBumpDays {
		days = -MaxBumpDays
	}
	shift := time.Duration(days) * 24 * time.Hour
	if current != nil {
		return current.Add(shift)
	}
	return now.Add(shift)
}
