package tracker

import (
	"fmt"
	"strings"
	"time"

	"jobtracker/internal/models"
)

// Wall clock times used when a follow-up is given as a date only.
const (
	MorningHour = 10
	EveningHour = 18
)

var localDatetimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDateTime parses a follow-up datetime. Zoneless values are read in loc.
func ParseDateTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range localDatetimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", raw)
}

// ParseFollowUp accepts either a calendar date, which resolves to that day at
// MorningHour in loc, or a datetime.
func ParseFollowUp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == len(models.DateLayout) {
		d, err := models.ParseDate(raw)
		if err != nil {
			return time.Time{}, err
		}
		return d.In(loc, MorningHour, 0), nil
	}
	return ParseDateTime(raw, loc)
}
