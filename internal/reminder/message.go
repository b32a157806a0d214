package reminder

import (
	"fmt"
	"strings"
	"time"

	"jobtracker/internal/models"
)

const dayLayout = "Jan 02, 2006"

// Message is a composed digest. Notifiers render Body as is or rebuild
// their own text from the items.
type Message struct {
	Subject      string
	Body         string
	Day          models.Date
	Applications []models.ApplicationDetail
	FollowUps    []models.FollowUpItem
}

func formatDay(day models.Date) string {
	return day.In(time.UTC, 0, 0).Format(dayLayout)
}

func applicationLine(d models.ApplicationDetail) string {
	next := d.Application.NextAction
	if next == "" {
		next = "No next action set"
	}
	return fmt.Sprintf("- %s — %s (%s): %s", d.Job.Company, d.Job.Title, d.Application.Status.Label(), next)
}

func followUpLine(f models.FollowUpItem) string {
	note := f.Note
	if note == "" {
		note = "No note"
	}
	return fmt.Sprintf("- %s — %s: %s", f.Company, f.Title, note)
}

// Compose builds the plain text digest for one user.
func Compose(username string, day models.Date, apps []models.ApplicationDetail, items []models.FollowUpItem) Message {
	when := formatDay(day)

	lines := []string{
		fmt.Sprintf("Hello %s,", username),
		"",
		fmt.Sprintf("Follow-ups due for %s:", when),
		"",
	}

	if len(apps) > 0 {
		lines = append(lines, "Applications:")
		for _, a := range apps {
			lines = append(lines, applicationLine(a))
		}
		lines = append(lines, "")
	}

	if len(items) > 0 {
		lines = append(lines, "Follow-up items:")
		for _, f := range items {
			lines = append(lines, followUpLine(f))
		}
		lines = append(lines, "")
	}

	return Message{
		Subject:      "JobTracker follow-ups for " + when,
		Body:         strings.Join(lines, "\n"),
		Day:          day,
		Applications: apps,
		FollowUps:    items,
	}
}
