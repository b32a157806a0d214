package tracker

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"jobtracker/internal/models"
)

const (
	msgInvalid   = "Please correct the errors below."
	msgBadStatus = "Select a valid choice."
	msgBadDate   = "Enter a valid date."
	msgRequired  = "This field is required."
	msgBadURL    = "Enter a valid URL."
)

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// Apply validates cs against the current state and returns the state that
// results from it. cur is never modified. On error nothing should be
// persisted.
func Apply(cur State, cs ChangeSet, actor Actor, opts Options) (*Result, error) {
	loc := opts.location()
	now := opts.now()
	verr := &ValidationError{Message: msgInvalid}

	var status models.Status
	if cs.Status.Set {
		code := strings.TrimSpace(cs.Status.Value)
		if models.IsValidStatus(code) {
			status = models.Status(code)
		} else {
			verr.add("status", msgBadStatus)
		}
	}

	if status != "" &&
		cur.Application.Status.IsTerminal() &&
		!status.IsTerminal() &&
		!(actor.Privileged && opts.Force) {
		return nil, ErrTerminalLocked
	}

	var (
		followUp      *time.Time
		clearFollowUp bool
	)
	switch cs.FollowUp.kind {
	case followUpRaw:
		raw := strings.TrimSpace(cs.FollowUp.raw)
		if raw == "" {
			clearFollowUp = true
			break
		}
		t, err := ParseFollowUp(raw, loc)
		if err != nil {
			verr.add("follow_up_on", msgBadDate)
			break
		}
		followUp = &t
	case followUpValue:
		t := cs.FollowUp.at
		followUp = &t
	case followUpClear:
		clearFollowUp = true
	}

	company, title := trimmed(cs.Company), trimmed(cs.Title)
	if company.Set && company.Value == "" {
		verr.add("company", msgRequired)
	}
	if title.Set && title.Value == "" {
		verr.add("title", msgRequired)
	}

	jobURL := trimmed(cs.JobURL)
	if jobURL.Set && jobURL.Value != "" && !validURL(jobURL.Value) {
		verr.add("job_url", msgBadURL)
	}

	if !verr.empty() {
		return nil, verr
	}

	app := cur.Application
	job := cur.Job
	var changed []string
	jobChanged := false

	mark := func(field string) {
		changed = append(changed, field)
	}

	if status != "" && status != app.Status {
		app.Status = status
		mark("status")
	}
	if cs.NextAction.Set && cs.NextAction.Value != app.NextAction {
		app.NextAction = cs.NextAction.Value
		mark("next_action")
	}
	if cs.Notes.Set && cs.Notes.Value != app.Notes {
		app.Notes = cs.Notes.Value
		mark("notes")
	}
	if clearFollowUp && app.FollowUpAt != nil {
		app.FollowUpAt = nil
		mark("follow_up_on")
	}
	if followUp != nil && (app.FollowUpAt == nil || !app.FollowUpAt.Equal(*followUp)) {
		app.FollowUpAt = followUp
		mark("follow_up_on")
	}
	if cs.Source.Set && cs.Source.Value != app.Source {
		app.Source = cs.Source.Value
		mark("source")
	}
	if cs.CompensationText.Set && cs.CompensationText.Value != app.CompensationText {
		app.CompensationText = cs.CompensationText.Value
		mark("compensation_text")
	}

	if jobURL.Set && (jobURL.Value != app.JobURL || jobURL.Value != job.JobURL) {
		app.JobURL = jobURL.Value
		job.JobURL = jobURL.Value
		jobChanged = true
		mark("job_url")
	}

	location := cs.LocationText
	if !location.Set {
		location = cs.Location
	}
	if location.Set && (location.Value != app.LocationText || location.Value != job.Location) {
		app.LocationText = location.Value
		job.Location = location.Value
		jobChanged = true
		mark("location_text")
	}

	if company.Set && company.Value != job.Company {
		job.Company = company.Value
		jobChanged = true
		mark("company")
	}
	if title.Set && title.Value != job.Title {
		job.Title = title.Value
		jobChanged = true
		mark("title")
	}

	if len(changed) == 0 {
		return nil, ErrNoUpdates
	}

	Derive(&app, now, clearFollowUp)
	app.UpdatedAt = now
	if jobChanged {
		job.UpdatedAt = now
	}

	sort.Strings(changed)

	return &Result{
		Application: app,
		Job:         job,
		JobChanged:  jobChanged,
		Changed:     changed,
		SavedAt:     now,
	}, nil
}

func trimmed(o Opt[string]) Opt[string] {
	if !o.Set {
		return o
	}
	return Some(strings.TrimSpace(o.Value))
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
