package tracker

import (
	"time"

	"jobtracker/internal/models"
)

// Opt is a value that may be absent. Absent is different from empty.
type Opt[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{Set: true, Value: v}
}

type followUpKind int

const (
	followUpAbsent followUpKind = iota
	followUpRaw
	followUpValue
	followUpClear
)

// FollowUpChange describes what an update does to the application's
// follow-up: nothing, set it from raw text, set it to a resolved time, or
// clear it.
type FollowUpChange struct {
	kind followUpKind
	raw  string
	at   time.Time
}

// FollowUpText sets the follow-up from user text: a date, a datetime, or an
// empty string meaning "clear".
func FollowUpText(raw string) FollowUpChange {
	return FollowUpChange{kind: followUpRaw, raw: raw}
}

func FollowUpAt(t time.Time) FollowUpChange {
	return FollowUpChange{kind: followUpValue, at: t}
}

func FollowUpCleared() FollowUpChange {
	return FollowUpChange{kind: followUpClear}
}

func (c FollowUpChange) Present() bool {
	return c.kind != followUpAbsent
}

// ChangeSet is the canonical, transport independent form of an application
// update. Only fields that are Set are considered.
type ChangeSet struct {
	Status           Opt[string]
	NextAction       Opt[string]
	Notes            Opt[string]
	FollowUp         FollowUpChange
	JobURL           Opt[string]
	Source           Opt[string]
	CompensationText Opt[string]
	LocationText     Opt[string]
	Location         Opt[string]
	Company          Opt[string]
	Title            Opt[string]
}

// Empty reports whether no recognized field is present.
func (cs ChangeSet) Empty() bool {
	return !cs.Status.Set &&
		!cs.NextAction.Set &&
		!cs.Notes.Set &&
		!cs.FollowUp.Present() &&
		!cs.JobURL.Set &&
		!cs.Source.Set &&
		!cs.CompensationText.Set &&
		!cs.LocationText.Set &&
		!cs.Location.Set &&
		!cs.Company.Set &&
		!cs.Title.Set
}

// State is the persisted application and its job lead.
type State struct {
	Application models.Application
	Job         models.JobLead
}

type Actor struct {
	UserID     int64
	Privileged bool
}

type Options struct {
	// Force asks to override the terminal lock. Only honored for
	// privileged actors.
	Force    bool
	Now      time.Time
	Location *time.Location
}

type Result struct {
	Application models.Application
	Job         models.JobLead
	JobChanged  bool
	Changed     []string
	SavedAt     time.Time
}
