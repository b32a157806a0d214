package models

import "time"

type Status string

const (
	StatusWishlist  Status = "WISHLIST"
	StatusApplied   Status = "APPLIED"
	StatusScreening Status = "SCREENING"
	StatusInterview Status = "INTERVIEW"
	StatusOffer     Status = "OFFER"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
)

var StatusDisplayNames = map[Status]string{
	StatusWishlist:  "Wishlist",
	StatusApplied:   "Applied",
	StatusScreening: "Screening",
	StatusInterview: "Interview",
	StatusOffer:     "Offer",
	StatusAccepted:  "Accepted",
	StatusRejected:  "Rejected",
}

// Statuses returns every status in pipeline order.
func Statuses() []Status {
	return []Status{
		StatusWishlist,
		StatusApplied,
		StatusScreening,
		StatusInterview,
		StatusOffer,
		StatusAccepted,
		StatusRejected,
	}
}

func IsValidStatus(code string) bool {
	_, ok := StatusDisplayNames[Status(code)]
	return ok
}

// IsTerminal reports whether the status is locked against reversal.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

func (s Status) Label() string {
	if name, ok := StatusDisplayNames[s]; ok {
		return name
	}
	return string(s)
}

type Application struct {
	ID               int64      `db:"id"`
	JobID            int64      `db:"job_id"`
	OwnerID          int64      `db:"owner_id"`
	Status           Status     `db:"status"`
	NextAction       string     `db:"next_action"`
	FollowUpAt       *time.Time `db:"follow_up_at"`
	AppliedAt        *time.Time `db:"applied_at"`
	Notes            string     `db:"notes"`
	JobURL           string     `db:"job_url"`
	Source           string     `db:"source"`
	CompensationText string     `db:"compensation_text"`
	LocationText     string     `db:"location_text"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// FollowUpOn is the follow-up projected to a calendar date in loc.
func (a *Application) FollowUpOn(loc *time.Location) *Date {
	if a.FollowUpAt == nil {
		return nil
	}
	d := DateOf(a.FollowUpAt.In(loc))
	return &d
}

// ApplicationDetail is an application together with its job lead.
type ApplicationDetail struct {
	Application Application
	Job         JobLead
}
