package models

import "time"

// FollowUp is a reminder item attached to an application. It is independent
// of the application's own follow-up timestamp.
type FollowUp struct {
	ID            int64      `db:"id"`
	ApplicationID int64      `db:"application_id"`
	DueOn         Date       `db:"due_on"`
	Note          string     `db:"note"`
	IsCompleted   bool       `db:"is_completed"`
	CompletedAt   *time.Time `db:"completed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// FollowUpItem is a follow-up with the company and title of its application.
type FollowUpItem struct {
	FollowUp
	OwnerID int64  `db:"owner_id"`
	Company string `db:"company"`
	Title   string `db:"title"`
}
