package models

import "time"

type WorkMode string

const (
	WorkModeRemote  WorkMode = "REMOTE"
	WorkModeHybrid  WorkMode = "HYBRID"
	WorkModeOnsite  WorkMode = "ONSITE"
	WorkModeUnknown WorkMode = "UNKNOWN"
)

var WorkModeDisplayNames = map[WorkMode]string{
	WorkModeRemote:  "Remote",
	WorkModeHybrid:  "Hybrid",
	WorkModeOnsite:  "Onsite",
	WorkModeUnknown: "Unknown",
}

type LeadSource string

const (
	LeadSourceManual    LeadSource = "MANUAL"
	LeadSourceRSS       LeadSource = "RSS"
	LeadSourceEmail     LeadSource = "EMAIL"
	LeadSourceWhitelist LeadSource = "WHITELIST"
)

var LeadSourceDisplayNames = map[LeadSource]string{
	LeadSourceManual:    "Manual",
	LeadSourceRSS:       "RSS",
	LeadSourceEmail:     "Email Alert",
	LeadSourceWhitelist: "Whitelisted Browse",
}

func IsValidWorkMode(code string) bool {
	_, ok := WorkModeDisplayNames[WorkMode(code)]
	return ok
}

func IsValidLeadSource(code string) bool {
	_, ok := LeadSourceDisplayNames[LeadSource(code)]
	return ok
}

type JobLead struct {
	ID              int64      `db:"id"`
	OwnerID         *int64     `db:"owner_id"` // nil for legacy leads
	Title           string     `db:"title"`
	Company         string     `db:"company"`
	Location        string     `db:"location"`
	WorkMode        WorkMode   `db:"work_mode"`
	Source          LeadSource `db:"source"`
	JobURL          string     `db:"job_url"`
	JDText          string     `db:"jd_text"`
	Notes           string     `db:"notes"`
	IsScamSuspected bool       `db:"is_scam_suspected"`
	ScamReasons     string     `db:"scam_reasons"`
	IsArchived      bool       `db:"is_archived"`
	ArchivedAt      *time.Time `db:"archived_at"`
	DiscoveredAt    time.Time  `db:"discovered_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}
