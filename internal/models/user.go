package models

import (
	"strings"
	"time"
)

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	APIToken     string    `db:"api_token"`
	IsStaff      bool      `db:"is_staff"`
	IsSuperuser  bool      `db:"is_superuser"`
	CreatedAt    time.Time `db:"created_at"`
}

// Privileged users may read and mutate records of every owner.
func (u *User) Privileged() bool {
	return u.IsStaff || u.IsSuperuser
}

type RemotePreference string

const (
	RemoteAny    RemotePreference = "ANY"
	RemoteRemote RemotePreference = "REMOTE"
	RemoteHybrid RemotePreference = "HYBRID"
	RemoteOnsite RemotePreference = "ONSITE"
)

type UIDensity string

const (
	DensityComfortable UIDensity = "COMFORTABLE"
	DensityCompact     UIDensity = "COMPACT"
)

type Theme string

const (
	ThemeSystem Theme = "SYSTEM"
	ThemeLight  Theme = "LIGHT"
	ThemeDark   Theme = "DARK"
)

type UserProfile struct {
	UserID               int64            `db:"user_id" json:"-"`
	FullName             string           `db:"full_name" json:"full_name" validate:"max=200"`
	Headline             string           `db:"headline" json:"headline" validate:"max=200"`
	Phone                string           `db:"phone" json:"phone" validate:"max=50"`
	LocationCity         string           `db:"location_city" json:"location_city" validate:"max=100"`
	LocationCountry      string           `db:"location_country" json:"location_country" validate:"max=100"`
	PreferredLocations   string           `db:"preferred_locations" json:"preferred_locations"`
	WorkAuthorization    string           `db:"work_authorization" json:"work_authorization" validate:"max=200"`
	NoticePeriodDays     *int             `db:"notice_period_days" json:"notice_period_days" validate:"omitempty,min=0"`
	ExperienceYears      *float64         `db:"experience_years" json:"experience_years" validate:"omitempty,min=0,max=999.9"`
	TargetRoles          string           `db:"target_roles" json:"target_roles"`
	TargetCompanies      string           `db:"target_companies" json:"target_companies"`
	SalaryExpectationMin *int             `db:"salary_expectation_min" json:"salary_expectation_min" validate:"omitempty,min=0"`
	SalaryExpectationMax *int             `db:"salary_expectation_max" json:"salary_expectation_max" validate:"omitempty,min=0"`
	RemotePreference     RemotePreference `db:"remote_preference" json:"remote_preference" validate:"oneof=ANY REMOTE HYBRID ONSITE"`
	LinkedInURL          string           `db:"linkedin_url" json:"linkedin_url" validate:"omitempty,url"`
	GitHubURL            string           `db:"github_url" json:"github_url" validate:"omitempty,url"`
	PortfolioURL         string           `db:"portfolio_url" json:"portfolio_url" validate:"omitempty,url"`
	Timezone             string           `db:"timezone" json:"timezone" validate:"required,timezone"`
	EmailRemindersOn     bool             `db:"email_reminders_enabled" json:"email_reminders_enabled"`
	DailyReminderTime    string           `db:"daily_reminder_time" json:"daily_reminder_time" validate:"datetime=15:04"`
	ReminderDaysBefore   int              `db:"reminder_days_before" json:"reminder_days_before" validate:"min=0,max=30"`
	UIDensity            UIDensity        `db:"ui_density" json:"ui_density" validate:"oneof=COMFORTABLE COMPACT"`
	ThemePreference      Theme            `db:"theme_preference" json:"theme_preference" validate:"oneof=SYSTEM LIGHT DARK"`
	ReduceMotion         bool             `db:"reduce_motion" json:"reduce_motion"`
	TelegramChatID       *int64           `db:"telegram_chat_id" json:"telegram_chat_id"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// DefaultProfile is the profile created on first access.
func DefaultProfile(userID int64) UserProfile {
	return UserProfile{
		UserID:            userID,
		RemotePreference:  RemoteAny,
		Timezone:          "UTC",
		EmailRemindersOn:  true,
		DailyReminderTime: "09:00",
		UIDensity:         DensityComfortable,
		ThemePreference:   ThemeSystem,
	}
}

// Initials for the avatar: first letters of the full name, else the
// first two letters of the username.
func Initials(fullName, username string) string {
	var out []rune
	word := false
	for _, r := range fullName {
		if r == ' ' || r == '\t' {
			word = false
			continue
		}
		if !word {
			out = append(out, r)
			word = true
			if len(out) == 2 {
				break
			}
		}
	}
	if len(out) == 0 {
		out = []rune(username)
		if len(out) > 2 {
			out = out[:2]
		}
	}
	return strings.ToUpper(string(out))
}
