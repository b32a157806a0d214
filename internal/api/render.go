package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"jobtracker/internal/models"
	"jobtracker/internal/service"
	"jobtracker/internal/tracker"

	"go.uber.org/zap"
)

const (
	displayLayout = "Jan 02, 2006 15:04"
	valueLayout   = "2006-01-02T15:04"
	noValue       = "—"
)

type errorResponse struct {
	OK          bool              `json:"ok"`
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"field_errors"`
}

// applicationJSON is the projection of an application and its job lead.
type applicationJSON struct {
	ID               int64  `json:"id"`
	JobID            int64  `json:"job_id"`
	Status           string `json:"status"`
	StatusLabel      string `json:"status_label"`
	NextAction       string `json:"next_action"`
	FollowUpDisplay  string `json:"follow_up_display"`
	FollowUpValue    string `json:"follow_up_value"`
	FollowUpOn       string `json:"follow_up_on"`
	AppliedDisplay   string `json:"applied_display"`
	AppliedValue     string `json:"applied_value"`
	Notes            string `json:"notes"`
	Company          string `json:"company"`
	Title            string `json:"title"`
	JobURL           string `json:"job_url"`
	LocationText     string `json:"location_text"`
	Source           string `json:"source"`
	CompensationText string `json:"compensation_text"`
	UpdatedAt        string `json:"updated_at"`
}

type savedApplicationJSON struct {
	OK bool `json:"ok"`
	applicationJSON
	Changed []string `json:"changed"`
	SavedAt string   `json:"saved_at"`
}

type followUpJSON struct {
	ID            int64   `json:"id"`
	ApplicationID int64   `json:"application_id"`
	Company       string  `json:"company"`
	Title         string  `json:"title"`
	DueOn         string  `json:"due_on"`
	Note          string  `json:"note"`
	IsCompleted   bool    `json:"is_completed"`
	CompletedAt   *string `json:"completed_at"`
}

type leadJSON struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	Location        string  `json:"location"`
	WorkMode        string  `json:"work_mode"`
	WorkModeLabel   string  `json:"work_mode_label"`
	Source          string  `json:"source"`
	SourceLabel     string  `json:"source_label"`
	JobURL          string  `json:"job_url"`
	IsScamSuspected bool    `json:"is_scam_suspected"`
	IsArchived      bool    `json:"is_archived"`
	ArchivedAt      *string `json:"archived_at"`
	DiscoveredAt    string  `json:"discovered_at"`
}

// formatTime renders t in loc as the display and input forms.
func formatTime(t *time.Time, loc *time.Location) (display, value string) {
	if t == nil {
		return noValue, ""
	}
	local := t.In(loc)
	return local.Format(displayLayout), local.Format(valueLayout)
}

func optionalTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}

func (s *Server) application(d models.ApplicationDetail) applicationJSON {
	app := d.Application
	out := applicationJSON{
		ID:               app.ID,
		JobID:            app.JobID,
		Status:           string(app.Status),
		StatusLabel:      app.Status.Label(),
		NextAction:       app.NextAction,
		Notes:            app.Notes,
		Company:          d.Job.Company,
		Title:            d.Job.Title,
		JobURL:           app.JobURL,
		LocationText:     app.LocationText,
		Source:           app.Source,
		CompensationText: app.CompensationText,
		UpdatedAt:        app.UpdatedAt.In(s.loc).Format(time.RFC3339),
	}

	out.FollowUpDisplay, out.FollowUpValue = formatTime(app.FollowUpAt, s.loc)
	out.AppliedDisplay, out.AppliedValue = formatTime(app.AppliedAt, s.loc)
	if day := app.FollowUpOn(s.loc); day != nil {
		out.FollowUpOn = day.String()
	}
	if out.JobURL == "" {
		out.JobURL = d.Job.JobURL
	}
	if out.LocationText == "" {
		out.LocationText = d.Job.Location
	}

	return out
}

func (s *Server) saved(res *service.ApplicationResult) savedApplicationJSON {
	changed := res.Changed
	if changed == nil {
		changed = []string{}
	}
	return savedApplicationJSON{
		OK:              true,
		applicationJSON: s.application(res.ApplicationDetail),
		Changed:         changed,
		SavedAt:         res.SavedAt.In(s.loc).Format(time.RFC3339),
	}
}

func (s *Server) followUp(f models.FollowUpItem) followUpJSON {
	return followUpJSON{
		ID:            f.ID,
		ApplicationID: f.ApplicationID,
		Company:       f.Company,
		Title:         f.Title,
		DueOn:         f.DueOn.String(),
		Note:          f.Note,
		IsCompleted:   f.IsCompleted,
		CompletedAt:   optionalTime(f.CompletedAt, s.loc),
	}
}

func (s *Server) lead(l models.JobLead) leadJSON {
	return leadJSON{
		ID:              l.ID,
		Title:           l.Title,
		Company:         l.Company,
		Location:        l.Location,
		WorkMode:        string(l.WorkMode),
		WorkModeLabel:   models.WorkModeDisplayNames[l.WorkMode],
		Source:          string(l.Source),
		SourceLabel:     models.LeadSourceDisplayNames[l.Source],
		JobURL:          l.JobURL,
		IsScamSuspected: l.IsScamSuspected,
		IsArchived:      l.IsArchived,
		ArchivedAt:      optionalTime(l.ArchivedAt, s.loc),
		DiscoveredAt:    l.DiscoveredAt.In(s.loc).Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	if fields == nil {
		fields = map[string]string{}
	}
	writeJSON(w, status, errorResponse{Error: msg, FieldErrors: fields})
}

// writeError maps err onto the response status and body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *tracker.ValidationError
		bad  badPayload
	)

	switch {
	case errors.As(err, &bad):
		writeFailure(w, http.StatusBadRequest, bad.Error(), nil)
	case errors.As(err, &verr):
		writeFailure(w, http.StatusBadRequest, verr.Message, verr.Fields)
	case errors.Is(err, tracker.ErrTerminalLocked):
		writeFailure(w, http.StatusBadRequest, "Status is locked in a terminal state.", nil)
	case errors.Is(err, tracker.ErrNoUpdates):
		writeFailure(w, http.StatusBadRequest, "No updates supplied.", nil)
	case errors.Is(err, tracker.ErrUnknownPreset):
		writeFailure(w, http.StatusBadRequest, "Invalid follow-up preset.", nil)
	case errors.Is(err, service.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Not found.", nil)
	case errors.Is(err, service.ErrDuplicate):
		writeFailure(w, http.StatusConflict, "An application for this job lead already exists.", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeFailure(w, http.StatusUnauthorized, "Invalid username or password.", nil)
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeFailure(w, http.StatusInternalServerError, "Internal server error.", nil)
	}
}
