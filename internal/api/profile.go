package api

import (
	"encoding/json"
	"io"
	"net/http"

	"jobtracker/internal/models"
)

type profileResponse struct {
	OK       bool   `json:"ok"`
	Username string `json:"username"`
	Initials string `json:"initials"`
	*models.UserProfile
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	p, err := s.svc.Profile(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.profile(user, p))
}

// handlePutProfile overlays the JSON body on the stored profile, so fields
// left out keep their values.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	cur, err := s.svc.Profile(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errMalformedJSON)
		return
	}

	next := *cur
	if err := json.Unmarshal(raw, &next); err != nil {
		s.writeError(w, r, errMalformedJSON)
		return
	}

	saved, err := s.svc.UpdateProfile(r.Context(), user, next)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.profile(user, saved))
}

func (s *Server) profile(user *models.User, p *models.UserProfile) profileResponse {
	return profileResponse{
		OK:          true,
		Username:    user.Username,
		Initials:    models.Initials(p.FullName, user.Username),
		UserProfile: p,
	}
}
