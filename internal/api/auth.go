package api

import (
	"net/http"
)

type userJSON struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	username, _ := p.text("username")
	password, _ := p.text("password")
	if username == "" || password == "" {
		fields := map[string]string{}
		if username == "" {
			fields["username"] = "This field is required."
		}
		if password == "" {
			fields["password"] = "This field is required."
		}
		writeFailure(w, http.StatusBadRequest, "Please correct the errors below.", fields)
		return
	}

	user, err := s.svc.Login(r.Context(), username, password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"token": user.APIToken,
		"user": userJSON{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			IsStaff:     user.IsStaff,
			IsSuperuser: user.IsSuperuser,
		},
	})
}
