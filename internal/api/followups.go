package api

import (
	"net/http"
)

func (s *Server) handleListFollowUps(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, err := s.svc.ListFollowUps(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]followUpJSON, 0, len(items))
	for _, item := range items {
		out = append(out, s.followUp(item))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "items": out})
}

func (s *Server) handleCreateFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := decodePayload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dueOn, err := p.text("due_on")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	note, err := p.text("note")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.svc.CreateFollowUp(r.Context(), currentUser(r), id, dueOn, note)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		OK bool `json:"ok"`
		followUpJSON
	}{OK: true, followUpJSON: s.followUp(*item)})
}

func (s *Server) handleUpdateFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := decodePayload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := p.followUpUpdate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.svc.UpdateFollowUp(r.Context(), currentUser(r), id, u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		followUpJSON
	}{OK: true, followUpJSON: s.followUp(*item)})
}

func (s *Server) handleDeleteFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteFollowUp(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "id": id})
}
