package api

import (
	"net/http"
)

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	archived := truthy(r.URL.Query().Get("archived"))

	leads, err := s.svc.ListLeads(r.Context(), currentUser(r), archived)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]leadJSON, 0, len(leads))
	for _, l := range leads {
		out = append(out, s.lead(l))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "archived": archived, "items": out})
}

func (s *Server) handleConvertLead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.ConvertLead(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, s.saved(res))
}

func (s *Server) handleArchiveLead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lead, err := s.svc.ArchiveLead(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		leadJSON
	}{OK: true, leadJSON: s.lead(*lead)})
}
