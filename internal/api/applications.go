package api

import (
	"bytes"
	"net/http"

	"jobtracker/internal/models"
	"jobtracker/internal/service"
	"jobtracker/internal/tracker"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type boardColumn struct {
	Status string            `json:"status"`
	Label  string            `json:"label"`
	Items  []applicationJSON `json:"items"`
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.NormalizeFilter(q.Get("view"), q.Get("q"), q.Get("status"), q.Get("due"), q.Get("sort"))

	details, err := s.svc.List(r.Context(), currentUser(r), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]applicationJSON, 0, len(details))
	for _, d := range details {
		items = append(items, s.application(d))
	}

	resp := map[string]interface{}{
		"ok":     true,
		"view":   filter.View,
		"q":      filter.Query,
		"status": filter.Status,
		"due":    filter.Due,
		"sort":   filter.Sort,
		"items":  items,
	}

	if filter.View == models.ViewBoard {
		columns := make([]boardColumn, 0, len(models.Statuses()))
		index := make(map[string]int)
		for _, st := range models.Statuses() {
			index[string(st)] = len(columns)
			columns = append(columns, boardColumn{Status: string(st), Label: st.Label(), Items: []applicationJSON{}})
		}
		for _, item := range items {
			col := &columns[index[item.Status]]
			col.Items = append(col.Items, item)
		}
		resp["columns"] = columns
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.SidebarCounts(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		*models.SidebarCounts
	}{OK: true, SidebarCounts: counts})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.ExportCSV(r.Context(), currentUser(r), &buf); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="applications.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write export", zap.Error(err))
	}
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	in, err := p.newApplication()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Create(r.Context(), currentUser(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, s.saved(res))
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	detail, err := s.svc.Get(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		applicationJSON
	}{OK: true, applicationJSON: s.application(*detail)})
}

// updateHandler decodes the body, runs one update pathway and renders the
// saved state.
func (s *Server) updateHandler(run func(r *http.Request, id int64, p *payload) (*service.ApplicationResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		res, err := run(r, id, p)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, s.saved(res))
	}
}

func (s *Server) editApplication(r *http.Request, id int64, p *payload) (*service.ApplicationResult, error) {
	form, err := p.editForm()
	if err != nil {
		return nil, err
	}
	return s.svc.Edit(r.Context(), currentUser(r), id, form)
}

func (s *Server) patchApplication(r *http.Request, id int64, p *payload) (*service.ApplicationResult, error) {
	cs, err := p.changeSet()
	if err != nil {
		return nil, err
	}

	force := truthy(r.URL.Query().Get("force"))
	if bodyForce, err := p.boolean("force"); err != nil {
		return nil, err
	} else if bodyForce.Set {
		force = force || bodyForce.Value
	}

	return s.svc.Patch(r.Context(), currentUser(r), id, cs, force)
}

func (s *Server) quickAction(r *http.Request, id int64, p *payload) (*service.ApplicationResult, error) {
	q, err := p.quickAction()
	if err != nil {
		return nil, err
	}
	return s.svc.QuickAction(r.Context(), currentUser(r), id, q)
}

func (s *Server) bumpFollowUp(r *http.Request, id int64, p *payload) (*service.ApplicationResult, error) {
	if raw := chi.URLParam(r, "days"); raw != "" {
		p.values["days"] = raw
	}
	days, err := p.integer("days")
	if err != nil {
		return nil, err
	}
	if !days.Set {
		return nil, tracker.FieldError("days", "This field is required.")
	}
	return s.svc.BumpFollowUp(r.Context(), currentUser(r), id, days.Value)
}

func (s *Server) setFollowUp(r *http.Request, id int64, p *payload) (*service.ApplicationResult, error) {
	raw, err := p.text("follow_up_at")
	if err != nil {
		return nil, err
	}
	return s.svc.SetFollowUp(r.Context(), currentUser(r), id, raw)
}

// setStatus changes only the status. Unknown codes are not routes.
func (s *Server) setStatus(r *http.Request, id int64, p *payload) (*service.ApplicationResult, error) {
	status := chi.URLParam(r, "status")
	if status == "" {
		var err error
		if status, err = p.text("status"); err != nil {
			return nil, err
		}
	}
	if !models.IsValidStatus(status) {
		return nil, service.ErrNotFound
	}
	cs := tracker.ChangeSet{Status: tracker.Some(status)}
	return s.svc.Patch(r.Context(), currentUser(r), id, cs, false)
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.Delete(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "id": id})
}
