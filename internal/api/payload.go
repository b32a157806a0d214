package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"jobtracker/internal/service"
	"jobtracker/internal/tracker"
)

const maxBodyBytes = 1 << 20

// badPayload is a body that could not be decoded at all.
type badPayload string

func (e badPayload) Error() string { return string(e) }

const (
	errMalformedJSON badPayload = "Invalid JSON payload."
	errMalformedForm badPayload = "Invalid form payload."
)

// payload is a decoded request body. JSON objects and form posts are read
// through the same accessors.
type payload struct {
	values map[string]interface{}
}

func decodePayload(w http.ResponseWriter, r *http.Request) (*payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeJSON(r.Body)
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, errMalformedForm
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, errMalformedForm
	}

	p := &payload{values: make(map[string]interface{}, len(r.PostForm))}
	for key, vals := range r.PostForm {
		if len(vals) > 0 {
			p.values[key] = vals[0]
		}
	}
	return p, nil
}

func decodeJSON(body io.Reader) (*payload, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errMalformedJSON
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &payload{values: map[string]interface{}{}}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var values map[string]interface{}
	if err := dec.Decode(&values); err != nil || values == nil {
		return nil, errMalformedJSON
	}
	return &payload{values: values}, nil
}

func (p *payload) has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// str reads a text field. null reads as the empty string.
func (p *payload) str(key string) (tracker.Opt[string], error) {
	v, ok := p.values[key]
	if !ok {
		return tracker.Opt[string]{}, nil
	}

	switch val := v.(type) {
	case nil:
		return tracker.Some(""), nil
	case string:
		return tracker.Some(val), nil
	case json.Number:
		return tracker.Some(val.String()), nil
	case bool:
		return tracker.Some(strconv.FormatBool(val)), nil
	}
	return tracker.Opt[string]{}, tracker.FieldError(key, "Enter a valid value.")
}

func (p *payload) boolean(key string) (tracker.Opt[bool], error) {
	v, ok := p.values[key]
	if !ok {
		return tracker.Opt[bool]{}, nil
	}

	switch val := v.(type) {
	case nil:
		return tracker.Some(false), nil
	case bool:
		return tracker.Some(val), nil
	case string:
		return tracker.Some(truthy(val)), nil
	case json.Number:
		return tracker.Some(val.String() != "0"), nil
	}
	return tracker.Opt[bool]{}, tracker.FieldError(key, "Must be true or false.")
}

func (p *payload) integer(key string) (tracker.Opt[int], error) {
	v, ok := p.values[key]
	if !ok {
		return tracker.Opt[int]{}, nil
	}

	var text string
	switch val := v.(type) {
	case json.Number:
		text = val.String()
	case string:
		text = strings.TrimSpace(val)
	default:
		return tracker.Opt[int]{}, tracker.FieldError(key, "Enter a whole number.")
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return tracker.Opt[int]{}, tracker.FieldError(key, "Enter a whole number.")
	}
	return tracker.Some(n), nil
}

// object returns a nested JSON object. Form posts never carry one.
func (p *payload) object(key string) (*payload, bool) {
	v, ok := p.values[key].(map[string]interface{})
	if !ok {
		return nil, false
	}
	return &payload{values: v}, true
}

// text reads a field that is absent or empty in the same way.
func (p *payload) text(key string) (string, error) {
	v, err := p.str(key)
	return v.Value, err
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

var changeKeys = []string{
	"status", "next_action", "notes", "follow_up_on", "job_url", "source",
	"compensation_text", "location_text", "location", "company", "title",
}

// changeSet maps a partial update body onto the engine's change set.
func (p *payload) changeSet() (tracker.ChangeSet, error) {
	var cs tracker.ChangeSet
	fields := map[string]*tracker.Opt[string]{
		"status":            &cs.Status,
		"next_action":       &cs.NextAction,
		"notes":             &cs.Notes,
		"job_url":           &cs.JobURL,
		"source":            &cs.Source,
		"compensation_text": &cs.CompensationText,
		"location_text":     &cs.LocationText,
		"location":          &cs.Location,
		"company":           &cs.Company,
		"title":             &cs.Title,
	}

	for _, key := range changeKeys {
		v, err := p.str(key)
		if err != nil {
			return cs, err
		}
		if !v.Set {
			continue
		}
		if key == "follow_up_on" {
			cs.FollowUp = tracker.FollowUpText(v.Value)
			continue
		}
		*fields[key] = v
	}

	return cs, nil
}

func (p *payload) editForm() (service.EditForm, error) {
	var form service.EditForm
	fields := []struct {
		key  string
		dest *string
	}{
		{"status", &form.Status},
		{"next_action", &form.NextAction},
		{"follow_up_on", &form.FollowUpOn},
		{"notes", &form.Notes},
		{"job_url", &form.JobURL},
		{"source", &form.Source},
		{"compensation_text", &form.CompensationText},
		{"company", &form.Company},
		{"title", &form.Title},
		{"location", &form.Location},
	}

	for _, f := range fields {
		v, err := p.text(f.key)
		if err != nil {
			return form, err
		}
		*f.dest = v
	}
	return form, nil
}

// quickAction reads the inline update body. The followup object takes the
// place of the legacy preset keys.
func (p *payload) quickAction() (service.QuickAction, error) {
	var (
		q   service.QuickAction
		err error
	)

	if q.Status, err = p.str("status"); err != nil {
		return q, err
	}
	if q.Notes, err = p.str("notes"); err != nil {
		return q, err
	}
	if q.FollowUpAt, err = p.str("follow_up_at"); err != nil {
		return q, err
	}

	if obj, ok := p.object("followup"); ok {
		q.FollowUpObject = true
		if q.Preset, err = obj.text("preset"); err != nil {
			return q, err
		}
		if q.Date, err = obj.text("date"); err != nil {
			return q, err
		}
		return q, nil
	}
	if p.has("followup") && p.values["followup"] != nil {
		return q, tracker.FieldError("followup", "Expected an object with preset and date.")
	}

	for _, key := range []string{"followup_preset", "follow_up_preset"} {
		preset, err := p.text(key)
		if err != nil {
			return q, err
		}
		if preset != "" {
			q.Preset = preset
			break
		}
	}

	clearFlag, err := p.boolean("clear_follow_up")
	if err != nil {
		return q, err
	}
	q.Clear = clearFlag.Value

	return q, nil
}

func (p *payload) newApplication() (service.NewApplication, error) {
	var in service.NewApplication
	fields := []struct {
		key  string
		dest *string
	}{
		{"company", &in.Company},
		{"title", &in.Title},
		{"location", &in.Location},
		{"work_mode", &in.WorkMode},
		{"source", &in.Source},
		{"job_url", &in.JobURL},
		{"jd_text", &in.JDText},
		{"status", &in.Status},
		{"notes", &in.Notes},
	}

	for _, f := range fields {
		v, err := p.text(f.key)
		if err != nil {
			return in, err
		}
		*f.dest = v
	}
	return in, nil
}

func (p *payload) followUpUpdate() (tracker.FollowUpUpdate, error) {
	var (
		u   tracker.FollowUpUpdate
		err error
	)
	if u.DueOn, err = p.str("due_on"); err != nil {
		return u, err
	}
	if u.Note, err = p.str("note"); err != nil {
		return u, err
	}
	if u.IsCompleted, err = p.boolean("is_completed"); err != nil {
		return u, err
	}
	return u, nil
}
