// Package api exposes HTTP handlers that turn UI actions into session events.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/listview"
	"example.com/workoutmap/internal/mapview"
	"example.com/workoutmap/internal/persistence"
	"example.com/workoutmap/internal/session"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Session is the event loop the handlers dispatch to.
type Session interface {
	Dispatch(ctx context.Context, ev session.Event) (session.Outcome, error)
	Snapshot() session.Snapshot
}

// MapSource exposes the drawn map.
type MapSource interface {
	Snapshot() mapview.Snapshot
}

// ListSource exposes the rendered list.
type ListSource interface {
	Entries() []listview.Entry
	RenderHTML(w io.Writer) error
}

// Handler coordinates HTTP requests with the session.
type Handler struct {
	session Session
	maps    MapSource
	list    ListSource
}

// NewHandler builds a Handler.
func NewHandler(s Session, maps MapSource, list ListSource) *Handler {
	return &Handler{session: s, maps: maps, list: list}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/session", h.getSession)
	mux.HandleFunc("/v1/map", h.getMap)
	mux.HandleFunc("/v1/map/clicks", h.mapClick)
	mux.HandleFunc("/v1/form", h.submitForm)
	mux.HandleFunc("/v1/form/type", h.changeType)
	mux.HandleFunc("/v1/form/cancel", h.cancelForm)
	mux.HandleFunc("/v1/list", h.getList)
	mux.HandleFunc("/v1/list.html", h.getListHTML)
	mux.HandleFunc("/v1/list/clicks", h.listClick)
	mux.HandleFunc("/v1/workouts", h.listWorkouts)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(h.session.Snapshot().View))
}

func (h *Handler) getMap(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.maps.Snapshot())
}

func (h *Handler) getList(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Entries: h.list.Entries()})
}

func (h *Handler) getListHTML(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	var buf bytes.Buffer
	if err := h.list.RenderHTML(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) mapClick(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req MapClickRequest
	if !decode(w, r, &req) {
		return
	}
	pos := domain.Position{Lat: req.Lat, Lng: req.Lng}
	if err := pos.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", err.Error())
		return
	}

	out, ok := h.dispatch(w, r, session.MapClicked{Position: pos})
	if !ok {
		return
	}
	if out.Ignored {
		writeError(w, http.StatusConflict, "map_not_ready", "the map is not ready for clicks")
		return
	}
	writeJSON(w, http.StatusOK, toOutcomeResponse(out))
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req FormRequest
	if !decode(w, r, &req) {
		return
	}

	out, ok := h.dispatch(w, r, session.FormSubmitted{Form: domain.FormInput{
		Type:      string(req.Type),
		Distance:  string(req.Distance),
		Duration:  string(req.Duration),
		Cadence:   string(req.Cadence),
		Elevation: string(req.Elevation),
	}})
	if !ok {
		return
	}

	switch {
	case out.Ignored:
		writeError(w, http.StatusConflict, "form_closed", "click the map to open the form first")
	case errors.Is(out.Rejected, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", out.Rejected.Error())
	default:
		writeJSON(w, http.StatusCreated, toOutcomeResponse(out))
	}
}

func (h *Handler) changeType(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req TypeRequest
	if !decode(w, r, &req) {
		return
	}
	kind, err := domain.ParseKind(req.Type)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", err.Error())
		return
	}

	out, ok := h.dispatch(w, r, session.TypeChanged{Kind: kind})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOutcomeResponse(out))
}

func (h *Handler) cancelForm(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	out, ok := h.dispatch(w, r, session.FormCancelled{})
	if !ok {
		return
	}
	if out.Ignored {
		writeError(w, http.StatusConflict, "form_closed", "the form is not open")
		return
	}
	writeJSON(w, http.StatusOK, toOutcomeResponse(out))
}

func (h *Handler) listClick(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var click listview.Click
	if !decode(w, r, &click) {
		return
	}
	out, ok := h.dispatch(w, r, session.ListClicked{Click: click})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOutcomeResponse(out))
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > maxPageSize {
				parsed = maxPageSize
			}
			limit = parsed
		}
	}

	cursor, err := persistence.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	page, next := persistence.Page(h.session.Snapshot().Workouts, cursor, limit)
	items := make([]WorkoutView, 0, len(page))
	for _, wk := range page {
		items = append(items, toWorkoutView(wk))
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{
		Items:      items,
		NextCursor: persistence.FormatCursor(next),
	})
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, ev session.Event) (session.Outcome, bool) {
	out, err := h.session.Dispatch(r.Context(), ev)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
		return session.Outcome{}, false
	}
	return out, true
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	return true
}

// FormValue accepts a JSON string or number and keeps its text, so coercion stays
// with the factory.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

// MapClickRequest is the payload for POST /v1/map/clicks.
type MapClickRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FormRequest is the payload for POST /v1/form.
type FormRequest struct {
	Type      FormValue `json:"type"`
	Distance  FormValue `json:"distance"`
	Duration  FormValue `json:"duration"`
	Cadence   FormValue `json:"cadence"`
	Elevation FormValue `json:"elevation"`
}

// TypeRequest is the payload for POST /v1/form/type.
type TypeRequest struct {
	Type string `json:"type"`
}

// SessionView describes the session state.
type SessionView struct {
	Mode     string           `json:"mode"`
	MapReady bool             `json:"map_ready"`
	Form     session.FormView `json:"form"`
	Workouts int              `json:"workouts"`
}

// OutcomeResponse describes what an action did.
type OutcomeResponse struct {
	Session  SessionView  `json:"session"`
	Alerts   []string     `json:"alerts,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Ignored  bool         `json:"ignored,omitempty"`
	Workout  *WorkoutView `json:"workout,omitempty"`
}

// WorkoutView exposes full details about a workout.
type WorkoutView struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Description    string          `json:"description"`
	CreatedAt      time.Time       `json:"created_at"`
	Position       domain.Position `json:"position"`
	DistanceKm     float64         `json:"distance_km"`
	DurationMin    float64         `json:"duration_min"`
	CadenceSpm     *int            `json:"cadence_spm,omitempty"`
	PaceMinPerKm   *float64        `json:"pace_min_per_km,omitempty"`
	ElevationGainM *float64        `json:"elevation_gain_m,omitempty"`
	SpeedKmPerH    *float64        `json:"speed_km_per_h,omitempty"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// ListResponse carries the rendered list entries.
type ListResponse struct {
	Entries []listview.Entry `json:"entries"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toSessionView(v session.View) SessionView {
	return SessionView{
		Mode:     string(v.Mode),
		MapReady: v.MapReady,
		Form:     v.Form,
		Workouts: v.Workouts,
	}
}

func toOutcomeResponse(out session.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		Session:  toSessionView(out.View),
		Alerts:   out.Alerts,
		Warnings: out.Warnings,
		Ignored:  out.Ignored,
	}
	if out.Created != nil {
		view := toWorkoutView(*out.Created)
		resp.Workout = &view
	}
	return resp
}

func toWorkoutView(w domain.Workout) WorkoutView {
	view := WorkoutView{
		ID:          w.ID,
		Kind:        string(w.Kind),
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		Position:    w.Position,
		DistanceKm:  w.DistanceKm,
		DurationMin: w.DurationMin,
	}
	if w.Running != nil {
		cadence, pace := w.Running.CadenceSpm, w.Running.PaceMinPerKm
		view.CadenceSpm, view.PaceMinPerKm = &cadence, &pace
	}
	if w.Cycling != nil {
		elevation, speed := w.Cycling.ElevationGainM, w.Cycling.SpeedKmPerH
		view.ElevationGainM, view.SpeedKmPerH = &elevation, &speed
	}
	return view
}
