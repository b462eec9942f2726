package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/quakesense-service/internal/catalog"
	"github.com/couchcryptid/quakesense-service/internal/domain"
	"github.com/couchcryptid/quakesense-service/internal/mapview"
	"github.com/couchcryptid/quakesense-service/internal/service"
)

// Analyzer is the read model the API serves.
type Analyzer interface {
	sharedobs.ReadinessChecker
	Events(ctx context.Context) ([]domain.Event, error)
	Event(ctx context.Context, id string) (domain.Event, error)
	Stations(ctx context.Context, id string) ([]domain.Station, error)
	Station(ctx context.Context, id, code string) (domain.Station, error)
	Descriptors(ctx context.Context) ([]domain.FeatureDescriptor, error)
	Feature(ctx context.Context, id string, f domain.Feature) (service.FeatureView, error)
	Summary(ctx context.Context, id string) (domain.Summary, error)
	StationMap(ctx context.Context, id string) (mapview.Artifact, error)
}

type apiHandler struct {
	analyzer Analyzer
	logger   *slog.Logger
}

func (h *apiHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/events", h.listEvents)
	mux.HandleFunc("GET /api/v1/events/{id}", h.getEvent)
	mux.HandleFunc("GET /api/v1/events/{id}/features/{feature}", h.getFeature)
	mux.HandleFunc("GET /api/v1/events/{id}/summary", h.getSummary)
	mux.HandleFunc("GET /api/v1/events/{id}/stations", h.listStations)
	mux.HandleFunc("GET /api/v1/events/{id}/stations/{code}", h.getStation)
	mux.HandleFunc("GET /api/v1/events/{id}/map", h.getMap)
	mux.HandleFunc("GET /api/v1/features", h.listFeatures)
}

type eventList struct {
	Count  int            `json:"count"`
	Events []domain.Event `json:"events"`
}

func (h *apiHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.analyzer.Events(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, eventList{Count: len(events), Events: events})
}

func (h *apiHandler) getEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.analyzer.Event(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ev)
}

func (h *apiHandler) getFeature(w http.ResponseWriter, r *http.Request) {
	f, err := domain.ParseFeature(r.PathValue("feature"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.analyzer.Feature(r.Context(), r.PathValue("id"), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *apiHandler) getSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.analyzer.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

type stationList struct {
	EventID  string           `json:"event_id"`
	Count    int              `json:"count"`
	Stations []domain.Station `json:"stations"`
}

func (h *apiHandler) listStations(w http.ResponseWriter, r *http.Request) {
	id := domain.NormalizeEventID(r.PathValue("id"))
	stations, err := h.analyzer.Stations(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stationList{EventID: id, Count: len(stations), Stations: stations})
}

func (h *apiHandler) getStation(w http.ResponseWriter, r *http.Request) {
	s, err := h.analyzer.Station(r.Context(), r.PathValue("id"), r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *apiHandler) getMap(w http.ResponseWriter, r *http.Request) {
	art, err := h.analyzer.StationMap(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Page); err != nil {
		h.logger.Warn("write map response", "path", art.Path, "error", err)
	}
}

type featureInfo struct {
	Feature domain.Feature `json:"feature"`
	Index   int            `json:"index"`
	Title   string         `json:"title"`
	Body    string         `json:"body,omitempty"`
}

// listFeatures always lists the full feature set; descriptions are attached
// when the resource is readable.
func (h *apiHandler) listFeatures(w http.ResponseWriter, r *http.Request) {
	descriptors, err := h.analyzer.Descriptors(r.Context())
	if err != nil {
		h.logger.Warn("feature descriptions unavailable", "error", err)
	}
	features := domain.Features()
	out := make([]featureInfo, len(features))
	for i, f := range features {
		d := catalog.Describe(descriptors, f)
		out[i] = featureInfo{Feature: f, Index: i, Title: d.Title, Body: d.Body}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"features": out})
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError renders an error as a placeholder body with a status derived
// from the domain error taxonomy.
func (h *apiHandler) writeError(w http.ResponseWriter, err error) {
	code := service.Outcome(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownFeature):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMissingResource):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
		code = "cancelled"
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	h.writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

// writeJSON encodes v before committing the status so an unencodable value
// becomes a 500 placeholder instead of an empty 200.
func (h *apiHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode response", "status", status, "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: "encode", Message: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Warn("write response", "error", err)
	}
}
