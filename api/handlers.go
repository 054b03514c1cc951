// Package api provides HTTP handlers, middleware, and routing for the projects preferences service.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/projectprefs"
)

// preferencesResponse reports every projects preference; unset ones are null.
type preferencesResponse struct {
	DefaultFilter *string `json:"defaultFilter"`
	View          *string `json:"view"`
	Visualization *string `json:"visualization"`
	Sort          *string `json:"sort"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type sortingOption struct {
	projectprefs.SortingMetric
	Label string `json:"label"`
}

type parsedSorting struct {
	projectprefs.Sorting
	Label string `json:"label"`
}

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func optional(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}

// handleGetPreferences reports the stored preferences of the request origin.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs := s.preferences(r)
	ctx := r.Context()

	s.respondWithJSON(w, r, http.StatusOK, preferencesResponse{
		DefaultFilter: optional(prefs.DefaultFilter(ctx)),
		View:          optional(prefs.View(ctx)),
		Visualization: optional(prefs.Visualization(ctx)),
		Sort:          optional(prefs.Sort(ctx)),
	})
}

// handleSaveDefaultFilter stores "favorite" or "all" as the default filter.
func (s *Server) handleSaveDefaultFilter(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeValue(w, r)
	if !ok {
		return
	}

	prefs := s.preferences(r)
	switch req.Value {
	case projectprefs.FilterFavorite:
		prefs.SaveFavorite(r.Context())
	case projectprefs.FilterAll:
		prefs.SaveAll(r.Context())
	default:
		err := fmt.Errorf("%w: default filter must be %q or %q", projectprefs.ErrInvalidValue, projectprefs.FilterFavorite, projectprefs.FilterAll)
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid default filter", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSavePreference stores the view, visualization or sort preference.
// The write is best-effort, a full store still answers 204.
func (s *Server) handleSavePreference(w http.ResponseWriter, r *http.Request) {
	save, ok := s.saver(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeValue(w, r)
	if !ok {
		return
	}
	save(req.Value)
	w.WriteHeader(http.StatusNoContent)
}

// handleClearPreference removes the view, visualization or sort preference.
func (s *Server) handleClearPreference(w http.ResponseWriter, r *http.Request) {
	save, ok := s.saver(w, r)
	if !ok {
		return
	}
	save("")
	w.WriteHeader(http.StatusNoContent)
}

// saver resolves the {name} URL parameter to the matching facade setter.
func (s *Server) saver(w http.ResponseWriter, r *http.Request) (func(string), bool) {
	prefs := s.preferences(r)
	ctx := r.Context()

	switch name := chi.URLParam(r, "name"); name {
	case "view":
		return func(v string) { prefs.SaveView(ctx, v) }, true
	case "visualization":
		return func(v string) { prefs.SaveVisualization(ctx, v) }, true
	case "sort":
		return func(v string) { prefs.SaveSort(ctx, v) }, true
	default:
		s.respondWithError(w, r, http.StatusNotFound, "Unknown preference", fmt.Errorf("%w: %q", projectprefs.ErrInvalidInput, name))
		return nil, false
	}
}

func (s *Server) decodeValue(w http.ResponseWriter, r *http.Request) (valueRequest, bool) {
	var req valueRequest

	// Limit the size of the request body to 1MB
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return req, false
	}
	return req, true
}

// handleSortingMetrics lists the sorting options of the requested view with their labels.
func (s *Server) handleSortingMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := projectprefs.SortingMetricsFor(r.URL.Query().Get("view"))
	options := make([]sortingOption, 0, len(metrics))
	for _, m := range metrics {
		options = append(options, sortingOption{
			SortingMetric: m,
			Label:         projectprefs.LocalizeSorting(s.translator, m.Value),
		})
	}
	s.respondWithJSON(w, r, http.StatusOK, options)
}

// handleParseSorting splits the sort query parameter into field and direction.
func (s *Server) handleParseSorting(w http.ResponseWriter, r *http.Request) {
	sorting := projectprefs.ParseSorting(r.URL.Query().Get("sort"))
	s.respondWithJSON(w, r, http.StatusOK, parsedSorting{
		Sorting: sorting,
		Label:   projectprefs.LocalizeSorting(s.translator, sorting.Value),
	})
}

// handleSwitchSorting mirrors the sort query parameter to the other period.
func (s *Server) handleSwitchSorting(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, map[string]string{
		"sort": projectprefs.SwitchSorting(r.URL.Query().Get("sort")),
	})
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.options("projects.view", projectprefs.Views()))
}

func (s *Server) handleVisualizations(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.options("projects.visualization", projectprefs.Visualizations()))
}

func (s *Server) options(namespace string, values []string) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		out = append(out, option{Value: v, Label: s.translator.Translate(namespace, v)})
	}
	return out
}

// respondWithError is a helper to send JSON error responses.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := map[string]any{
		"error": map[string]string{
			"message": message,
		},
	}
	if err != nil {
		resp["error"].(map[string]string)["details"] = err.Error()
	}
	s.logger.Warn("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	s.respondWithJSON(w, r, status, resp)
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
