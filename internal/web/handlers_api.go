package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/overlay"
)

// PolesResponse lists every row of a session's table.
type PolesResponse struct {
	SessionID string         `json:"session_id"`
	Count     int            `json:"count"`
	Poles     []core.RowView `json:"poles"`
}

// EditRequest is the body of PUT /api/sessions/{id}/poles/{index}.
type EditRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sum, err := s.service.Session(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Close(r.Context(), sessionID(r)); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPoles(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	rows, err := s.service.Rows(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, PolesResponse{SessionID: id, Count: len(rows), Poles: rows})
}

func (s *Server) handleGetPole(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(chi.URLParam(r, "index"))
	if err == nil {
		var row core.RowView
		if row, err = s.service.Row(r.Context(), sessionID(r), index); err == nil {
			writeJSON(w, http.StatusOK, row)
			return
		}
	}
	respondError(w, r, err, statusFor(err))
}

// handleEditPole moves one pole and returns the fresh overlays.
func (s *Server) handleEditPole(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	res, err := s.editFromJSON(w, r, id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) editFromJSON(w http.ResponseWriter, r *http.Request, id string) (*core.RenderResult, error) {
	index, err := parseIndex(chi.URLParam(r, "index"))
	if err != nil {
		return nil, err
	}

	var req EditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, badRequest("latitude and longitude are required")
	}

	sum, err := s.service.Session(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := checkIndex(sum, index); err != nil {
		return nil, err
	}
	return s.service.EditCoordinates(r.Context(), id, index, *req.Latitude, *req.Longitude)
}

func (s *Server) handleOverlays(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Render(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGeoJSON serves the current label anchors as a FeatureCollection for
// map clients that consume GeoJSON layers.
func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Render(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(overlay.Features(res.Directives)); err != nil {
		slog.Error("geojson encode error", "error", err)
	}
}

// handleUpdateSettings merges the body over the current settings, so a
// client may send only the fields it changes.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionID(r)

	sum, err := s.service.Session(ctx, id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	settings := sum.Settings
	if err := decodeJSON(w, r, &settings); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	res, err := s.service.UpdateSettings(ctx, id, settings)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("json body: %v", err)
	}
	return nil
}
