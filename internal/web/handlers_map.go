package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/overlay"
	"github.com/JonMunkholm/PoleMap/internal/poles"
	"github.com/JonMunkholm/PoleMap/internal/web/templates"
)

// handleMapPage renders the map. ?row=N pre-fills the edit form with pole N.
func (s *Server) handleMapPage(w http.ResponseWriter, r *http.Request) {
	row := 0
	if v := r.URL.Query().Get("row"); v != "" {
		i, err := parseIndex(v)
		if err != nil {
			s.renderMap(w, r, 0, err, http.StatusBadRequest)
			return
		}
		row = i
	}
	s.renderMap(w, r, row, nil, http.StatusOK)
}

// handleSettingsForm applies the settings form and redirects back to the map.
func (s *Server) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	settings, err := parseSettingsForm(w, r)
	if err == nil {
		_, err = s.service.UpdateSettings(r.Context(), sessionID(r), settings)
	}
	if err != nil {
		s.renderMap(w, r, 0, err, statusFor(err))
		return
	}
	http.Redirect(w, r, "/map/"+sessionID(r), http.StatusSeeOther)
}

// handleEditForm moves one pole and redirects back with it selected.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	index, err := s.editFromForm(w, r, id)
	if err != nil {
		row := 0
		if !errors.Is(err, poles.ErrIndexOutOfRange) {
			row = index
		}
		s.renderMap(w, r, row, err, statusFor(err))
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/map/%s?row=%d", id, index), http.StatusSeeOther)
}

func (s *Server) editFromForm(w http.ResponseWriter, r *http.Request, id string) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		return 0, badRequest("edit form: %v", err)
	}

	index, err := parseIndex(r.PostForm.Get("index"))
	if err != nil {
		return 0, err
	}
	lat, err := parseFloatField("latitude", r.PostForm.Get("latitude"))
	if err != nil {
		return index, err
	}
	lon, err := parseFloatField("longitude", r.PostForm.Get("longitude"))
	if err != nil {
		return index, err
	}

	sum, err := s.service.Session(r.Context(), id)
	if err != nil {
		return index, err
	}
	if err := checkIndex(sum, index); err != nil {
		return index, err
	}
	_, err = s.service.EditCoordinates(r.Context(), id, index, lat, lon)
	return index, err
}

func parseSettingsForm(w http.ResponseWriter, r *http.Request) (core.Settings, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		return core.Settings{}, badRequest("settings form: %v", err)
	}
	f := r.PostForm

	var (
		s   core.Settings
		err error
	)
	s.Icon.URL = f.Get("icon_url")
	if s.Icon.Width, err = parseIntField("icon width", f.Get("icon_width")); err != nil {
		return s, err
	}
	if s.Icon.Height, err = parseIntField("icon height", f.Get("icon_height")); err != nil {
		return s, err
	}
	if s.Label.FontSizePt, err = parseIntField("font size", f.Get("font_size")); err != nil {
		return s, err
	}
	s.Mode = overlay.ViewMode(f.Get("mode"))
	s.Tiles = f.Get("tiles")
	return s, nil
}

// renderMap draws the map page, optionally with an alert for err. An
// unknown session gets the error page instead.
func (s *Server) renderMap(w http.ResponseWriter, r *http.Request, row int, err error, status int) {
	ctx := r.Context()
	id := sessionID(r)

	res, rerr := s.service.Render(ctx, id)
	if rerr != nil {
		respondError(w, r, rerr, statusFor(rerr))
		return
	}

	params := templates.MapPageParams{
		Render: res,
		Tiles:  overlay.TileNames(),
	}
	if err != nil {
		msg := core.MapError(err)
		params.Alert = &msg
		logRequestError(r, err, status)
	}

	sel, serr := s.service.Row(ctx, id, row)
	if serr != nil && row != 0 {
		if params.Alert == nil {
			msg := core.MapError(serr)
			params.Alert = &msg
			params.AlertLevel = templates.AlertWarning
		}
		sel, serr = s.service.Row(ctx, id, 0)
	}
	if serr == nil {
		params.Selected = sel
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.MapPage(params).Render(ctx, w)
}
