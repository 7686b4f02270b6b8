package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/web/templates"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderUploadPage(w, r, nil, http.StatusOK)
}

// handleUploadForm loads the posted file and redirects to its map. Failures
// re-render the upload page with the reason.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	sum, err := s.load(w, r)
	if err != nil {
		s.renderUploadPage(w, r, err, statusFor(err))
		return
	}
	http.Redirect(w, r, "/map/"+sum.ID, http.StatusSeeOther)
}

// handleCreateSession is the API form of handleUploadForm.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sum, err := s.load(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sum.ID)
	writeJSON(w, http.StatusCreated, sum)
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*core.SessionSummary, error) {
	name, file, err := s.readUpload(w, r)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return s.service.Load(r.Context(), name, file)
}

func (s *Server) renderUploadPage(w http.ResponseWriter, r *http.Request, err error, status int) {
	params := templates.UploadPageParams{MaxFileSize: s.cfg.Upload.MaxFileSize}
	if err != nil {
		msg := core.MapError(err)
		params.Alert = &msg
		params.AlertLevel = templates.AlertError
		// Nothing to draw is a warning, not a failure.
		if errors.Is(err, core.ErrEmptyTable) || errors.Is(err, core.ErrNoFile) {
			params.AlertLevel = templates.AlertWarning
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.UploadPage(params).Render(r.Context(), w)
}

// handleLoadStatus reports the load limiter, for monitoring and for clients
// deciding whether to retry.
func (s *Server) handleLoadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
	})
}
