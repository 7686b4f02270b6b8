package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/poles"
)

// maxFormSize bounds non-upload form and JSON bodies.
const maxFormSize = 64 << 10

var errBadRequest = errors.New("malformed request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// readUpload returns the uploaded "file" part. The caller closes it.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, multipart.File, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
			return "", nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return "", nil, core.ErrNoFile
		}
		return "", nil, badRequest("upload form: %v", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, core.ErrNoFile
	}
	return header.Filename, file, nil
}

// parseIndex reads a pole index. Range is checked against the table later.
func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, badRequest("index %q is not a number", s)
	}
	return i, nil
}

func parseFloatField(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, badRequest("%s %q is not a number", name, s)
	}
	return f, nil
}

func parseIntField(name, s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, badRequest("%s %q is not a whole number", name, s)
	}
	return i, nil
}

// checkIndex rejects indices outside the session's table before the edit
// reaches the core, which checks again under the session lock.
func checkIndex(sum *core.SessionSummary, index int) error {
	if index < 0 || index >= sum.Stats.Rows {
		return &poles.IndexError{Index: index, Len: sum.Stats.Rows}
	}
	return nil
}
