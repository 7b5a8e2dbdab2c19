package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/pdfsplitflow/internal/handoff"
	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

var (
	// ErrBadRequest is returned for requests that cannot be parsed.
	ErrBadRequest = errors.New("bad request")

	// ErrSessionNotFound is returned for unknown or closed sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCloseBlocked is returned when the unload guard keeps a session open.
	ErrCloseBlocked = errors.New("close blocked by unload guard")
)

// HTTPStatus maps an error from the split functions to a response code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest), errors.Is(err, models.ErrPageRange), errors.Is(err, handoff.ErrInvalidParameters):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, handoff.ErrNotFound):
		return http.StatusGone
	case errors.Is(err, models.ErrBusy), errors.Is(err, models.ErrInvalidTransition), errors.Is(err, ErrCloseBlocked):
		return http.StatusConflict
	case errors.Is(err, handoff.ErrNoStore):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrDocumentLoad), errors.Is(err, models.ErrEmptySelection), errors.Is(err, models.ErrEncoding):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
