package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/progress"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, journey.ErrInvalidLevel),
		errors.Is(err, progress.ErrInvalidBaseline),
		errors.Is(err, progress.ErrInvalidScore),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, progress.ErrNotFound),
		errors.Is(err, progress.ErrNoTest):
		return http.StatusNotFound
	case errors.Is(err, progress.ErrUnknownActivity),
		errors.Is(err, progress.ErrAlreadyCompleted),
		errors.Is(err, progress.ErrLevelLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.WithField("path", r.URL.Path).Errorf("request failed: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

var errBadRequest = errors.New("bad request")

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
