package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

var errRateLimited = errors.New("rate limit exceeded, please try again later")

// apiError is the JSON error body.
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes and the message safe
// to show the caller.
func statusFor(err error) (int, apiError) {
	var ve *core.ValidationError
	switch {
	case errors.Is(err, core.ErrNoSession):
		return http.StatusUnauthorized, apiError{Error: "authentication required"}
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, apiError{Error: err.Error()}
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, apiError{Error: "malformed request body"}
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, apiError{Error: ve.Error(), Field: ve.Field}
	case errors.Is(err, store.ErrInvalidReference):
		return http.StatusUnprocessableEntity, apiError{Error: store.ErrInvalidReference.Error(), Field: "goalId"}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, apiError{Error: store.ErrNotFound.Error()}
	default:
		return http.StatusInternalServerError, apiError{Error: "internal error"}
	}
}

// writeError answers with the mapped status; HTMX callers get an HTML
// fragment and a notification, everyone else JSON. Server errors are logged
// with the full cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	if status >= 500 {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
	}

	if isHTMX(r) {
		ErrorResponse(status, body.Error).Write(w)
		return
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
