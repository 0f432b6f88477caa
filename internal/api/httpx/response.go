// Package httpx holds the JSON response helpers shared by handlers and
// middleware.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// WriteAppError maps err onto its HTTP status. Internal errors are logged
// with their cause and answered with a generic body.
func WriteAppError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	ae := apperr.As(err)
	if ae.Kind == apperr.KindInternal {
		logger.Error().Err(err).
			Str("request_id", RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	WriteError(w, apperr.HTTPStatus(ae.Kind), ae.Code, ae.Message)
}
