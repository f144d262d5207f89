package api

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/resolver"
	"github.com/netvlyx/vlyx/internal/scraper"
	"github.com/netvlyx/vlyx/internal/token"
	"github.com/netvlyx/vlyx/internal/util"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Stage  string `json:"stage,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		util.Debug("write response", "error", err)
	}
}

// RespondWithError writes an error response that carries no stage
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithFailure maps a resolution failure to its status code and
// reports the stage and reason it failed with.
func RespondWithFailure(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		util.Error("resolution failed", "status", code, "error", err)
	} else {
		util.Debug("resolution failed", "status", code, "error", err)
	}
	RespondWithJSON(w, code, ErrorResponse{
		Error:  err.Error(),
		Stage:  string(resolver.StageOf(err)),
		Reason: resolver.ReasonOf(err),
	})
}

// StatusFor returns the HTTP status of a resolution error
func StatusFor(err error) int {
	var (
		decodeErr  *token.DecodeError
		noLinksErr *scraper.NoLinksError
		extractErr *scraper.ExtractError
		fetchErr   *scraper.FetchError
	)
	switch {
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest
	// NoLinksError unwraps to an ExtractError, so it has to be checked first
	case errors.As(err, &noLinksErr):
		return http.StatusNotFound
	case errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, resolver.ErrSessionFailed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
