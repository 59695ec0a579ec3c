package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/go-github/v62/github"

	"github-dashboard/internal/dashboard"
	custom_errors "github-dashboard/internal/errors"
)

// envelope is the wire form of a dashboard.Result.
type envelope struct {
	Status dashboard.Status `json:"status"`
	Data   any              `json:"data"`
	Error  string           `json:"error,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithResult[T any](w http.ResponseWriter, res dashboard.Result[T]) {
	if res.Status == dashboard.StatusError {
		respondWithJSON(w, statusForError(res.Err, http.StatusBadGateway), envelope{Status: res.Status, Data: res.Data, Error: res.Err.Error()})
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{Status: res.Status, Data: res.Data})
}

// statusForError maps gateway and store failures to an HTTP status. Errors
// that are neither GitHub nor validation failures get fallback.
func statusForError(err error, fallback int) int {
	if errors.Is(err, custom_errors.ErrMissingToken) || errors.Is(err, custom_errors.ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	if custom_errors.IsInvalidRepoFormat(err) {
		return http.StatusBadRequest
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		if ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnauthorized {
			return http.StatusUnauthorized
		}
		return http.StatusBadGateway
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return http.StatusBadGateway
	}
	return fallback
}
