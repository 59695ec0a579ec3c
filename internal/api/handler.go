// internal/api/handler.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github-dashboard/internal/dashboard"
	ghclient "github-dashboard/internal/github"
	"github-dashboard/internal/model"
)

// Dashboard is the set of operations the API serves.
type Dashboard interface {
	Session(ctx context.Context, token string) dashboard.Result[*model.Session]
	Repositories(ctx context.Context, token string, onProgress ghclient.ProgressFunc) dashboard.Result[[]model.Repository]
	TotalRepositories(ctx context.Context, token string) dashboard.Result[int]
	Selection(ctx context.Context, token string) ([]string, error)
	AddRepository(ctx context.Context, token, fullName string) ([]string, error)
	RemoveRepository(ctx context.Context, token, fullName string) ([]string, error)
	PullRequests(ctx context.Context, token string, excluded []string) dashboard.Result[dashboard.PullRequests]
	CountOpenPullRequests(ctx context.Context, token string) dashboard.Result[int]
}

// Handler is the container for API dependencies.
type Handler struct {
	dash   Dashboard
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(dash Dashboard, logger *slog.Logger, timeout time.Duration) http.Handler {
	h := &Handler{
		dash:   dash,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Use(requireToken)

		r.Get("/session", h.getSession)
		r.Get("/repositories", h.getRepositories)
		r.Get("/repositories/count", h.getRepositoryCount)
		r.Get("/selection", h.getSelection)
		r.Put("/selection/{owner}/{name}", h.addRepository)
		r.Delete("/selection/{owner}/{name}", h.removeRepository)
		r.Get("/pull-requests", h.getPullRequests)
		r.Get("/pull-requests/count", h.getPullRequestCount)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /v1/session
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	respondWithResult(w, h.dash.Session(r.Context(), tokenFrom(r.Context())))
}

// GET /v1/repositories
func (h *Handler) getRepositories(w http.ResponseWriter, r *http.Request) {
	respondWithResult(w, h.dash.Repositories(r.Context(), tokenFrom(r.Context()), nil))
}

// GET /v1/repositories/count
func (h *Handler) getRepositoryCount(w http.ResponseWriter, r *http.Request) {
	respondWithResult(w, h.dash.TotalRepositories(r.Context(), tokenFrom(r.Context())))
}

// GET /v1/selection
func (h *Handler) getSelection(w http.ResponseWriter, r *http.Request) {
	repos, err := h.dash.Selection(r.Context(), tokenFrom(r.Context()))
	h.respondWithSelection(w, repos, err)
}

// PUT /v1/selection/{owner}/{name}
func (h *Handler) addRepository(w http.ResponseWriter, r *http.Request) {
	repos, err := h.dash.AddRepository(r.Context(), tokenFrom(r.Context()), fullNameParam(r))
	h.respondWithSelection(w, repos, err)
}

// DELETE /v1/selection/{owner}/{name}
func (h *Handler) removeRepository(w http.ResponseWriter, r *http.Request) {
	repos, err := h.dash.RemoveRepository(r.Context(), tokenFrom(r.Context()), fullNameParam(r))
	h.respondWithSelection(w, repos, err)
}

// GET /v1/pull-requests?exclude=login1,login2
func (h *Handler) getPullRequests(w http.ResponseWriter, r *http.Request) {
	excluded := splitList(r.URL.Query().Get("exclude"))
	respondWithResult(w, h.dash.PullRequests(r.Context(), tokenFrom(r.Context()), excluded))
}

// GET /v1/pull-requests/count
func (h *Handler) getPullRequestCount(w http.ResponseWriter, r *http.Request) {
	respondWithResult(w, h.dash.CountOpenPullRequests(r.Context(), tokenFrom(r.Context())))
}

func (h *Handler) respondWithSelection(w http.ResponseWriter, repos []string, err error) {
	if err != nil {
		code := statusForError(err, http.StatusInternalServerError)
		if code >= http.StatusInternalServerError {
			h.logger.Error("Selection request failed", "error", err)
		}
		respondWithError(w, code, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"repositories": repos})
}

func fullNameParam(r *http.Request) string {
	return chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
