// Package dashboard composes the GitHub gateway, the repository selection and
// the view mappers into the operations the HTTP API and the CLI expose.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/go-github/v62/github"

	custom_errors "github-dashboard/internal/errors"
	ghclient "github-dashboard/internal/github"
	"github-dashboard/internal/model"
	"github-dashboard/internal/selection"
	"github-dashboard/internal/view"
)

// Gateway is the part of the GitHub client the dashboard relies on.
type Gateway interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
	TotalRepositories(ctx context.Context, token string) (int, error)
	LoadRepositories(ctx context.Context, token string, onProgress ghclient.ProgressFunc) ([]*github.Repository, error)
	LoadPullRequests(ctx context.Context, token string, fullNames []string) ([]*github.PullRequest, error)
	CountOpenPullRequests(ctx context.Context, token string, fullNames []string) (int, error)
}

// PullRequests is the pull request screen: the monitored repositories, every
// author seen and the pull requests left after author filtering.
type PullRequests struct {
	Repositories []string            `json:"repositories"`
	Authors      []model.Author      `json:"authors"`
	PullRequests []model.PullRequest `json:"pullRequests"`
}

// Service orchestrates dashboard reads and selection changes.
type Service struct {
	gateway    Gateway
	selections *selection.Manager
	storeKey   string
	location   *time.Location
	logger     *slog.Logger
}

// NewService creates a new Service. Each GitHub login gets its own selection
// under storeKey. loc is used to format dates; nil means UTC.
func NewService(gateway Gateway, selections *selection.Manager, storeKey string, loc *time.Location, logger *slog.Logger) *Service {
	if storeKey == "" {
		storeKey = selection.DefaultKey
	}
	return &Service{
		gateway:    gateway,
		selections: selections,
		storeKey:   storeKey,
		location:   loc,
		logger:     logger,
	}
}

// Session resolves the token to the signed-in user.
func (s *Service) Session(ctx context.Context, token string) Result[*model.Session] {
	session, err := s.gateway.Authenticate(ctx, token)
	if err != nil {
		s.logger.Warn("Token check failed", "error", err)
		return failed[*model.Session](nil, err)
	}
	return ok(session, false)
}

// Repositories lists every repository visible to the token. onProgress may
// be nil.
func (s *Service) Repositories(ctx context.Context, token string, onProgress ghclient.ProgressFunc) Result[[]model.Repository] {
	raw, err := s.gateway.LoadRepositories(ctx, token, func(p float64) {
		s.logger.Debug("Repository load progress", "percent", p)
		if onProgress != nil {
			onProgress(p)
		}
	})
	if err != nil {
		s.logger.Warn("Failed to load repositories", "error", err)
		return failed([]model.Repository{}, err)
	}
	repos := view.Repositories(raw)
	return ok(repos, len(repos) == 0)
}

// TotalRepositories estimates how many repositories the token can see.
func (s *Service) TotalRepositories(ctx context.Context, token string) Result[int] {
	total, err := s.gateway.TotalRepositories(ctx, token)
	if err != nil {
		s.logger.Warn("Failed to count repositories", "error", err)
		return failed(0, err)
	}
	return ok(total, total == 0)
}

// Selection returns the repositories the token's user monitors.
func (s *Service) Selection(ctx context.Context, token string) ([]string, error) {
	store, err := s.store(ctx, token)
	if err != nil {
		return nil, err
	}
	return store.Repositories(), nil
}

// AddRepository selects fullName for the token's user.
func (s *Service) AddRepository(ctx context.Context, token, fullName string) ([]string, error) {
	if _, valid := model.ParseFullName(fullName); !valid {
		return nil, &custom_errors.ErrInvalidRepoFormat{Repo: fullName}
	}
	store, err := s.store(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := store.Add(ctx, fullName); err != nil {
		return nil, err
	}
	s.logger.Info("Repository selected", "key", store.Key(), "repository", fullName)
	return store.Repositories(), nil
}

// RemoveRepository unselects fullName for the token's user.
func (s *Service) RemoveRepository(ctx context.Context, token, fullName string) ([]string, error) {
	if _, valid := model.ParseFullName(fullName); !valid {
		return nil, &custom_errors.ErrInvalidRepoFormat{Repo: fullName}
	}
	store, err := s.store(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := store.Remove(ctx, fullName); err != nil {
		return nil, err
	}
	s.logger.Info("Repository unselected", "key", store.Key(), "repository", fullName)
	return store.Repositories(), nil
}

// PullRequests aggregates the open pull requests of the user's selection.
// Authors lists everyone before excluded logins are filtered out.
func (s *Service) PullRequests(ctx context.Context, token string, excluded []string) Result[PullRequests] {
	empty := PullRequests{Repositories: []string{}, Authors: []model.Author{}, PullRequests: []model.PullRequest{}}

	repos, err := s.Selection(ctx, token)
	if err != nil {
		s.logger.Warn("Failed to read selection", "error", err)
		return failed(empty, err)
	}
	empty.Repositories = repos

	raw, err := s.gateway.LoadPullRequests(ctx, token, repos)
	if err != nil {
		s.logger.Warn("Failed to load pull requests", "repositories", len(repos), "error", err)
		return failed(empty, err)
	}

	pulls := view.PullRequests(raw, s.location)
	out := PullRequests{
		Repositories: repos,
		Authors:      view.Authors(pulls),
		PullRequests: view.FilterAuthors(pulls, excluded),
	}
	return ok(out, len(out.PullRequests) == 0)
}

// CountOpenPullRequests totals the open pull requests of the user's selection.
func (s *Service) CountOpenPullRequests(ctx context.Context, token string) Result[int] {
	repos, err := s.Selection(ctx, token)
	if err != nil {
		s.logger.Warn("Failed to read selection", "error", err)
		return failed(0, err)
	}
	count, err := s.gateway.CountOpenPullRequests(ctx, token, repos)
	if err != nil {
		s.logger.Warn("Failed to count pull requests", "repositories", len(repos), "error", err)
		return failed(0, err)
	}
	return ok(count, count == 0)
}

func (s *Service) store(ctx context.Context, token string) (*selection.Store, error) {
	session, err := s.gateway.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.selections.Open(ctx, s.storeKey+":"+session.Login)
}
