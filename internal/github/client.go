// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	custom_errors "github-dashboard/internal/errors"
	"github-dashboard/internal/model"
)

const (
	// Max page size accepted by the GitHub REST API.
	perPage = 100
	// Pushed-first ordering used by every repository listing.
	sortPushed = "pushed"
)

// ProgressFunc receives a 0-100 completion percentage.
type ProgressFunc func(percent float64)

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at a GitHub Enterprise (or fake) REST root,
// e.g. "https://ghe.example.com/api/v3/".
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		if raw == "" {
			return nil
		}
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid GitHub API URL %q: %w", raw, err)
		}
		c.baseURL = u
		return nil
	}
}

// WithFanoutLimit bounds the number of concurrent per-repository requests.
// Zero leaves the fan-out unbounded.
func WithFanoutLimit(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("fan-out limit must not be negative, got %d", n)
		}
		c.fanoutLimit = n
		return nil
	}
}

// WithRateLimitSleepLimit caps a single secondary rate limit sleep.
// Non-positive values keep the default of one hour.
func WithRateLimitSleepLimit(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.sleepLimit = d
		}
		return nil
	}
}

// WithTransport replaces the base round tripper under the rate limit waiter.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		c.base = rt
		return nil
	}
}

// Client talks to the GitHub REST API on behalf of whichever token it is handed.
// Every public method fails closed: on error it returns the zero value and
// never a partial result.
type Client struct {
	logger      *slog.Logger
	base        http.RoundTripper
	transport   http.RoundTripper
	baseURL     *url.URL
	fanoutLimit int
	sleepLimit  time.Duration
}

// NewClient creates and configures a new Client instance.
func NewClient(logger *slog.Logger, opts ...Option) (*Client, error) {
	c := &Client{
		logger:     logger,
		sleepLimit: time.Hour,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	waiter, err := github_ratelimit.NewRateLimitWaiter(c.base, github_ratelimit.WithSingleSleepLimit(c.sleepLimit, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	c.transport = waiter

	return c, nil
}

// rest builds a go-github client authenticated with token.
func (c *Client) rest(token string) (*github.Client, error) {
	if token == "" {
		return nil, custom_errors.ErrMissingToken
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   c.transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}
	gh := github.NewClient(httpClient)
	if c.baseURL != nil {
		u := *c.baseURL
		gh.BaseURL = &u
	}
	return gh, nil
}

// connect builds a client and checks that the token resolves to a user.
func (c *Client) connect(ctx context.Context, token string) (*github.Client, *github.User, error) {
	gh, err := c.rest(token)
	if err != nil {
		return nil, nil, err
	}
	user, _, err := gh.Users.Get(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch authenticated user: %w", err)
	}
	if user.GetLogin() == "" {
		return nil, nil, custom_errors.ErrUnauthenticated
	}
	return gh, user, nil
}

// Authenticate resolves the token to the signed-in user's profile.
func (c *Client) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	_, user, err := c.connect(ctx, token)
	if err != nil {
		return nil, err
	}
	return toSession(user), nil
}

// TotalRepositories estimates how many repositories the user can see by
// requesting one-item pages and reading the last page number.
func (c *Client) TotalRepositories(ctx context.Context, token string) (int, error) {
	gh, _, err := c.connect(ctx, token)
	if err != nil {
		return 0, err
	}
	return c.totalRepositories(ctx, gh)
}

func (c *Client) totalRepositories(ctx context.Context, gh *github.Client) (int, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        sortPushed,
		ListOptions: github.ListOptions{PerPage: 1},
	}
	repos, resp, err := gh.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to count repositories: %w", err)
	}
	return lastPageOr(resp, len(repos)), nil
}

// LoadRepositories fetches every repository of the user, 100 per page, in
// pushed order. onProgress may be nil.
func (c *Client) LoadRepositories(ctx context.Context, token string, onProgress ProgressFunc) ([]*github.Repository, error) {
	report := func(p float64) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	report(0)

	gh, user, err := c.connect(ctx, token)
	if err != nil {
		return nil, err
	}
	logger := c.logger.With("login", user.GetLogin())

	total, err := c.totalRepositories(ctx, gh)
	if err != nil {
		return nil, err
	}
	totalPages := (total + perPage - 1) / perPage
	logger.Debug("Loading repositories", "estimated_total", total, "estimated_pages", totalPages)

	var all []*github.Repository
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        sortPushed,
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for page := 1; ; page++ {
		opts.Page = page
		logger.Debug("Fetching repositories page", "page", page)

		repos, resp, err := gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories (page %d): %w", page, err)
		}
		all = append(all, repos...)
		report(pageProgress(page, totalPages))

		if resp.LastPage == 0 || page >= resp.LastPage {
			break
		}
	}

	report(100)
	logger.Debug("Loaded repositories", "count", len(all))
	return all, nil
}

// LoadPullRequests lists the open pull requests of every repository
// concurrently and merges them in ascending creation order. One failing
// repository fails the whole call.
func (c *Client) LoadPullRequests(ctx context.Context, token string, fullNames []string) ([]*github.PullRequest, error) {
	ids, err := parseRepoIdentifiers(fullNames)
	if err != nil {
		return nil, err
	}
	gh, _, err := c.connect(ctx, token)
	if err != nil {
		return nil, err
	}

	perRepo := make([][]*github.PullRequest, len(ids))
	err = c.forEachRepo(ctx, ids, func(ctx context.Context, i int, id model.RepoIdentifier) error {
		pulls, err := c.listOpenPullRequests(ctx, gh, id)
		if err != nil {
			return err
		}
		perRepo[i] = pulls
		return nil
	})
	if err != nil {
		return nil, err
	}

	var merged []*github.PullRequest
	for _, pulls := range perRepo {
		merged = append(merged, pulls...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].GetCreatedAt().Time.Before(merged[j].GetCreatedAt().Time)
	})
	return merged, nil
}

func (c *Client) listOpenPullRequests(ctx context.Context, gh *github.Client, id model.RepoIdentifier) ([]*github.PullRequest, error) {
	var all []*github.PullRequest

	opts := &github.PullRequestListOptions{
		State:       "open",
		Sort:        "updated",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		c.logger.Debug("Fetching pull requests page", "owner", id.Owner, "repo", id.Name, "page", opts.Page)

		pulls, resp, err := gh.PullRequests.List(ctx, id.Owner, id.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s: %w", id.FullName(), err)
		}
		all = append(all, pulls...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CountOpenPullRequests sums the open pull request count of every repository,
// reading each count from the last page number of a one-item listing.
func (c *Client) CountOpenPullRequests(ctx context.Context, token string, fullNames []string) (int, error) {
	ids, err := parseRepoIdentifiers(fullNames)
	if err != nil {
		return 0, err
	}
	gh, _, err := c.connect(ctx, token)
	if err != nil {
		return 0, err
	}

	counts := make([]int, len(ids))
	err = c.forEachRepo(ctx, ids, func(ctx context.Context, i int, id model.RepoIdentifier) error {
		opts := &github.PullRequestListOptions{
			State:       "open",
			ListOptions: github.ListOptions{PerPage: 1},
		}
		pulls, resp, err := gh.PullRequests.List(ctx, id.Owner, id.Name, opts)
		if err != nil {
			return fmt.Errorf("failed to count pull requests for %s: %w", id.FullName(), err)
		}
		counts[i] = lastPageOr(resp, len(pulls))
		return nil
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// forEachRepo runs fn for every repository; the first error cancels the rest.
func (c *Client) forEachRepo(ctx context.Context, ids []model.RepoIdentifier, fn func(ctx context.Context, i int, id model.RepoIdentifier) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if c.fanoutLimit > 0 {
		g.SetLimit(c.fanoutLimit)
	}

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return fn(gctx, i, id)
		})
	}

	return g.Wait()
}

// lastPageOr returns the page number of the rel="last" link, or fallback
// when the response carries none.
func lastPageOr(resp *github.Response, fallback int) int {
	if resp == nil || resp.LastPage == 0 {
		return fallback
	}
	return resp.LastPage
}

// pageProgress converts a fetched page into a percentage of the estimated
// page count, capped at 100.
func pageProgress(page, totalPages int) float64 {
	if totalPages <= 0 {
		return 100
	}
	p := float64(page) / float64(totalPages) * 100
	if p > 100 {
		return 100
	}
	return p
}

func parseRepoIdentifiers(repos []string) ([]model.RepoIdentifier, error) {
	identifiers := make([]model.RepoIdentifier, 0, len(repos))
	for _, r := range repos {
		id, ok := model.ParseFullName(r)
		if !ok {
			return nil, &custom_errors.ErrInvalidRepoFormat{Repo: r}
		}
		identifiers = append(identifiers, id)
	}
	return identifiers, nil
}

func toSession(u *github.User) *model.Session {
	email := u.GetEmail()
	if email == "" {
		email = "E-mail não informado."
	}
	name := u.GetName()
	if name == "" {
		name = "Nome não informado."
	}
	return &model.Session{
		ID:    u.GetNodeID(),
		Login: u.GetLogin(),
		Email: email,
		Name:  name,
		Photo: u.GetAvatarURL(),
	}
}
