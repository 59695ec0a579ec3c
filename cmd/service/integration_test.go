//go:build integration

// cmd/service/integration_test.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github-dashboard/internal/api"
	"github-dashboard/internal/app"
	"github-dashboard/internal/config"
	"github-dashboard/internal/database"
)

func setupTestDatabase(ctx context.Context, t *testing.T) (string, func()) {
	// Start a postgres container
	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	teardown := func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	}

	return connStr, teardown
}

// fakeGitHub serves the handful of endpoints the dashboard calls.
func fakeGitHub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"login": "octocat", "node_id": "U_1", "avatar_url": "https://avatars.example/octocat"}`))
	})
	mux.HandleFunc("/repos/acme/api/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"number": 1, "title": "Newer", "state": "open", "created_at": "2024-01-03T12:00:00Z", "user": {"login": "alice"}}]`))
	})
	mux.HandleFunc("/repos/acme/web/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"number": 2, "title": "Older", "state": "open", "created_at": "2024-01-01T12:00:00Z", "user": null}]`))
	})
	return httptest.NewServer(mux)
}

func TestDashboard_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbURL, teardown := setupTestDatabase(ctx, t)
	defer teardown()

	gh := fakeGitHub()
	defer gh.Close()

	cfg := &config.Config{
		GithubAPIURL:  gh.URL,
		StoreDriver:   config.StoreDriverPostgres,
		StoreKey:      "github-utils:pull-requests-storage",
		DBURL:         dbURL,
		MigrationsURL: "file://../../migrations",
		FanoutLimit:   2,
		Location:      time.UTC,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	application, err := app.Build(ctx, cfg, logger)
	require.NoError(t, err)
	defer application.Close()

	server := httptest.NewServer(api.NewRouter(application.Service, logger, 10*time.Second))
	defer server.Close()

	call := func(method, path string) (int, map[string]any) {
		req, err := http.NewRequestWithContext(ctx, method, server.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer test-token")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp.StatusCode, body
	}

	// --- ACT ---
	for _, repo := range []string{"acme/api", "acme/web", "acme/api"} {
		code, _ := call(http.MethodPut, "/v1/selection/"+repo)
		require.Equal(t, http.StatusOK, code)
	}
	code, body := call(http.MethodGet, "/v1/pull-requests")

	// --- ASSERT ---
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	data := body["data"].(map[string]any)
	pulls := data["pullRequests"].([]any)
	require.Len(t, pulls, 2)
	assert.Equal(t, "Older", pulls[0].(map[string]any)["title"])
	assert.Equal(t, "Unknown", pulls[0].(map[string]any)["user"].(map[string]any)["login"])

	// The selection is persisted in order, without duplicates.
	dbpool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	defer dbpool.Close()
	stored, err := database.New(dbpool).ListSelectedRepositories(ctx, fmt.Sprintf("%s:%s", cfg.StoreKey, "octocat"))
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/api", "acme/web"}, stored)
}
