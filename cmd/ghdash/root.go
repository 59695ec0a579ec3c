package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github-dashboard/internal/app"
	"github-dashboard/internal/config"
	"github-dashboard/internal/dashboard"
)

var rootCmd = &cobra.Command{
	Use:   "ghdash",
	Short: "Browse GitHub repositories and the open pull requests of a selection.",
	Long: `ghdash lists the repositories visible to GITHUB_TOKEN, keeps a persisted
selection of repositories to monitor and aggregates their open pull requests.
Output is JSON on stdout.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// session is what every subcommand works with.
type session struct {
	svc   *dashboard.Service
	token string
	out   io.Writer
}

// withSession loads configuration, builds the dashboard and runs fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.GithubToken == "" {
		return errors.New("GITHUB_TOKEN environment variable is not set")
	}

	ctx := cmd.Context()
	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return fn(ctx, &session{
		svc:   application.Service,
		token: cfg.GithubToken,
		out:   cmd.OutOrStdout(),
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes the data of res, or returns its error.
func printResult[T any](w io.Writer, res dashboard.Result[T]) error {
	if res.Status == dashboard.StatusError {
		return res.Err
	}
	return printJSON(w, res.Data)
}
