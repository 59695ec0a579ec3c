package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the repositories visible to GITHUB_TOKEN, most recently pushed first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			errOut := cmd.ErrOrStderr()
			res := s.svc.Repositories(ctx, s.token, func(p float64) {
				fmt.Fprintf(errOut, "\rLoading repositories... %3.0f%%", p)
			})
			fmt.Fprintln(errOut)
			return printResult(s.out, res)
		})
	},
}

var reposCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Estimate how many repositories GITHUB_TOKEN can see",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return printResult(s.out, s.svc.TotalRepositories(ctx, s.token))
		})
	},
}

var pullsCmd = &cobra.Command{
	Use:   "pulls",
	Short: "Aggregate the open pull requests of the selected repositories, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		excluded, _ := cmd.Flags().GetStringSlice("exclude")
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return printResult(s.out, s.svc.PullRequests(ctx, s.token, excluded))
		})
	},
}

var pullsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the open pull requests of the selected repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return printResult(s.out, s.svc.CountOpenPullRequests(ctx, s.token))
		})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Manage the repositories whose pull requests are aggregated",
}

var selectListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the selected repositories in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			repos, err := s.svc.Selection(ctx, s.token)
			if err != nil {
				return err
			}
			return printJSON(s.out, repos)
		})
	},
}

var selectAddCmd = &cobra.Command{
	Use:   "add owner/name...",
	Short: "Select repositories; already selected ones are left in place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			var repos []string
			for _, name := range args {
				var err error
				if repos, err = s.svc.AddRepository(ctx, s.token, strings.TrimSpace(name)); err != nil {
					return err
				}
			}
			return printJSON(s.out, repos)
		})
	},
}

var selectRemoveCmd = &cobra.Command{
	Use:   "remove owner/name...",
	Short: "Unselect repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			var repos []string
			for _, name := range args {
				var err error
				if repos, err = s.svc.RemoveRepository(ctx, s.token, strings.TrimSpace(name)); err != nil {
					return err
				}
			}
			return printJSON(s.out, repos)
		})
	},
}

func init() {
	reposCmd.AddCommand(reposCountCmd)
	pullsCmd.AddCommand(pullsCountCmd)
	pullsCmd.Flags().StringSlice("exclude", nil, "Hide pull requests opened by these logins")
	selectCmd.AddCommand(selectListCmd, selectAddCmd, selectRemoveCmd)
	rootCmd.AddCommand(reposCmd, pullsCmd, selectCmd)
}
