// Package view translates GitHub API objects into the display models served
// to the dashboard. Everything here is pure.
package view

import (
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"

	"github-dashboard/internal/model"
)

const (
	// UnknownLogin stands in for authors whose account no longer exists.
	UnknownLogin = "Unknown"
	// PlaceholderAvatar is used when GitHub returns no avatar.
	PlaceholderAvatar = "https://picsum.photos/16"
)

var weekdaysPtBR = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

var monthsPtBR = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Repositories projects raw repositories to their display form.
func Repositories(raw []*github.Repository) []model.Repository {
	out := make([]model.Repository, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		out = append(out, model.Repository{
			FullName:    r.GetFullName(),
			Name:        r.GetName(),
			OwnerLogin:  r.GetOwner().GetLogin(),
			OwnerAvatar: r.GetOwner().GetAvatarURL(),
		})
	}
	return out
}

// PullRequests projects raw pull requests to their display form, formatting
// the creation date in loc. A nil loc means UTC.
func PullRequests(raw []*github.PullRequest, loc *time.Location) []model.PullRequest {
	out := make([]model.PullRequest, 0, len(raw))
	for _, p := range raw {
		if p == nil {
			continue
		}
		out = append(out, model.PullRequest{
			User:      pullRequestUser(p.GetUser()),
			CreatedAt: FormatDate(p.GetCreatedAt().Time, loc),
			State:     p.GetState(),
			Title:     p.GetTitle(),
			Body:      p.GetBody(),
			URL:       p.GetHTMLURL(),
		})
	}
	return out
}

func pullRequestUser(u *github.User) model.PullRequestUser {
	login := u.GetLogin()
	if login == "" {
		login = UnknownLogin
	}
	avatar := u.GetAvatarURL()
	if avatar == "" {
		avatar = PlaceholderAvatar
	}
	return model.PullRequestUser{Login: login, Avatar: avatar}
}

// FormatDate renders t as a long pt-BR date, e.g. "segunda-feira, 1 de janeiro de 2024".
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return fmt.Sprintf("%s, %d de %s de %d",
		weekdaysPtBR[t.Weekday()], t.Day(), monthsPtBR[t.Month()-1], t.Year())
}

// Authors lists each distinct author once, in order of first appearance.
func Authors(prs []model.PullRequest) []model.Author {
	seen := make(map[string]struct{}, len(prs))
	authors := make([]model.Author, 0)
	for _, pr := range prs {
		if _, ok := seen[pr.User.Login]; ok {
			continue
		}
		seen[pr.User.Login] = struct{}{}
		authors = append(authors, model.Author{Login: pr.User.Login, Avatar: pr.User.Avatar})
	}
	return authors
}

// FilterAuthors drops pull requests opened by any of the excluded logins.
func FilterAuthors(prs []model.PullRequest, excluded []string) []model.PullRequest {
	if len(excluded) == 0 {
		return prs
	}
	skip := make(map[string]struct{}, len(excluded))
	for _, login := range excluded {
		skip[login] = struct{}{}
	}
	out := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if _, ok := skip[pr.User.Login]; ok {
			continue
		}
		out = append(out, pr)
	}
	return out
}
