// internal/model/models.go
package model

import "strings"

// Repository is the display form of a GitHub repository.
type Repository struct {
	FullName    string `json:"fullName"`
	Name        string `json:"name"`
	OwnerLogin  string `json:"ownerLogin"`
	OwnerAvatar string `json:"ownerAvatar"`
}

// PullRequestUser is the author block of a PullRequest.
type PullRequestUser struct {
	Login  string `json:"login"`
	Avatar string `json:"avatar"`
}

// PullRequest is the display form of an open pull request.
type PullRequest struct {
	User      PullRequestUser `json:"user"`
	CreatedAt string          `json:"createdAt"`
	State     string          `json:"state"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	URL       string          `json:"url"`
}

// Author is one distinct pull request author, used for per-user filtering.
type Author struct {
	Login  string `json:"login"`
	Avatar string `json:"avatar"`
}

// Session describes the GitHub user behind a token.
type Session struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

// FullName returns the "owner/name" form.
func (r RepoIdentifier) FullName() string {
	return r.Owner + "/" + r.Name
}

// ParseFullName splits "owner/name". ok is false for anything else.
func ParseFullName(fullName string) (RepoIdentifier, bool) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoIdentifier{}, false
	}
	return RepoIdentifier{Owner: parts[0], Name: parts[1]}, true
}
