// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned when a request carries no GitHub token.
var ErrMissingToken = errors.New("missing GitHub token")

// ErrUnauthenticated is returned when GitHub does not resolve the token to a user.
var ErrUnauthenticated = errors.New("token did not resolve to a GitHub user")

// ErrInvalidRepoFormat is returned when a repository string is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// IsInvalidRepoFormat reports whether err wraps an ErrInvalidRepoFormat.
func IsInvalidRepoFormat(err error) bool {
	var target *ErrInvalidRepoFormat
	return errors.As(err, &target)
}
