package api

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var tokenKey = contextKey{}

// requireToken pulls the GitHub token out of the Authorization header
// ("Bearer <token>" or "token <token>") and rejects requests without one.
func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, "missing GitHub token")
			return
		}
		ctx := context.WithValue(r.Context(), tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token)
	default:
		return ""
	}
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
