package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/khatirak/SWE-final/internal/app"
)

// TokenVerifier is the minimal interface needed to authenticate requests.
type TokenVerifier interface {
	Verify(token string) (app.Session, error)
}

type sessionKey struct{}

// RequireAuth rejects requests without a valid bearer token and stores the
// session in the request context for handlers downstream.
func RequireAuth(verifier TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		session, err := verifier.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionFromContext(ctx context.Context) (app.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(app.Session)
	return session, ok
}

func extractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
