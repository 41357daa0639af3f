package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/friendgraph/internal/auth"
)

// AuthCookieName is the cookie a token may be sent in.
const AuthCookieName = "auth_token"

// TokenParser verifies a token and returns its identity.
type TokenParser interface {
	ParseToken(token string) (auth.Identity, error)
}

// Authenticate attaches an auth.Viewer to every request. It never rejects a request:
// a missing or invalid token makes the viewer Anonymous, and operations that need an
// identity fail on their own.
func Authenticate(parser TokenParser, logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var viewer auth.Viewer = auth.Anonymous{}

			if token := extractToken(r); token != "" {
				id, err := parser.ParseToken(token)
				if err != nil {
					logger.WithError(err).WithField("remote", r.RemoteAddr).Debug("ignoring invalid token")
				} else {
					viewer = auth.Authenticated{Identity: id}
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithViewer(r.Context(), viewer)))
		})
	}
}

// extractToken checks the Authorization header, then the auth cookie, then the
// "token" query parameter.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(AuthCookieName); err == nil {
		return c.Value
	}
	return r.URL.Query().Get("token")
}
