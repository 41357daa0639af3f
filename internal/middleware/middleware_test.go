package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/friendgraph/internal/auth"
)

func TestAuthenticate(t *testing.T) {
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	id := auth.Identity{ID: uuid.New(), Username: "alice", Email: "a@x.com"}
	token, err := issuer.IssueToken(id)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	testCases := []struct {
		Description string
		Prepare     func(r *http.Request)
		WantAuth    bool
	}{
		{"no token", func(r *http.Request) {}, false},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, true},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, true},
		{"header without scheme", func(r *http.Request) { r.Header.Set("Authorization", token) }, false},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token}) }, true},
		{"query param", func(r *http.Request) { r.URL.RawQuery = "token=" + token }, true},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc.def.ghi") }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.Description, func(t *testing.T) {
			var got auth.Viewer
			h := Authenticate(issuer, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = auth.ViewerFrom(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			tc.Prepare(req)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			// building the context never rejects the request
			assert.Equal(t, http.StatusNoContent, w.Code)
			if tc.WantAuth {
				assert.Equal(t, auth.Authenticated{Identity: id}, got)
			} else {
				assert.Equal(t, auth.Anonymous{}, got)
			}
		})
	}
}

func TestLogMiddlewareRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/healthz"`)
}
