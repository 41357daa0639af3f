package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/friendgraph/internal/auth"
	"github.com/jason-s-yu/friendgraph/internal/database"
	"github.com/jason-s-yu/friendgraph/internal/graph"
	"github.com/jason-s-yu/friendgraph/internal/resolver"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hasher := auth.NewHasher(auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := resolver.New(database.NewMemoryStore(hasher), auth.NewCredentials(hasher, tokens), resolver.WithLogger(logger))
	schema, err := graph.NewSchema(r, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(schema, tokens, logger))
	t.Cleanup(srv.Close)
	return srv
}

func postGraphQL(t *testing.T, srv *httptest.Server, token, query string, vars map[string]interface{}) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": vars})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/graphql", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out gqlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGraphQLRejectsGet(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/graphql")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSignupMeFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	signup := postGraphQL(t, srv, "", `
		mutation { addUser(username: "alice", email: "a@x.com", password: "pw") { token user { id username } } }`, nil)
	require.Empty(t, signup.Errors)
	assert.NotContains(t, string(signup.Data["addUser"]), "password")

	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(signup.Data["addUser"], &payload))
	require.NotEmpty(t, payload.Token)

	anon := postGraphQL(t, srv, "", `{ me { id } }`, nil)
	require.Len(t, anon.Errors, 1)
	assert.Equal(t, "not logged in", anon.Errors[0].Message)
	assert.Equal(t, "UNAUTHENTICATED", anon.Errors[0].Extensions["code"])

	// a bad token degrades to anonymous instead of failing the request
	bad := postGraphQL(t, srv, "not.a.token", `{ users { id } }`, nil)
	assert.Empty(t, bad.Errors)

	me := postGraphQL(t, srv, payload.Token, `{ me { id username } }`, nil)
	require.Empty(t, me.Errors)
	assert.Contains(t, string(me.Data["me"]), payload.User.ID)
}
