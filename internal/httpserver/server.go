// Package httpserver wires the GraphQL schema into an HTTP router.
package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/friendgraph/internal/middleware"
)

// NewRouter serves POST /graphql and GET /healthz. Every request is logged and gets a
// request-scoped viewer before it reaches the schema.
func NewRouter(schema *graphql.Schema, parser middleware.TokenParser, logger *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LogMiddleware(logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	gql := middleware.Authenticate(parser, logger)(&relay.Handler{Schema: schema})
	r.Handle("/graphql", gql).Methods(http.MethodPost)

	return r
}
