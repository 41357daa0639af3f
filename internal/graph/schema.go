// Package graph exposes the resolver set as a GraphQL schema.
package graph

import (
	_ "embed"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/friendgraph/internal/resolver"
)

//go:embed schema.graphql
var schemaSDL string

// maxQueryDepth bounds friends { friends { ... } } nesting.
const maxQueryDepth = 8

// NewSchema binds r to the GraphQL schema.
func NewSchema(r *resolver.Resolver, logger *logrus.Logger) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, &Root{r: r, log: logger}, graphql.MaxDepth(maxQueryDepth))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return schema, nil
}
