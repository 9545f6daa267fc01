// Package graphqlserver builds the executable GraphQL schema.
package graphqlserver

import (
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"cafe.GO/graphql"
	"cafe.GO/graphql/resolvers"
	productService "cafe.GO/service/product"
	"cafe.GO/service/storefront"
)

// NewSchema parses the base schema plus registered extensions against the
// storefront resolvers. hub may be nil; cart and favorites then fail with
// resolvers.ErrNoProfile.
func NewSchema(catalog *productService.Catalog, hub *storefront.Hub) (*gql.Schema, error) {
	root := resolvers.NewQueryResolver(catalog, hub)
	return gql.ParseSchema(graphql.Schema(), root,
		gql.UseFieldResolvers(),
		gql.MaxParallelism(10),
	)
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
