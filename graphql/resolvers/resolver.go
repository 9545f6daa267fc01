package resolvers

import (
	"context"
	"encoding/json"
	"errors"

	"cafe.GO/graphql"
	gqlregistry "cafe.GO/graphql/registry"
	productService "cafe.GO/service/product"
	"cafe.GO/service/storefront"
)

// ErrNoProfile is returned by per-visitor fields when the request carries no
// profile id.
var ErrNoProfile = errors.New("profile required")

// QueryResolver is the root resolver for all Query fields.
// Methods live in product.go, search.go and cart.go. New Query fields: use
// RegisterSchemaExtension and add a method here, or register an _extension.
type QueryResolver struct {
	catalog *productService.Catalog
	hub     *storefront.Hub
}

func NewQueryResolver(catalog *productService.Catalog, hub *storefront.Hub) *QueryResolver {
	return &QueryResolver{catalog: catalog, hub: hub}
}

func (r *QueryResolver) session(ctx context.Context) (*storefront.Session, error) {
	p, ok := graphql.ProfileFromContext(ctx)
	if !ok || r.hub == nil {
		return nil, ErrNoProfile
	}
	return r.hub.Session(ctx, p)
}

// Extension dispatches to registered custom resolvers.
func (r *QueryResolver) Extension(ctx context.Context, args struct {
	Name string
	Args *string
}) (*string, error) {
	m := make(map[string]interface{})
	if args.Args != nil && *args.Args != "" {
		if err := json.Unmarshal([]byte(*args.Args), &m); err != nil {
			return nil, err
		}
	}
	out, err := gqlregistry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
