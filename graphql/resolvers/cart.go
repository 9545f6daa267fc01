package resolvers

import (
	"context"

	gqlmodels "cafe.GO/graphql/models"
)

func (r *QueryResolver) Cart(ctx context.Context) (*gqlmodels.Cart, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	return gqlmodels.CartFromSummary(s.Cart.Snapshot()), nil
}

func (r *QueryResolver) Favorites(ctx context.Context) ([]*gqlmodels.Product, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	return gqlmodels.ProductsFromCatalog(s.Favorites.List()), nil
}
