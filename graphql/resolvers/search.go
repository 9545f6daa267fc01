package resolvers

import (
	"context"
	"strings"

	gqlmodels "cafe.GO/graphql/models"
)

// Search goes through the catalog's full-text search, which falls back to
// the database when Elasticsearch is unavailable.
func (r *QueryResolver) Search(ctx context.Context, args struct {
	Query    string
	PageSize int32
}) ([]*gqlmodels.Product, error) {
	q := strings.TrimSpace(args.Query)
	if q == "" {
		return []*gqlmodels.Product{}, nil
	}
	ps, err := r.catalog.Search(ctx, q, defaultPageSize(args.PageSize))
	if err != nil {
		return nil, err
	}
	return gqlmodels.ProductsFromCatalog(ps), nil
}
