package resolvers

import (
	"context"
	"errors"

	gql "github.com/graph-gophers/graphql-go"

	gqlmodels "cafe.GO/graphql/models"
	productRepo "cafe.GO/model/repository/product"
	productService "cafe.GO/service/product"
)

func (r *QueryResolver) Products(ctx context.Context, args struct {
	Category    *string
	Featured    *bool
	Search      *string
	PageSize    int32
	CurrentPage int32
}) (*gqlmodels.ProductSearchResult, error) {
	f := productRepo.Filter{
		Featured: args.Featured,
		Page:     defaultCurrentPage(args.CurrentPage),
		PageSize: defaultPageSize(args.PageSize),
	}
	if args.Category != nil {
		f.Category = *args.Category
	}
	if args.Search != nil {
		f.Search = *args.Search
	}
	page, err := r.catalog.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &gqlmodels.ProductSearchResult{
		Items:      gqlmodels.ProductsFromCatalog(page.Items),
		TotalCount: int32(page.Total),
		PageInfo:   gqlmodels.NewPageInfo(page.Total, page.Page, page.PageSize),
	}, nil
}

func (r *QueryResolver) Product(ctx context.Context, args struct{ ID gql.ID }) (*gqlmodels.Product, error) {
	p, err := r.catalog.Get(ctx, string(args.ID))
	if errors.Is(err, productService.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gqlmodels.ProductFromCatalog(*p), nil
}

func (r *QueryResolver) RelatedProducts(ctx context.Context, args struct {
	ID    gql.ID
	Limit int32
}) ([]*gqlmodels.Product, error) {
	p, err := r.catalog.Get(ctx, string(args.ID))
	if errors.Is(err, productService.ErrNotFound) {
		return []*gqlmodels.Product{}, nil
	}
	if err != nil {
		return nil, err
	}
	related, err := r.catalog.Related(ctx, p.ID, p.Category, defaultLimit(args.Limit, 4))
	if err != nil {
		return nil, err
	}
	return gqlmodels.ProductsFromCatalog(related), nil
}

func (r *QueryResolver) FeaturedProducts(ctx context.Context, args struct{ Limit int32 }) ([]*gqlmodels.Product, error) {
	ps, err := r.catalog.Featured(ctx, defaultLimit(args.Limit, 6))
	if err != nil {
		return nil, err
	}
	return gqlmodels.ProductsFromCatalog(ps), nil
}

func (r *QueryResolver) Categories(ctx context.Context) ([]string, error) {
	return r.catalog.Categories(ctx)
}
