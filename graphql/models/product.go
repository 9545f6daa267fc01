package models

import (
	gql "github.com/graph-gophers/graphql-go"

	"cafe.GO/model/catalog"
)

type Product struct {
	ID          gql.ID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Images      []string `json:"images"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Featured    bool     `json:"featured"`
}

// ProductFromCatalog maps a storefront product to its GraphQL shape.
func ProductFromCatalog(p catalog.Product) *Product {
	p = p.Normalize()
	price, _ := p.Price.Float64()
	return &Product{
		ID:          gql.ID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Currency:    p.Currency,
		Images:      p.Images,
		Image:       p.Image(),
		Category:    p.Category,
		Featured:    p.Featured,
	}
}

func ProductsFromCatalog(ps []catalog.Product) []*Product {
	out := make([]*Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProductFromCatalog(p))
	}
	return out
}
