// Package catalog holds the storefront's product value type shared by the
// cart, favorites, checkout and catalog services.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is shown for products without images.
const PlaceholderImage = "/placeholder.svg"

const DefaultCurrency = "USD"

// Currencies accepted for product prices.
var Currencies = []string{"USD", "UGX", "EUR", "GBP", "CAD", "AUD"}

// Categories offered by the admin product form.
var Categories = []string{"Breakfast", "Coffee", "Lunch", "Desserts"}

// Product is a catalog entry as seen by the storefront.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
	Featured    bool            `json:"featured"`
}

// Normalize fills display defaults: placeholder image and USD currency.
func (p Product) Normalize() Product {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if s := strings.TrimSpace(img); s != "" {
			images = append(images, s)
		}
	}
	if len(images) == 0 {
		images = []string{PlaceholderImage}
	}
	p.Images = images
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	return p
}

// Image returns the first image or the placeholder.
func (p Product) Image() string {
	for _, img := range p.Images {
		if img != "" {
			return img
		}
	}
	return PlaceholderImage
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidCurrency(c string) bool {
	for _, v := range Currencies {
		if v == c {
			return true
		}
	}
	return false
}
