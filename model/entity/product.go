package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cafe.GO/model/catalog"
)

type Product struct {
	ID          string                      `gorm:"column:id;type:varchar(36);primaryKey"`
	Name        string                      `gorm:"column:name;type:varchar(255);not null"`
	Description string                      `gorm:"column:description;type:text"`
	Price       decimal.Decimal             `gorm:"column:price;type:decimal(12,2);not null"`
	Currency    string                      `gorm:"column:currency;type:varchar(3);not null;default:USD"`
	Images      datatypes.JSONSlice[string] `gorm:"column:images"`
	Category    string                      `gorm:"column:category;type:varchar(64);index"`
	Featured    bool                        `gorm:"column:featured;not null;default:false;index"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "cafe_products"
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = catalog.DefaultCurrency
	}
	return nil
}

// ToCatalog converts the row into the storefront value, filling the
// placeholder image when none is stored.
func (p Product) ToCatalog() catalog.Product {
	return catalog.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		Images:      []string(p.Images),
		Category:    p.Category,
		Featured:    p.Featured,
	}.Normalize()
}

// ProductFromCatalog builds a row from a storefront value.
func ProductFromCatalog(p catalog.Product) *Product {
	return &Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		Images:      datatypes.JSONSlice[string](p.Images),
		Category:    p.Category,
		Featured:    p.Featured,
	}
}
