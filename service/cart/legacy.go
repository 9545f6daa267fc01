package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"cafe.GO/core/storage"
	"cafe.GO/model/catalog"
)

func init() {
	storage.RegisterMigrator(storage.KeyCart, migrateLegacy)
}

// legacyLine is the unversioned cart entry: product fields with a single
// image and the quantity inline.
type legacyLine struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Image       string          `json:"image"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
	Featured    bool            `json:"featured"`
	Quantity    int             `json:"quantity"`
}

func migrateLegacy(raw json.RawMessage) (json.RawMessage, error) {
	var legacy []legacyLine
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, err
	}
	items := make([]LineItem, 0, len(legacy))
	for _, l := range legacy {
		images := l.Images
		if len(images) == 0 && l.Image != "" {
			images = []string{l.Image}
		}
		p := catalog.Product{
			ID:          l.ID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price,
			Currency:    l.Currency,
			Images:      images,
			Category:    l.Category,
			Featured:    l.Featured,
		}
		items = append(items, LineItem{Product: p.Normalize(), Quantity: l.Quantity})
	}
	return json.Marshal(sanitize(items))
}
