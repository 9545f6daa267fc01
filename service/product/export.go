package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cafe.GO/model/catalog"
)

// Export is the catalog snapshot written for static consumers.
type Export struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Count       int               `json:"count"`
	Categories  []string          `json:"categories"`
	Products    []catalog.Product `json:"products"`
}

// ExportJSON writes the whole catalog to w.
func (c *Catalog) ExportJSON(ctx context.Context, w io.Writer) (int, error) {
	products, err := c.All(ctx)
	if err != nil {
		return 0, err
	}
	cats, err := c.repo.Categories(ctx)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err = enc.Encode(Export{
		GeneratedAt: time.Now().UTC(),
		Count:       len(products),
		Categories:  cats,
		Products:    products,
	})
	return len(products), err
}

// ExportFile writes the catalog to path atomically.
func (c *Catalog) ExportFile(ctx context.Context, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.json")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := c.ExportJSON(ctx, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return n, nil
}
