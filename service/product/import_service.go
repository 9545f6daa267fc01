package product

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cafe.GO/model/catalog"
	entity "cafe.GO/model/entity"
	productRepo "cafe.GO/model/repository/product"
)

// ImportOptions configures a product import run.
type ImportOptions struct {
	BatchSize int
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows   int
	Created     int
	Updated     int
	Skipped     int
	Warnings    []string
	Products    []catalog.Product
	ProcessTime time.Duration
	DBTime      time.Duration
	TotalTime   time.Duration
}

// importRow is one CSV line. Images are separated by "|".
type importRow struct {
	ID          string          `mapstructure:"id"`
	Name        string          `mapstructure:"name"`
	Description string          `mapstructure:"description"`
	Price       decimal.Decimal `mapstructure:"price"`
	Currency    string          `mapstructure:"currency"`
	Category    string          `mapstructure:"category"`
	Featured    bool            `mapstructure:"featured"`
	Images      []string        `mapstructure:"images"`
}

var knownColumns = map[string]bool{
	"id": true, "name": true, "description": true, "price": true,
	"currency": true, "category": true, "featured": true, "images": true,
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func stringToDecimalHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t != decimalType {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func decodeRow(values map[string]interface{}) (importRow, error) {
	var row importRow
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &row,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDecimalHook,
			mapstructure.StringToSliceHookFunc("|"),
		),
	})
	if err != nil {
		return row, err
	}
	if err := dec.Decode(values); err != nil {
		return row, err
	}
	return row, nil
}

func (r importRow) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("price must be greater than 0")
	}
	if r.Currency != "" && !catalog.ValidCurrency(r.Currency) {
		return fmt.Errorf("unsupported currency %q", r.Currency)
	}
	return nil
}

func (r importRow) product() *entity.Product {
	images := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		if s := strings.TrimSpace(img); s != "" {
			images = append(images, s)
		}
	}
	return entity.ProductFromCatalog(catalog.Product{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Price:       r.Price.Round(2),
		Currency:    strings.ToUpper(strings.TrimSpace(r.Currency)),
		Images:      images,
		Category:    strings.TrimSpace(r.Category),
		Featured:    r.Featured,
	})
}

// ImportProducts reads CSV data from r and upserts products. Rows that fail
// to decode or validate are skipped with a warning.
func ImportProducts(ctx context.Context, db *gorm.DB, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	startTotal := time.Now()
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	hasName, hasPrice := false, false
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
		hasName = hasName || headers[i] == "name"
		hasPrice = hasPrice || headers[i] == "price"
	}
	if !hasName || !hasPrice {
		return nil, fmt.Errorf("CSV must contain 'name' and 'price' columns")
	}

	result := &ImportResult{}
	for _, h := range headers {
		if !knownColumns[h] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	result.TotalRows = len(rows)

	startProcess := time.Now()
	products := make([]*entity.Product, 0, len(rows))
	var ids []string
	for ri, cells := range rows {
		values := make(map[string]interface{}, len(headers))
		for i, h := range headers {
			if knownColumns[h] && i < len(cells) {
				values[h] = cells[i]
			}
		}
		row, err := decodeRow(values)
		if err == nil {
			err = row.validate()
		}
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %v", ri+2, err))
			continue
		}
		if row.Category != "" && !catalog.ValidCategory(row.Category) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: category %q is not a storefront category", ri+2, row.Category))
		}
		p := row.product()
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
		products = append(products, p)
	}

	repo := productRepo.NewProductRepository(db)
	existing := map[string]bool{}
	if len(ids) > 0 {
		found, err := repo.FetchByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("lookup existing products: %w", err)
		}
		for _, p := range found {
			existing[p.ID] = true
		}
	}
	for _, p := range products {
		if existing[p.ID] {
			result.Updated++
		} else {
			result.Created++
		}
	}
	result.ProcessTime = time.Since(startProcess)

	startDB := time.Now()
	if len(products) > 0 {
		if err := repo.Upsert(ctx, products, opts.BatchSize); err != nil {
			return nil, fmt.Errorf("upsert products: %w", err)
		}
	}
	result.DBTime = time.Since(startDB)

	for _, p := range products {
		result.Products = append(result.Products, p.ToCatalog())
	}
	result.TotalTime = time.Since(startTotal)
	return result, nil
}

// Import runs ImportProducts, then drops cached queries and reindexes the
// imported products.
func (c *Catalog) Import(ctx context.Context, db *gorm.DB, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	res, err := ImportProducts(ctx, db, r, opts)
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	if c.search.Enabled() {
		if err := c.search.IndexAll(ctx, res.Products); err != nil {
			c.logger.Warn("reindex after import failed", zap.Error(err))
		}
	}
	return res, nil
}
