// Package product serves the cafe catalog: cached queries over the product
// repository, search, CSV import and JSON export.
package product

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"cafe.GO/core/cache"
	"cafe.GO/model/catalog"
	entity "cafe.GO/model/entity"
	productRepo "cafe.GO/model/repository/product"
)

// CacheTag groups every cached catalog query.
const CacheTag = "catalog"

const (
	defaultTTL     = 5 * time.Minute
	relatedLimit   = 4
	recommendLimit = 3
)

var ErrNotFound = errors.New("product not found")

// Page is one page of products.
type Page struct {
	Items    []catalog.Product `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// Detail is a product with related items from the same category.
type Detail struct {
	Product catalog.Product   `json:"product"`
	Related []catalog.Product `json:"related"`
}

// Catalog is a cache-aside view of the product repository.
type Catalog struct {
	repo   *productRepo.ProductRepository
	cache  *cache.Cache
	search *Searcher
	ttl    time.Duration
	logger *zap.Logger
}

type CatalogOption func(*Catalog)

func WithCatalogCache(c *cache.Cache) CatalogOption {
	return func(cat *Catalog) { cat.cache = c }
}

func WithCatalogTTL(ttl time.Duration) CatalogOption {
	return func(cat *Catalog) { cat.ttl = ttl }
}

// WithSearcher enables Elasticsearch-backed search and indexing.
func WithSearcher(s *Searcher) CatalogOption {
	return func(cat *Catalog) { cat.search = s }
}

func NewCatalog(db *gorm.DB, logger *zap.Logger, opts ...CatalogOption) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		repo:   productRepo.NewProductRepository(db),
		cache:  cache.GetInstance(),
		ttl:    defaultTTL,
		logger: logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Catalog) Repository() *productRepo.ProductRepository { return c.repo }

func (c *Catalog) cached(keys []interface{}, load func() (interface{}, error)) (interface{}, error) {
	keys = append([]interface{}{CacheTag}, keys...)
	if v, ok := c.cache.GetN(keys...); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	c.cache.SetN(keys, v, c.ttl, []string{CacheTag})
	return v, nil
}

func toCatalog(rows []entity.Product) []catalog.Product {
	out := make([]catalog.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToCatalog())
	}
	return out
}

// List returns a page of products matching f.
func (c *Catalog) List(ctx context.Context, f productRepo.Filter) (*Page, error) {
	featured := "any"
	if f.Featured != nil {
		featured = "false"
		if *f.Featured {
			featured = "true"
		}
	}
	v, err := c.cached([]interface{}{"list", f.Category, featured, f.Search, f.Page, f.PageSize}, func() (interface{}, error) {
		rows, total, err := c.repo.FetchAll(ctx, f)
		if err != nil {
			return nil, err
		}
		size, offset := f.Limits()
		return &Page{Items: toCatalog(rows), Total: total, Page: offset/size + 1, PageSize: size}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Page), nil
}

// Get returns one product or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (*catalog.Product, error) {
	v, err := c.cached([]interface{}{"product", id}, func() (interface{}, error) {
		row, err := c.repo.FetchByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		p := row.ToCatalog()
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*catalog.Product)
	return &p, nil
}

// Detail loads a product and its related products concurrently.
func (c *Catalog) Detail(ctx context.Context, id, category string) (*Detail, error) {
	var (
		d       Detail
		related []catalog.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.Get(gctx, id)
		if err != nil {
			return err
		}
		d.Product = *p
		return nil
	})
	if category != "" {
		g.Go(func() error {
			var err error
			related, err = c.Related(gctx, id, category, relatedLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if category == "" {
		var err error
		related, err = c.Related(ctx, id, d.Product.Category, relatedLimit)
		if err != nil {
			return nil, err
		}
	}
	d.Related = related
	return &d, nil
}

// Related lists other products in category.
func (c *Catalog) Related(ctx context.Context, id, category string, limit int) ([]catalog.Product, error) {
	v, err := c.cached([]interface{}{"related", id, category, limit}, func() (interface{}, error) {
		rows, err := c.repo.FetchRelated(ctx, id, category, limit)
		if err != nil {
			return nil, err
		}
		return toCatalog(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Product), nil
}

func (c *Catalog) Featured(ctx context.Context, limit int) ([]catalog.Product, error) {
	v, err := c.cached([]interface{}{"featured", limit}, func() (interface{}, error) {
		rows, err := c.repo.FetchFeatured(ctx, limit)
		if err != nil {
			return nil, err
		}
		return toCatalog(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Product), nil
}

func (c *Catalog) ByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	v, err := c.cached([]interface{}{"category", category}, func() (interface{}, error) {
		rows, err := c.repo.FetchByCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		return toCatalog(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Product), nil
}

// Categories lists the categories that have products.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	v, err := c.cached([]interface{}{"categories"}, func() (interface{}, error) {
		return c.repo.Categories(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// All returns every product, newest first.
func (c *Catalog) All(ctx context.Context) ([]catalog.Product, error) {
	rows, err := c.repo.FetchAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return toCatalog(rows), nil
}

// Search finds products by text. Elasticsearch is used when configured;
// otherwise, or when it fails, the database is queried.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if c.search.Enabled() {
		ids, err := c.search.Search(ctx, query, limit)
		var rows []entity.Product
		if err == nil {
			rows, err = c.repo.FetchByIDs(ctx, ids)
		}
		if err == nil {
			return ordered(toCatalog(rows), ids), nil
		}
		c.logger.Warn("search backend failed, using database", zap.String("query", query), zap.Error(err))
	}
	page, err := c.List(ctx, productRepo.Filter{Search: query, PageSize: limit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func ordered(products []catalog.Product, ids []string) []catalog.Product {
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Recommend returns the first few products of the catalog for the chat
// assistant.
func (c *Catalog) Recommend(ctx context.Context, limit int) ([]catalog.Product, error) {
	if limit <= 0 {
		limit = recommendLimit
	}
	page, err := c.List(ctx, productRepo.Filter{PageSize: limit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Create stores a new product, drops cached queries and indexes it.
func (c *Catalog) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	row := entity.ProductFromCatalog(p)
	if err := c.repo.Create(ctx, row); err != nil {
		return catalog.Product{}, err
	}
	c.Invalidate()
	created := row.ToCatalog()
	if c.search.Enabled() {
		if err := c.search.Index(ctx, created); err != nil {
			c.logger.Warn("index product failed", zap.String("id", created.ID), zap.Error(err))
		}
	}
	c.logger.Info("product created", zap.String("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// Invalidate drops every cached catalog query.
func (c *Catalog) Invalidate() {
	c.cache.DeleteByTag(CacheTag)
}
