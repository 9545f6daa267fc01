package product

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	entity "cafe.GO/model/entity"
)

// Filter narrows FetchAll. Zero values mean "no constraint".
type Filter struct {
	Category string
	Featured *bool
	Search   string
	Page     int
	PageSize int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Limits returns the clamped page size and row offset.
func (f Filter) Limits() (limit, offset int) {
	size := f.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FetchAll returns one page of products, newest first, and the total match count.
func (r *ProductRepository) FetchAll(ctx context.Context, f Filter) ([]entity.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset := f.Limits()
	var products []entity.Product
	err := q.Order("created_at DESC").Order("id").Limit(limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *ProductRepository) FetchByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchByIDs returns the products found among ids, in no particular order.
func (r *ProductRepository) FetchByIDs(ctx context.Context, ids []string) ([]entity.Product, error) {
	var products []entity.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *ProductRepository) FetchByCategory(ctx context.Context, category string) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Where("category = ?", category).Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *ProductRepository) FetchFeatured(ctx context.Context, limit int) ([]entity.Product, error) {
	var products []entity.Product
	q := r.db.WithContext(ctx).Where("featured = ?", true).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&products).Error
	return products, err
}

// FetchRelated returns other products of the same category.
func (r *ProductRepository) FetchRelated(ctx context.Context, id, category string, limit int) ([]entity.Product, error) {
	var products []entity.Product
	q := r.db.WithContext(ctx).Where("category = ? AND id <> ?", category, id).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&products).Error
	return products, err
}

// FetchAllProducts returns the whole catalog (export, search indexing).
func (r *ProductRepository) FetchAllProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	return products, err
}

// Categories returns the distinct categories in use.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&entity.Product{}).Distinct("category").Order("category").Pluck("category", &cats).Error
	return cats, err
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Upsert inserts or updates products by id in batches.
func (r *ProductRepository) Upsert(ctx context.Context, products []*entity.Product, batchSize int) error {
	if len(products) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "currency", "images", "category", "featured", "updated_at"}),
	}).CreateInBatches(products, batchSize).Error
}
