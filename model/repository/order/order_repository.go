package order

import (
	"context"

	"gorm.io/gorm"

	entity "cafe.GO/model/entity"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores the order and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindByPaymentSession(ctx context.Context, sessionID string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("stripe_session_id = ?", sessionID).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus sets the status of the order with the given id.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID uint, limit int) ([]entity.Order, error) {
	var orders []entity.Order
	q := r.db.WithContext(ctx).Preload("Items").Where("customer_id = ?", customerID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}
