package customer

import (
	"context"
	"time"

	"gorm.io/gorm"

	entity "cafe.GO/model/entity"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	var c entity.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) CreateSession(ctx context.Context, s *entity.CustomerSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindActiveSession returns an unexpired session with its customer loaded.
func (r *CustomerRepository) FindActiveSession(ctx context.Context, token string, now time.Time) (*entity.CustomerSession, error) {
	var s entity.CustomerSession
	err := r.db.WithContext(ctx).Preload("Customer").
		Where("token = ? AND expires_at > ?", token, now).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CustomerRepository) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&entity.CustomerSession{}).Error
}

// DeleteExpiredSessions removes sessions that expired before now.
func (r *CustomerRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&entity.CustomerSession{})
	return res.RowsAffected, res.Error
}
