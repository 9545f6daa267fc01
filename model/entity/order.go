package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order statuses.
const (
	OrderStatusPending         = "pending"
	OrderStatusAwaitingPayment = "awaiting_payment"
	OrderStatusPaid            = "paid"
	OrderStatusCanceled        = "canceled"
)

type Order struct {
	ID               string            `gorm:"column:id;type:varchar(36);primaryKey"`
	CustomerID       uint              `gorm:"column:customer_id;index"`
	ProfileID        string            `gorm:"column:profile_id;type:varchar(64);index"`
	Email            string            `gorm:"column:email;type:varchar(255)"`
	Status           string            `gorm:"column:status;type:varchar(32);not null;default:pending"`
	PaymentMethod    string            `gorm:"column:payment_method;type:varchar(32);not null"`
	PaymentSessionID string            `gorm:"column:stripe_session_id;type:varchar(255);index"`
	TotalAmount      decimal.Decimal   `gorm:"column:total_amount;type:decimal(12,2);not null"`
	Currency         string            `gorm:"column:currency;type:varchar(3)"`
	Details          datatypes.JSONMap `gorm:"column:details"`
	Items            []OrderItem       `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "cafe_orders"
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

type OrderItem struct {
	ID           uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID      string          `gorm:"column:order_id;type:varchar(36);not null;index"`
	ProductID    string          `gorm:"column:product_id;type:varchar(36);not null"`
	Name         string          `gorm:"column:name;type:varchar(255)"`
	Quantity     int             `gorm:"column:quantity;not null"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:decimal(12,2);not null"`
}

func (OrderItem) TableName() string {
	return "cafe_order_items"
}
