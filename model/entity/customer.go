package entity

import "time"

type Customer struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	FullName     string    `gorm:"column:full_name;type:varchar(255)"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string {
	return "cafe_customers"
}

// CustomerSession is a bearer token issued at sign-in.
type CustomerSession struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Token      string    `gorm:"column:token;type:varchar(64);not null;uniqueIndex"`
	CustomerID uint      `gorm:"column:customer_id;not null;index"`
	Customer   Customer  `gorm:"foreignKey:CustomerID"`
	ExpiresAt  time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CustomerSession) TableName() string {
	return "cafe_customer_session"
}
