// internal/domain/customer/entity.go
package customer

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the order-owning record. It is materialized lazily from
// the authenticated identity when the first order is placed; admin
// point-of-sale customers are created directly without a user account.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"uniqueIndex" json:"user_id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Email     string         `gorm:"size:255" json:"email"`
	Phone     string         `gorm:"size:20;index" json:"phone"`
	Address   string         `gorm:"size:500" json:"address"`
	City      string         `gorm:"size:100" json:"city"`
	District  string         `gorm:"size:100" json:"district"`
	Ward      string         `gorm:"size:100" json:"ward"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Customer) TableName() string {
	return "customers"
}

// Identity carries the profile fields of an authenticated principal,
// extracted from the access-token claims.
type Identity struct {
	UserID uint
	Email  string
	Name   string
	Phone  string
}

// ShippingInfo carries the shipping fields of an order request
type ShippingInfo struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city"`
	District string `json:"district"`
	Ward     string `json:"ward"`
}
