// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Payment methods accepted at checkout
const (
	PaymentMethodVNPay = "vnpay"
	PaymentMethodCash  = "cash"
	PaymentMethodCOD   = "cod"
)

// Order number prefixes distinguish storefront checkouts from
// admin-entered point-of-sale orders.
const (
	OrderNumberPrefixStorefront = "ORD"
	OrderNumberPrefixAdmin      = "ADM"
)

// Order represents the order entity. Monetary amounts are VND. The
// total is fixed at creation time from the cart snapshot and never
// re-derived, preserving historical pricing.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	CustomerID  uint        `gorm:"not null;index" json:"customer_id"`
	Status      OrderStatus `gorm:"not null;default:'pending'" json:"status"`
	TotalAmount int64       `gorm:"not null" json:"total_amount"`
	TaxAmount   int64       `gorm:"default:0" json:"tax_amount"` // VAT stored at creation time

	// Shipping snapshot
	ShippingName     string `gorm:"size:255" json:"shipping_name"`
	ShippingPhone    string `gorm:"size:20" json:"shipping_phone"`
	ShippingAddress  string `gorm:"size:500" json:"shipping_address"`
	ShippingCity     string `gorm:"size:100" json:"shipping_city"`
	ShippingDistrict string `gorm:"size:100" json:"shipping_district"`
	ShippingWard     string `gorm:"size:100" json:"shipping_ward"`

	PaymentMethod        string     `gorm:"not null;size:50" json:"payment_method"`
	PaymentTransactionID *uint      `json:"payment_transaction_id"`
	PaymentDate          *time.Time `json:"payment_date"`
	ShippingDate         *time.Time `json:"shipping_date"`

	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedBy *uint          `gorm:"index" json:"created_by"` // Admin user id for ADM orders
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Customer customer.Customer `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"customer"`
	Details  []OrderDetail     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"details"`
}

// OrderDetail is an immutable line item with prices snapshotted from
// the cart at order time. Subtotal is computed once and stored.
type OrderDetail struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Discount    int64     `gorm:"default:0" json:"discount"` // Absolute amount per unit
	Subtotal    int64     `gorm:"not null" json:"subtotal"`  // (unit_price - discount) * quantity
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string       { return "orders" }
func (OrderDetail) TableName() string { return "order_details" }

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// ProductIDs returns the product ids of all order lines
func (o *Order) ProductIDs() []uint {
	ids := make([]uint, 0, len(o.Details))
	for _, d := range o.Details {
		ids = append(ids, d.ProductID)
	}
	return ids
}

// GenerateOrderNumber builds a human-readable order number. The random
// suffix keeps concurrent submissions within the same second distinct;
// the unique index on order_number stays the authoritative guard.
func GenerateOrderNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s%s%s", prefix, time.Now().UTC().Format("20060102150405"), suffix)
}

// validTransitions is the order state machine. Cancellation is handled
// separately via CanBeCancelled.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// IsValidTransition checks whether from→to is an allowed status change
func IsValidTransition(from, to OrderStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
