// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart is the ephemeral shopping cart stored in Redis, keyed by a cart
// id that is either the authenticated customer's user id or a random
// anonymous token.
type Cart struct {
	CartID     string     `json:"cart_id"`
	CustomerID *uint      `json:"customer_id,omitempty"`
	Items      []CartItem `json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartItem is a line item with prices and name snapshotted at the time
// of adding. At most one item exists per product id.
type CartItem struct {
	ProductID     uint      `json:"product_id"`
	ProductName   string    `json:"product_name"`
	UnitPrice     int64     `json:"unit_price"`
	DiscountPrice *int64    `json:"discount_price,omitempty"`
	Quantity      int       `json:"quantity"`
	AddedAt       time.Time `json:"added_at"`
}

// EffectivePrice returns the discount price when set, otherwise the unit price
func (i *CartItem) EffectivePrice() int64 {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.UnitPrice
}

// Subtotal returns the line total at the snapshot price
func (i *CartItem) Subtotal() int64 {
	return i.EffectivePrice() * int64(i.Quantity)
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	TotalAmount   int64 `json:"total_amount"`
}

// CalculateTotals sums the cart at its snapshot prices
func (c *Cart) CalculateTotals() Totals {
	var totals Totals
	totals.ItemCount = len(c.Items)
	for _, item := range c.Items {
		totals.TotalQuantity += item.Quantity
		totals.TotalAmount += item.Subtotal()
	}
	return totals
}

// FindItem returns the index of the item for productID, or -1
func (c *Cart) FindItem(productID uint) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
