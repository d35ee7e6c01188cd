// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles cart business logic. Carts live in Redis with a
// sliding TTL; product existence and pricing are validated against the
// catalog on every add.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse represents a cart with computed totals
type CartResponse struct {
	Cart   *Cart  `json:"cart"`
	Totals Totals `json:"totals"`
}

// GetOrCreateCart returns the cart for cartID, creating an empty one
// in memory when none is stored yet.
func (s *Service) GetOrCreateCart(ctx context.Context, cartID string) (*Cart, error) {
	if cartID == "" {
		return nil, apperrors.Validation("cart.GetOrCreateCart", "cart id is required")
	}

	data, err := s.redisClient.Get(ctx, cartKey(cartID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &Cart{
			CartID:    cartID,
			Items:     []CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &c, nil
}

// AddToCart adds an item to the cart, snapshotting the product name and
// prices. Adding a product already in the cart sums the quantities.
func (s *Service) AddToCart(ctx context.Context, cartID string, customerID *uint, req *AddToCartRequest) (*CartResponse, error) {
	var prod product.Product
	result := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, apperrors.NotFound("cart.AddToCart", "product not found or inactive")
	}

	c, err := s.GetOrCreateCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if customerID != nil {
		c.CustomerID = customerID
	}

	if idx := c.FindItem(req.ProductID); idx >= 0 {
		c.Items[idx].Quantity += req.Quantity
		// Refresh the snapshot so a price change applies to the whole line
		c.Items[idx].ProductName = prod.Name
		c.Items[idx].UnitPrice = prod.Price
		c.Items[idx].DiscountPrice = prod.DiscountPrice
	} else {
		c.Items = append(c.Items, CartItem{
			ProductID:     prod.ID,
			ProductName:   prod.Name,
			UnitPrice:     prod.Price,
			DiscountPrice: prod.DiscountPrice,
			Quantity:      req.Quantity,
			AddedAt:       time.Now().UTC(),
		})
	}

	if err := s.saveCart(ctx, c); err != nil {
		return nil, err
	}

	return &CartResponse{Cart: c, Totals: c.CalculateTotals()}, nil
}

// UpdateCartItem sets the quantity of a cart line. Quantity zero or
// below removes the line.
func (s *Service) UpdateCartItem(ctx context.Context, cartID string, productID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	c, err := s.GetOrCreateCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := c.FindItem(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart.UpdateCartItem", "item not found in cart")
	}

	if req.Quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = req.Quantity
	}

	if err := s.saveCart(ctx, c); err != nil {
		return nil, err
	}

	return &CartResponse{Cart: c, Totals: c.CalculateTotals()}, nil
}

// RemoveFromCart removes a single product from the cart
func (s *Service) RemoveFromCart(ctx context.Context, cartID string, productID uint) (*CartResponse, error) {
	return s.UpdateCartItem(ctx, cartID, productID, &UpdateCartItemRequest{Quantity: 0})
}

// RemoveItems removes the given products from the cart, ignoring ids
// that are not present. Used by the order workflow after a purchase.
func (s *Service) RemoveItems(ctx context.Context, cartID string, productIDs []uint) error {
	c, err := s.GetOrCreateCart(ctx, cartID)
	if err != nil {
		return err
	}

	remove := make(map[uint]bool, len(productIDs))
	for _, id := range productIDs {
		remove[id] = true
	}

	kept := c.Items[:0]
	for _, item := range c.Items {
		if !remove[item.ProductID] {
			kept = append(kept, item)
		}
	}
	c.Items = kept

	if len(c.Items) == 0 {
		return s.ClearCart(ctx, cartID)
	}
	return s.saveCart(ctx, c)
}

// ClearCart deletes the stored cart
func (s *Service) ClearCart(ctx context.Context, cartID string) error {
	if cartID == "" {
		return apperrors.Validation("cart.ClearCart", "cart id is required")
	}
	return s.redisClient.Del(ctx, cartKey(cartID)).Err()
}

// MergeCarts folds the anonymous cart into the customer's cart at login
// time. Quantities are summed for products present in both; the
// anonymous cart is deleted afterwards.
func (s *Service) MergeCarts(ctx context.Context, anonymousID, customerCartID string, customerID uint) error {
	if anonymousID == "" || anonymousID == customerCartID {
		return nil
	}

	anon, err := s.GetOrCreateCart(ctx, anonymousID)
	if err != nil || len(anon.Items) == 0 {
		return err
	}

	target, err := s.GetOrCreateCart(ctx, customerCartID)
	if err != nil {
		return err
	}
	target.CustomerID = &customerID

	for _, item := range anon.Items {
		if idx := target.FindItem(item.ProductID); idx >= 0 {
			target.Items[idx].Quantity += item.Quantity
		} else {
			target.Items = append(target.Items, item)
		}
	}

	if err := s.saveCart(ctx, target); err != nil {
		return err
	}

	return s.ClearCart(ctx, anonymousID)
}

func (s *Service) saveCart(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	// Every write refreshes the inactivity TTL
	if err := s.redisClient.Set(ctx, cartKey(c.CartID), data, s.config.Cart.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}

// UserCartID is the stable cart id for an authenticated user
func UserCartID(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
