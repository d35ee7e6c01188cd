// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cartID, _ := h.resolveCartID(c)

	stored, err := h.cartService.GetOrCreateCart(c.Request.Context(), cartID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data": cart.CartResponse{
			Cart:   stored,
			Totals: stored.CalculateTotals(),
		},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	cartID, customerID := h.resolveCartID(c)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.cartService.AddToCart(c.Request.Context(), cartID, customerID, &req)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    response,
	})
}

// UpdateCartItem handles PUT /cart/items/:product_id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	cartID, _ := h.resolveCartID(c)

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.cartService.UpdateCartItem(c.Request.Context(), cartID, uint(productID), &req)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    response,
	})
}

// RemoveCartItem handles DELETE /cart/items/:product_id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	cartID, _ := h.resolveCartID(c)

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	response, err := h.cartService.RemoveFromCart(c.Request.Context(), cartID, uint(productID))
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    response,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	cartID, _ := h.resolveCartID(c)

	if err := h.cartService.ClearCart(c.Request.Context(), cartID); err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// resolveCartID picks the cart key for this request: authenticated
// users get a stable per-user id, anonymous visitors a cookie-backed
// uuid.
func (h *CartHandler) resolveCartID(c *gin.Context) (string, *uint) {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.UserCartID(userID), &userID
	}

	cartID, err := c.Cookie("cart_id")
	if err != nil || cartID == "" {
		cartID = uuid.New().String()
		// Cookie lifetime tracks the cart TTL in Redis.
		c.SetCookie("cart_id", cartID, int(h.config.Cart.TTL.Seconds()), "/", "", false, true)
	}

	return cartID, nil
}
