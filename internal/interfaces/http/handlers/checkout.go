// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// CheckoutHandler handles order placement
type CheckoutHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(orderService *order.Service, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		orderService: orderService,
		config:       cfg,
	}
}

// PlaceOrder handles POST /checkout/place-order. For gateway payments
// the response carries the signed redirect URL alongside the order.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ord, err := h.orderService.CreateOrder(c.Request.Context(), identity, &req)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	data := gin.H{
		"order": ord,
	}

	if req.PaymentMethod == order.PaymentMethodVNPay {
		paymentURL, err := h.orderService.CreatePaymentURL(ord.ID, c.ClientIP())
		if err != nil {
			// The order exists but cannot be paid online right now; the
			// client can retry via the payment-url endpoint.
			c.JSON(apperrors.HTTPStatus(err), gin.H{
				"error": apperrors.UserMessage(err),
				"data":  data,
			})
			return
		}
		data["payment_url"] = paymentURL
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    data,
	})
}

// GetPaymentURL handles POST /checkout/orders/:id/payment-url, issuing
// a fresh signed redirect for a pending gateway order.
func (h *CheckoutHandler) GetPaymentURL(c *gin.Context) {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	ord, err := h.orderService.GetOwnedOrder(parseIDParam(c), identity.UserID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	paymentURL, err := h.orderService.CreatePaymentURL(ord.ID, c.ClientIP())
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment URL created successfully",
		"data": gin.H{
			"payment_url": paymentURL,
		},
	})
}
