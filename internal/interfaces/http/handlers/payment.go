// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// PaymentHandler handles gateway callback endpoints. Both callbacks
// carry the same signed parameter set; they differ only in who calls
// them (the shopper's browser vs the gateway's server) and in the
// response contract.
type PaymentHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(orderService *order.Service, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		orderService: orderService,
		config:       cfg,
	}
}

// VNPayReturn handles GET /payment/vnpay-return, the browser redirect
// after the shopper leaves the gateway.
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	ord, _, err := h.orderService.ProcessPaymentReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	message := "Payment failed, order cancelled"
	if ord.Status == order.OrderStatusProcessing {
		message = "Payment confirmed successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data": gin.H{
			"order_number": ord.OrderNumber,
			"status":       ord.Status,
			"total_amount": ord.TotalAmount,
		},
	})
}

// VNPayIPN handles GET /payment/vnpay-ipn, the gateway's
// server-to-server notification. The gateway expects HTTP 200 with its
// RspCode convention on every outcome; anything else triggers retries.
func (h *PaymentHandler) VNPayIPN(c *gin.Context) {
	_, applied, err := h.orderService.ProcessPaymentReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusOK, ipnResponse(err))
		return
	}

	if !applied {
		c.JSON(http.StatusOK, gin.H{
			"RspCode": "02",
			"Message": "Order already confirmed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"RspCode": "00",
		"Message": "Confirm success",
	})
}

// ipnResponse maps a reconciliation error to the gateway's RspCode table
func ipnResponse(err error) gin.H {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return gin.H{"RspCode": "01", "Message": "Order not found"}
	case apperrors.KindAmountMismatch:
		return gin.H{"RspCode": "04", "Message": "Invalid amount"}
	case apperrors.KindInvalidSignature:
		return gin.H{"RspCode": "97", "Message": "Invalid signature"}
	default:
		return gin.H{"RspCode": "99", "Message": "Unknown error"}
	}
}
