// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// OrderHandler handles order endpoints for customers and admins
type OrderHandler struct {
	orderService    *order.Service
	customerService *customer.Service
	ledger          *payment.Ledger
	pdfService      *pdf.Service
	config          *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, db *gorm.DB, cfg *config.Config) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		customerService: customer.NewService(db, cfg),
		ledger:          payment.NewLedger(db, cfg),
		pdfService:      pdf.NewService(cfg),
		config:          cfg,
	}
}

// ListMyOrders handles GET /orders
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	cust, err := h.customerService.GetByUserID(userID)
	if err != nil {
		// No customer record yet means no orders yet.
		c.JSON(http.StatusOK, gin.H{
			"message": "Orders retrieved successfully",
			"data":    order.OrderListResponse{Orders: []order.Order{}},
		})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	response, err := h.orderService.GetCustomerOrders(cust.ID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    response,
	})
}

// GetMyOrder handles GET /orders/:id
func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	ord, err := h.orderService.GetOwnedOrder(parseIDParam(c), userID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    ord,
	})
}

// CancelMyOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelMyOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "cancelled by customer"
	}

	ord, err := h.orderService.GetOwnedOrder(parseIDParam(c), userID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	if err := h.orderService.CancelOrder(ord.ID, req.Reason, userID); err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
	})
}

// Admin endpoints

// ListOrders handles GET /admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.orderService.GetOrders(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    response,
	})
}

// CreateOrder handles POST /admin/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	var req order.AdminOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ord, err := h.orderService.CreateAdminOrder(&req, adminID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    ord,
	})
}

// GetOrder handles GET /admin/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ord, err := h.orderService.GetOrder(parseIDParam(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    ord,
	})
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	var req struct {
		Status order.OrderStatus `json:"status" binding:"required"`
		Note   string            `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.orderService.UpdateOrderStatus(parseIDParam(c), req.Status, req.Note, adminID); err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
	})
}

// CancelOrder handles POST /admin/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.orderService.CancelOrder(parseIDParam(c), req.Reason, adminID); err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
	})
}

// ListTransactions handles GET /admin/orders/:id/transactions
func (h *OrderHandler) ListTransactions(c *gin.Context) {
	ord, err := h.orderService.GetOrder(parseIDParam(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	transactions, err := h.ledger.GetTransactionsByOrderID(ord.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transactions retrieved successfully",
		"data":    transactions,
	})
}

// GetBill handles GET /admin/orders/:id/bill, streaming the PDF bill
func (h *OrderHandler) GetBill(c *gin.Context) {
	ord, err := h.orderService.GetOrder(parseIDParam(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": apperrors.UserMessage(err),
		})
		return
	}

	buf, err := h.pdfService.GenerateBill(ord)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate bill",
		})
		return
	}

	filename := fmt.Sprintf("bill-%s.pdf", ord.OrderNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// parseIDParam reads the :id route parameter, 0 when malformed
func parseIDParam(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
