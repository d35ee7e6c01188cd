// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderNumberAttempts bounds the retry-on-conflict loop around the
// unique index on order_number.
const orderNumberAttempts = 3

// Service is the order workflow engine: it turns cart snapshots into
// persisted orders, hands off to the payment gateway, and reconciles
// gateway callbacks into order state. It is the only writer that
// mutates order status.
type Service struct {
	db              *gorm.DB
	config          *config.Config
	cartService     *cart.Service
	customerService *customer.Service
	gateway         *payment.Gateway
	ledger          *payment.Ledger
	emailService    *email.Service
	log             *logrus.Logger
}

// NewService creates a new order service. gateway may be nil when the
// merchant credentials are not configured; VNPay checkouts then fail
// with a configuration error while cash flows keep working.
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service,
	customerService *customer.Service, gateway *payment.Gateway,
	ledger *payment.Ledger, log *logrus.Logger) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		cartService:     cartService,
		customerService: customerService,
		gateway:         gateway,
		ledger:          ledger,
		emailService:    email.NewService(cfg, log),
		log:             log,
	}
}

// CreateOrderRequest represents storefront order creation data
type CreateOrderRequest struct {
	Shipping           customer.ShippingInfo `json:"shipping" binding:"required"`
	PaymentMethod      string                `json:"payment_method" binding:"required,oneof=vnpay cash cod"`
	SelectedProductIDs []uint                `json:"selected_product_ids"`
	Notes              string                `json:"notes"`
}

// AdminOrderLine references a product directly, without a cart
type AdminOrderLine struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// AdminOrderRequest represents admin-originated (point-of-sale) order data
type AdminOrderRequest struct {
	CustomerID uint                   `json:"customer_id" binding:"required"`
	Shipping   *customer.ShippingInfo `json:"shipping"`
	Lines      []AdminOrderLine       `json:"lines" binding:"required,min=1,dive"`
	Notes      string                 `json:"notes"`
}

// OrderListRequest represents admin order list query parameters
type OrderListRequest struct {
	Page      int         `form:"page,default=1"`
	Limit     int         `form:"limit,default=20"`
	Status    OrderStatus `form:"status"`
	Search    string      `form:"search"` // Order number, customer name or phone
	DateFrom  string      `form:"date_from"`
	DateTo    string      `form:"date_to"`
	SortBy    string      `form:"sort_by,default=created_at"`
	SortOrder string      `form:"sort_order,default=desc"`
}

// OrderListResponse represents orders with pagination
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CreateOrder creates an order from the authenticated user's cart.
// When selected product ids are given, only the matching cart lines are
// purchased and the rest stay in the cart (partial checkout). VNPay
// orders keep their items in the cart until the gateway confirms
// payment, so an abandoned payment does not lose cart contents.
func (s *Service) CreateOrder(ctx context.Context, identity customer.Identity, req *CreateOrderRequest) (*Order, error) {
	const op = "order.CreateOrder"

	cartID := cart.UserCartID(identity.UserID)

	c, err := s.cartService.GetOrCreateCart(ctx, cartID)
	if err != nil {
		return nil, apperrors.Internal(op, err)
	}

	selected := selectItems(c.Items, req.SelectedProductIDs)
	if len(selected) == 0 {
		return nil, apperrors.E(apperrors.KindEmptyOrder, op, "no items selected for order", nil)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// First-order customers are materialized here from the identity
	// claims; an explicit step, not a side effect.
	cust, err := s.customerService.GetOrCreate(tx, identity)
	if err != nil {
		tx.Rollback()
		return nil, apperrors.Internal(op, err)
	}

	if err := s.customerService.UpdateShipping(tx, cust, req.Shipping); err != nil {
		tx.Rollback()
		return nil, apperrors.Internal(op, err)
	}

	ord, err := s.persistOrder(tx, cust.ID, OrderNumberPrefixStorefront, selected, req, nil)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal(op, fmt.Errorf("failed to commit order transaction: %w", err))
	}

	// Cash and COD orders don't wait for a callback; their items leave
	// the cart right away. Cart state is advisory, so a failure here is
	// logged rather than failing the committed order.
	if req.PaymentMethod != PaymentMethodVNPay {
		if err := s.cartService.RemoveItems(ctx, cartID, ord.ProductIDs()); err != nil {
			s.log.WithError(err).WithField("order_number", ord.OrderNumber).
				Warn("failed to remove purchased items from cart")
		}
	}

	return s.GetOrder(ord.ID)
}

// persistOrder writes the order row and its details inside the caller's
// transaction, retrying on order-number conflicts.
func (s *Service) persistOrder(tx *gorm.DB, customerID uint, prefix string,
	items []cart.CartItem, req *CreateOrderRequest, createdBy *uint) (*Order, error) {
	const op = "order.persistOrder"

	var subtotal int64
	for _, item := range items {
		subtotal += item.Subtotal()
	}
	tax := subtotal * int64(s.config.Order.VATRateBps) / 10000

	ord := Order{
		CustomerID:       customerID,
		Status:           OrderStatusPending,
		TotalAmount:      subtotal + tax,
		TaxAmount:        tax,
		ShippingName:     req.Shipping.Name,
		ShippingPhone:    req.Shipping.Phone,
		ShippingAddress:  req.Shipping.Address,
		ShippingCity:     req.Shipping.City,
		ShippingDistrict: req.Shipping.District,
		ShippingWard:     req.Shipping.Ward,
		PaymentMethod:    req.PaymentMethod,
		Notes:            req.Notes,
		CreatedBy:        createdBy,
	}

	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		ord.OrderNumber = GenerateOrderNumber(prefix)
		if err = tx.Create(&ord).Error; err == nil {
			break
		}
		if !isDuplicateKeyError(err) {
			return nil, apperrors.Internal(op, fmt.Errorf("failed to create order: %w", err))
		}
	}
	if err != nil {
		return nil, apperrors.Internal(op, fmt.Errorf("order number conflict persisted after %d attempts: %w", orderNumberAttempts, err))
	}

	for _, item := range items {
		discount := item.UnitPrice - item.EffectivePrice()
		detail := OrderDetail{
			OrderID:     ord.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    discount,
			Subtotal:    item.Subtotal(),
		}
		if err := tx.Create(&detail).Error; err != nil {
			return nil, apperrors.Internal(op, fmt.Errorf("failed to create order detail: %w", err))
		}
		ord.Details = append(ord.Details, detail)
	}

	return &ord, nil
}

// CreateAdminOrder creates a point-of-sale order for an existing
// customer. Payment is confirmed in person, so the order starts in
// processing with a completed cash transaction already on the ledger.
func (s *Service) CreateAdminOrder(req *AdminOrderRequest, adminID uint) (*Order, error) {
	const op = "order.CreateAdminOrder"

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var cust customer.Customer
	if err := tx.First(&cust, req.CustomerID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, "customer not found")
		}
		return nil, apperrors.Internal(op, err)
	}

	shipping := customer.ShippingInfo{
		Name:     cust.Name,
		Phone:    cust.Phone,
		Address:  cust.Address,
		City:     cust.City,
		District: cust.District,
		Ward:     cust.Ward,
	}
	if req.Shipping != nil {
		shipping = *req.Shipping
		if err := s.customerService.UpdateShipping(tx, &cust, shipping); err != nil {
			tx.Rollback()
			return nil, apperrors.Internal(op, err)
		}
	}

	items, err := s.linesToItems(tx, req.Lines)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	createReq := &CreateOrderRequest{
		Shipping:      shipping,
		PaymentMethod: PaymentMethodCash,
		Notes:         req.Notes,
	}
	ord, err := s.persistOrder(tx, cust.ID, OrderNumberPrefixAdmin, items, createReq, &adminID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now().UTC()
	txn := payment.Transaction{
		OrderID:       ord.ID,
		Status:        payment.TransactionStatusCompleted,
		PaymentMethod: PaymentMethodCash,
		Amount:        ord.TotalAmount,
		PaymentTime:   &now,
		Notes:         "cash payment recorded at order creation",
	}
	if err := s.ledger.CreateTransaction(tx, &txn); err != nil {
		tx.Rollback()
		return nil, apperrors.Internal(op, err)
	}

	updates := map[string]interface{}{
		"status":                 OrderStatusProcessing,
		"payment_date":           now,
		"payment_transaction_id": txn.ID,
	}
	if err := tx.Model(&Order{}).Where("id = ?", ord.ID).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal(op, fmt.Errorf("failed to confirm admin order: %w", err))
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal(op, fmt.Errorf("failed to commit order transaction: %w", err))
	}

	return s.GetOrder(ord.ID)
}

// linesToItems resolves admin order lines against the catalog,
// snapshotting names and prices the same way the cart does.
func (s *Service) linesToItems(tx *gorm.DB, lines []AdminOrderLine) ([]cart.CartItem, error) {
	const op = "order.CreateAdminOrder"

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var products []product.Product
	if err := tx.Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, apperrors.Internal(op, err)
	}
	byID := make(map[uint]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]cart.CartItem, 0, len(lines))
	for _, line := range lines {
		prod, ok := byID[line.ProductID]
		if !ok {
			return nil, apperrors.NotFound(op, fmt.Sprintf("product %d not found or inactive", line.ProductID))
		}
		items = append(items, cart.CartItem{
			ProductID:     prod.ID,
			ProductName:   prod.Name,
			UnitPrice:     prod.Price,
			DiscountPrice: prod.DiscountPrice,
			Quantity:      line.Quantity,
		})
	}
	return items, nil
}

// CreatePaymentURL builds the signed gateway redirect URL for a pending
// VNPay order.
func (s *Service) CreatePaymentURL(orderID uint, clientIP string) (string, error) {
	const op = "order.CreatePaymentURL"

	if s.gateway == nil {
		return "", apperrors.E(apperrors.KindPaymentConfig, op, "payment gateway is not configured", nil)
	}

	ord, err := s.GetOrder(orderID)
	if err != nil {
		return "", err
	}
	if ord.PaymentMethod != PaymentMethodVNPay {
		return "", apperrors.Validation(op, "order is not a gateway payment")
	}
	if ord.Status != OrderStatusPending {
		return "", apperrors.E(apperrors.KindInvalidTransition, op,
			fmt.Sprintf("order is %s, payment url requires pending", ord.Status), nil)
	}

	return s.gateway.BuildPaymentURL(payment.PaymentURLRequest{
		TxnRef:    strconv.FormatUint(uint64(ord.ID), 10),
		Amount:    ord.TotalAmount,
		OrderInfo: fmt.Sprintf("Thanh toan don hang %s", ord.OrderNumber),
		ClientIP:  clientIP,
	})
}

// ProcessPaymentReturn reconciles a gateway callback (browser return or
// IPN) into order state. The whole transition runs in one transaction
// with the order row locked; a callback for an order that already left
// pending is accepted as a no-op so duplicate notifications are safe.
// The boolean reports whether this callback changed order state.
func (s *Service) ProcessPaymentReturn(ctx context.Context, values url.Values) (*Order, bool, error) {
	const op = "order.ProcessPaymentReturn"

	if s.gateway == nil {
		return nil, false, apperrors.E(apperrors.KindPaymentConfig, op, "payment gateway is not configured", nil)
	}

	data, err := s.gateway.VerifyCallback(values)
	if err != nil {
		s.log.WithError(err).Error("rejected gateway callback with invalid signature")
		return nil, false, err
	}

	orderID, err := strconv.ParseUint(data.TxnRef, 10, 32)
	if err != nil {
		return nil, false, apperrors.NotFound(op, "malformed transaction reference")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var ord Order
	if err := s.lockForUpdate(tx).First(&ord, uint(orderID)).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperrors.NotFound(op, "order not found")
		}
		return nil, false, apperrors.Internal(op, err)
	}

	// The gateway reports subunit amounts (x100). Any mismatch against
	// the stored total is treated as tampering, never corrected.
	if data.Amount != ord.TotalAmount*100 {
		tx.Rollback()
		s.log.WithFields(logrus.Fields{
			"order_number":    ord.OrderNumber,
			"callback_amount": data.Amount,
			"order_amount":    ord.TotalAmount,
		}).Error("gateway callback amount does not match order total")
		return nil, false, apperrors.E(apperrors.KindAmountMismatch, op,
			"callback amount does not match order total", nil)
	}

	if ord.Status != OrderStatusPending {
		// Duplicate delivery (return URL and IPN can both fire). Keep
		// the audit trail but leave order state untouched.
		dup := payment.Transaction{
			OrderID:           ord.ID,
			TransactionCode:   data.TransactionNo,
			TransactionStatus: data.TransactionStatus,
			ResponseCode:      data.ResponseCode,
			Status:            callbackLedgerStatus(data),
			PaymentMethod:     PaymentMethodVNPay,
			Amount:            data.Amount / 100,
			BankCode:          data.BankCode,
			CardType:          data.CardType,
			RawData:           data.RawData,
			Notes:             "duplicate gateway callback ignored",
		}
		if err := s.ledger.CreateTransaction(tx, &dup); err != nil {
			tx.Rollback()
			return nil, false, apperrors.Internal(op, err)
		}
		if err := tx.Commit().Error; err != nil {
			return nil, false, apperrors.Internal(op, err)
		}
		result, err := s.GetOrder(ord.ID)
		return result, false, err
	}

	now := time.Now().UTC()
	txn := payment.Transaction{
		OrderID:           ord.ID,
		TransactionCode:   data.TransactionNo,
		TransactionStatus: data.TransactionStatus,
		ResponseCode:      data.ResponseCode,
		Status:            callbackLedgerStatus(data),
		PaymentMethod:     PaymentMethodVNPay,
		Amount:            data.Amount / 100,
		BankCode:          data.BankCode,
		CardType:          data.CardType,
		PaymentTime:       &now,
		RawData:           data.RawData,
	}
	if err := s.ledger.CreateTransaction(tx, &txn); err != nil {
		tx.Rollback()
		return nil, false, apperrors.Internal(op, err)
	}

	var updates map[string]interface{}
	if data.IsSuccess() {
		updates = map[string]interface{}{
			"status":                 OrderStatusProcessing,
			"payment_date":           now,
			"payment_transaction_id": txn.ID,
		}
	} else {
		note := fmt.Sprintf("Payment failed with gateway response code %s", data.ResponseCode)
		if ord.Notes != "" {
			note = ord.Notes + "\n" + note
		}
		updates = map[string]interface{}{
			"status":                 OrderStatusCancelled,
			"payment_transaction_id": txn.ID,
			"notes":                  note,
		}
	}

	if err := tx.Model(&Order{}).Where("id = ?", ord.ID).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, false, apperrors.Internal(op, fmt.Errorf("failed to update order status: %w", err))
	}

	if err := tx.Commit().Error; err != nil {
		return nil, false, apperrors.Internal(op, err)
	}

	result, err := s.GetOrder(ord.ID)
	if err != nil {
		return nil, false, err
	}

	if data.IsSuccess() {
		s.afterPaymentSuccess(ctx, result)
	}

	return result, true, nil
}

// afterPaymentSuccess runs the best-effort post-commit side effects:
// removing the purchased items from the customer's cart and sending the
// confirmation mail.
func (s *Service) afterPaymentSuccess(ctx context.Context, ord *Order) {
	if ord.Customer.UserID != nil {
		cartID := cart.UserCartID(*ord.Customer.UserID)
		if err := s.cartService.RemoveItems(ctx, cartID, ord.ProductIDs()); err != nil {
			s.log.WithError(err).WithField("order_number", ord.OrderNumber).
				Warn("failed to remove purchased items from cart")
		}
	}

	if ord.Customer.Email != "" {
		if err := s.emailService.SendOrderConfirmation(ord.Customer.Email, ord.OrderNumber, ord.TotalAmount); err != nil {
			s.log.WithError(err).WithField("order_number", ord.OrderNumber).
				Warn("failed to send order confirmation email")
		}
	}
}

// UpdateOrderStatus applies an explicit status transition
func (s *Service) UpdateOrderStatus(orderID uint, status OrderStatus, note string, updatedBy uint) error {
	const op = "order.UpdateOrderStatus"

	var ord Order
	if err := s.db.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(op, "order not found")
		}
		return apperrors.Internal(op, err)
	}

	if !IsValidTransition(ord.Status, status) {
		return apperrors.E(apperrors.KindInvalidTransition, op,
			fmt.Sprintf("invalid status transition from %s to %s", ord.Status, status), nil)
	}

	updates := map[string]interface{}{
		"status": status,
	}

	now := time.Now().UTC()
	switch status {
	case OrderStatusShipped:
		updates["shipping_date"] = now
	}
	if note != "" {
		combined := note
		if ord.Notes != "" {
			combined = ord.Notes + "\n" + note
		}
		updates["notes"] = combined
	}

	if err := s.db.Model(&ord).Updates(updates).Error; err != nil {
		return apperrors.Internal(op, fmt.Errorf("failed to update order status: %w", err))
	}

	return nil
}

// CancelOrder cancels an order on customer or admin request.
// Cancellation is only permitted from pending or processing.
func (s *Service) CancelOrder(orderID uint, reason string, cancelledBy uint) error {
	const op = "order.CancelOrder"

	var ord Order
	if err := s.db.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(op, "order not found")
		}
		return apperrors.Internal(op, err)
	}

	if !ord.CanBeCancelled() {
		return apperrors.E(apperrors.KindInvalidTransition, op,
			fmt.Sprintf("order cannot be cancelled in status %s", ord.Status), nil)
	}

	note := fmt.Sprintf("Order cancelled: %s", reason)
	if ord.Notes != "" {
		note = ord.Notes + "\n" + note
	}

	updates := map[string]interface{}{
		"status": OrderStatusCancelled,
		"notes":  note,
	}
	if err := s.db.Model(&ord).Updates(updates).Error; err != nil {
		return apperrors.Internal(op, fmt.Errorf("failed to cancel order: %w", err))
	}

	return nil
}

// ExpireStalePendingOrders cancels VNPay orders still pending past the
// configured window. The gateway URL expires after 15 minutes on its
// side; this sweep keeps abandoned checkouts from accumulating.
func (s *Service) ExpireStalePendingOrders(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	result := s.db.Model(&Order{}).
		Where("status = ? AND payment_method = ? AND created_at < ?",
			OrderStatusPending, PaymentMethodVNPay, cutoff).
		Updates(map[string]interface{}{
			"status": OrderStatusCancelled,
			"notes":  "Cancelled automatically: payment window expired",
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire stale pending orders: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.log.WithField("count", result.RowsAffected).Info("expired stale pending orders")
	}
	return result.RowsAffected, nil
}

// RunPendingOrderSweep periodically expires stale pending orders until
// the context is cancelled.
func (s *Service) RunPendingOrderSweep(ctx context.Context) {
	ticker := time.NewTicker(s.config.Order.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpireStalePendingOrders(s.config.Order.PendingExpiry); err != nil {
				s.log.WithError(err).Error("pending order sweep failed")
			}
		}
	}
}

// GetOrder retrieves a single order with its details and customer
func (s *Service) GetOrder(id uint) (*Order, error) {
	var ord Order
	result := s.db.
		Preload("Details").
		Preload("Customer").
		First(&ord, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order.GetOrder", "order not found")
		}
		return nil, apperrors.Internal("order.GetOrder", result.Error)
	}

	return &ord, nil
}

// GetOwnedOrder retrieves an order and verifies it belongs to the
// given user's customer record.
func (s *Service) GetOwnedOrder(orderID uint, userID uint) (*Order, error) {
	const op = "order.GetOwnedOrder"

	ord, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if ord.Customer.UserID == nil || *ord.Customer.UserID != userID {
		// Ownership failures read as not-found so order ids are not
		// probeable across accounts.
		return nil, apperrors.NotFound(op, "order not found")
	}
	return ord, nil
}

// GetOrderByNumber retrieves a single order by order number
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var ord Order
	result := s.db.
		Preload("Details").
		Preload("Customer").
		Where("order_number = ?", orderNumber).
		First(&ord)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order.GetOrderByNumber", "order not found")
		}
		return nil, apperrors.Internal("order.GetOrderByNumber", result.Error)
	}

	return &ord, nil
}

// GetOrders retrieves orders with filtering and pagination for the
// admin console.
func (s *Service) GetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).
		Preload("Details").
		Preload("Customer")

	if req.Status != "" {
		query = query.Where("orders.status = ?", req.Status)
	}
	if req.DateFrom != "" {
		query = query.Where("orders.created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("orders.created_at <= ?", req.DateTo)
	}
	if req.Search != "" {
		pattern := "%" + strings.ToLower(req.Search) + "%"
		query = query.
			Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("LOWER(orders.order_number) LIKE ? OR LOWER(customers.name) LIKE ? OR customers.phone LIKE ?",
				pattern, pattern, "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query = query.Order(buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &OrderListResponse{
		Orders:     orders,
		Pagination: pagination,
	}, nil
}

// GetCustomerOrders retrieves the order history for a customer
func (s *Service) GetCustomerOrders(customerID uint, page, limit int) (*OrderListResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).
		Preload("Details").
		Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// Private helpers

// lockForUpdate adds a row lock where the dialect supports one. The
// idempotency check and the status transition must see a consistent row
// when the return URL and the IPN land near-simultaneously.
func (s *Service) lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// selectItems returns the cart lines matching the selected product ids,
// or every line when no selection is given.
func selectItems(items []cart.CartItem, selectedIDs []uint) []cart.CartItem {
	if len(selectedIDs) == 0 {
		return items
	}

	wanted := make(map[uint]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		wanted[id] = true
	}

	selected := make([]cart.CartItem, 0, len(items))
	for _, item := range items {
		if wanted[item.ProductID] {
			selected = append(selected, item)
		}
	}
	return selected
}

func callbackLedgerStatus(data *payment.CallbackData) payment.TransactionStatus {
	if data.IsSuccess() {
		return payment.TransactionStatusCompleted
	}
	return payment.TransactionStatusFailed
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("orders.%s %s", sortBy, sortOrder)
}
