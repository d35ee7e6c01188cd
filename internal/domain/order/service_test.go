// internal/domain/order/service_test.go
package order

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"io"
	"net/url"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testHashSecret = "order-test-secret"

type orderTestEnv struct {
	db      *gorm.DB
	redis   *miniredis.Miniredis
	cfg     *config.Config
	service *Service
	carts   *cart.Service
}

func newOrderTestEnv(t *testing.T, vatRateBps int) *orderTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&product.Category{},
		&product.Product{},
		&customer.Customer{},
		&Order{},
		&OrderDetail{},
		&payment.Transaction{},
	))

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Cart: config.CartConfig{TTL: 30 * 24 * time.Hour},
		Order: config.OrderConfig{
			VATRateBps:    vatRateBps,
			PendingExpiry: 30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		VNPay: config.VNPayConfig{
			TmnCode:    "TESTTMN1",
			HashSecret: testHashSecret,
			PaymentURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "http://localhost:8080/api/v1/payment/vnpay-return",
			Locale:     "vn",
			OrderType:  "other",
			Expiry:     15 * time.Minute,
		},
	}

	gateway, err := payment.NewGateway(cfg)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	cartService := cart.NewService(db, redisClient, cfg)
	customerService := customer.NewService(db, cfg)
	ledger := payment.NewLedger(db, cfg)

	return &orderTestEnv{
		db:      db,
		redis:   mr,
		cfg:     cfg,
		service: NewService(db, cfg, cartService, customerService, gateway, ledger, log),
		carts:   cartService,
	}
}

func (e *orderTestEnv) seedProduct(t *testing.T, name string, price int64) *product.Product {
	t.Helper()
	p := &product.Product{Name: name, Price: price, IsActive: true}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *orderTestEnv) seedCustomer(t *testing.T) *customer.Customer {
	t.Helper()
	c := &customer.Customer{
		Name:    "Nguyen Van A",
		Email:   "a@example.com",
		Phone:   "0901234567",
		Address: "1 Ly Thuong Kiet",
		City:    "Ha Noi",
	}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func testIdentity() customer.Identity {
	return customer.Identity{
		UserID: 1,
		Email:  "shopper@example.com",
		Name:   "Tran Thi B",
		Phone:  "0907654321",
	}
}

func testShipping() customer.ShippingInfo {
	return customer.ShippingInfo{
		Name:    "Tran Thi B",
		Phone:   "0907654321",
		Address: "2 Hai Ba Trung",
		City:    "Ho Chi Minh",
	}
}

// fillCart puts qty of each product into the identity's cart
func (e *orderTestEnv) fillCart(t *testing.T, userID uint, products ...*product.Product) {
	t.Helper()
	ctx := context.Background()
	for _, p := range products {
		_, err := e.carts.AddToCart(ctx, cart.UserCartID(userID), nil, &cart.AddToCartRequest{
			ProductID: p.ID,
			Quantity:  1,
		})
		require.NoError(t, err)
	}
}

// signedCallback builds gateway callback params signed the way the
// gateway signs them.
func signedCallback(params map[string]string) url.Values {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	mac := hmac.New(sha512.New, []byte(testHashSecret))
	mac.Write([]byte(values.Encode()))
	values.Set("vnp_SecureHash", hex.EncodeToString(mac.Sum(nil)))
	return values
}

func callbackFor(ord *Order, responseCode, transactionStatus string) url.Values {
	return signedCallback(map[string]string{
		"vnp_TxnRef":            strconv.FormatUint(uint64(ord.ID), 10),
		"vnp_Amount":            strconv.FormatInt(ord.TotalAmount*100, 10),
		"vnp_ResponseCode":      responseCode,
		"vnp_TransactionStatus": transactionStatus,
		"vnp_TransactionNo":     "14012345",
		"vnp_BankCode":          "NCB",
		"vnp_CardType":          "ATM",
		"vnp_PayDate":           "20260830143000",
	})
}

func TestCreateOrder_VNPayStaysPendingAndKeepsCart(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 60000)
	b := env.seedProduct(t, "B", 40000)
	env.fillCart(t, 1, a, b)

	ord, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodVNPay,
	})
	require.NoError(t, err)

	assert.Equal(t, OrderStatusPending, ord.Status)
	assert.Equal(t, int64(100000), ord.TotalAmount)
	assert.Len(t, ord.Details, 2)
	assert.Contains(t, ord.OrderNumber, OrderNumberPrefixStorefront)
	assert.Nil(t, ord.PaymentDate)

	// Gateway orders keep their cart until payment confirms.
	stored, err := env.carts.GetOrCreateCart(context.Background(), cart.UserCartID(1))
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestCreateOrder_CashRemovesPurchasedItems(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 60000)
	env.fillCart(t, 1, a)

	ord, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, ord.Status)

	stored, err := env.carts.GetOrCreateCart(context.Background(), cart.UserCartID(1))
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
}

func TestCreateOrder_PartialSelection(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 10000)
	b := env.seedProduct(t, "B", 20000)
	c := env.seedProduct(t, "C", 30000)
	env.fillCart(t, 1, a, b, c)

	ord, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:           testShipping(),
		PaymentMethod:      PaymentMethodCash,
		SelectedProductIDs: []uint{a.ID, c.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(40000), ord.TotalAmount)
	assert.Len(t, ord.Details, 2)

	// Unselected item stays in the cart.
	stored, err := env.carts.GetOrCreateCart(context.Background(), cart.UserCartID(1))
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, b.ID, stored.Items[0].ProductID)
}

func TestCreateOrder_EmptySelectionRejected(t *testing.T) {
	env := newOrderTestEnv(t, 0)

	_, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodVNPay,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindEmptyOrder, apperrors.KindOf(err))
}

func TestCreateOrder_AppliesVAT(t *testing.T) {
	env := newOrderTestEnv(t, 1000) // 10%
	a := env.seedProduct(t, "A", 100000)
	env.fillCart(t, 1, a)

	ord, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), ord.TaxAmount)
	assert.Equal(t, int64(110000), ord.TotalAmount)
}

func TestCreateOrder_ProvisionsCustomerOnce(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 10000)
	env.fillCart(t, 1, a)

	_, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodCash,
	})
	require.NoError(t, err)

	env.fillCart(t, 1, a)
	_, err = env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodCash,
	})
	require.NoError(t, err)

	var count int64
	env.db.Model(&customer.Customer{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrder_RollsBackWhenDetailInsertFails(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 10000)
	env.fillCart(t, 1, a)

	detailType := reflect.TypeOf(OrderDetail{})
	require.NoError(t, env.db.Callback().Create().Before("gorm:create").
		Register("inject_detail_failure", func(tx *gorm.DB) {
			if tx.Statement.Schema != nil && tx.Statement.Schema.ModelType == detailType {
				tx.AddError(errors.New("injected storage failure"))
			}
		}))

	_, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodCash,
	})
	require.Error(t, err)

	// Nothing half-written survives.
	var orders, details int64
	env.db.Model(&Order{}).Count(&orders)
	env.db.Model(&OrderDetail{}).Count(&details)
	assert.Zero(t, orders)
	assert.Zero(t, details)
}

func TestCreateAdminOrder(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	cust := env.seedCustomer(t)
	a := env.seedProduct(t, "A", 50000)
	b := env.seedProduct(t, "B", 30000)

	ord, err := env.service.CreateAdminOrder(&AdminOrderRequest{
		CustomerID: cust.ID,
		Lines: []AdminOrderLine{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		},
	}, 99)
	require.NoError(t, err)

	// Cash is confirmed in person: processing immediately, payment
	// recorded on the ledger in the same transaction.
	assert.Equal(t, OrderStatusProcessing, ord.Status)
	assert.Equal(t, int64(130000), ord.TotalAmount)
	require.Len(t, ord.Details, 2)
	var subtotal int64
	for _, d := range ord.Details {
		subtotal += d.Subtotal
	}
	assert.Equal(t, int64(130000), subtotal)
	assert.Contains(t, ord.OrderNumber, OrderNumberPrefixAdmin)
	assert.NotNil(t, ord.PaymentDate)
	require.NotNil(t, ord.CreatedBy)
	assert.Equal(t, uint(99), *ord.CreatedBy)

	var transactions []payment.Transaction
	require.NoError(t, env.db.Where("order_id = ?", ord.ID).Find(&transactions).Error)
	require.Len(t, transactions, 1)
	assert.Equal(t, payment.TransactionStatusCompleted, transactions[0].Status)
	assert.Equal(t, PaymentMethodCash, transactions[0].PaymentMethod)
	assert.Equal(t, int64(130000), transactions[0].Amount)
	require.NotNil(t, ord.PaymentTransactionID)
	assert.Equal(t, transactions[0].ID, *ord.PaymentTransactionID)
}

func TestCreateAdminOrder_UnknownCustomer(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 10000)

	_, err := env.service.CreateAdminOrder(&AdminOrderRequest{
		CustomerID: 12345,
		Lines:      []AdminOrderLine{{ProductID: a.ID, Quantity: 1}},
	}, 99)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCreatePaymentURL(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 100000)
	env.fillCart(t, 1, a)

	ord, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodVNPay,
	})
	require.NoError(t, err)

	paymentURL, err := env.service.CreatePaymentURL(ord.ID, "203.0.113.9")
	require.NoError(t, err)

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, strconv.FormatUint(uint64(ord.ID), 10), q.Get("vnp_TxnRef"))
	assert.Equal(t, "10000000", q.Get("vnp_Amount"))
}

func TestCreatePaymentURL_RejectsNonPending(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	cust := env.seedCustomer(t)
	a := env.seedProduct(t, "A", 10000)

	ord, err := env.service.CreateAdminOrder(&AdminOrderRequest{
		CustomerID: cust.ID,
		Lines:      []AdminOrderLine{{ProductID: a.ID, Quantity: 1}},
	}, 99)
	require.NoError(t, err)

	_, err = env.service.CreatePaymentURL(ord.ID, "127.0.0.1")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func placePendingVNPayOrder(t *testing.T, env *orderTestEnv, products ...*product.Product) *Order {
	t.Helper()
	env.fillCart(t, 1, products...)
	ord, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodVNPay,
	})
	require.NoError(t, err)
	return ord
}

func TestProcessPaymentReturn_Success(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 100000)
	ord := placePendingVNPayOrder(t, env, a)

	result, applied, err := env.service.ProcessPaymentReturn(context.Background(), callbackFor(ord, "00", "00"))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, OrderStatusProcessing, result.Status)
	assert.NotNil(t, result.PaymentDate)
	require.NotNil(t, result.PaymentTransactionID)

	var txn payment.Transaction
	require.NoError(t, env.db.First(&txn, *result.PaymentTransactionID).Error)
	assert.Equal(t, payment.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, "00", txn.ResponseCode)
	assert.Equal(t, int64(100000), txn.Amount)
	assert.NotEmpty(t, txn.RawData)

	// Purchased items leave the cart once payment confirms.
	stored, err := env.carts.GetOrCreateCart(context.Background(), cart.UserCartID(1))
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
}

func TestProcessPaymentReturn_FailureCancelsOrder(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 100000)
	ord := placePendingVNPayOrder(t, env, a)

	result, applied, err := env.service.ProcessPaymentReturn(context.Background(), callbackFor(ord, "24", "02"))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, OrderStatusCancelled, result.Status)
	assert.Contains(t, result.Notes, "24")
	assert.Nil(t, result.PaymentDate)

	var txn payment.Transaction
	require.NoError(t, env.db.Where("order_id = ?", ord.ID).First(&txn).Error)
	assert.Equal(t, payment.TransactionStatusFailed, txn.Status)

	// Failed payments keep the cart intact for a retry.
	stored, err := env.carts.GetOrCreateCart(context.Background(), cart.UserCartID(1))
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
}

func TestProcessPaymentReturn_DuplicateIsNoOp(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 100000)
	ord := placePendingVNPayOrder(t, env, a)

	_, applied, err := env.service.ProcessPaymentReturn(context.Background(), callbackFor(ord, "00", "00"))
	require.NoError(t, err)
	require.True(t, applied)

	// Return URL and IPN both fire; the second delivery must not change
	// anything.
	result, applied, err := env.service.ProcessPaymentReturn(context.Background(), callbackFor(ord, "00", "00"))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, OrderStatusProcessing, result.Status)

	var count int64
	env.db.Model(&payment.Transaction{}).Where("order_id = ?", ord.ID).Count(&count)
	assert.Equal(t, int64(2), count, "duplicate is still recorded on the ledger")
}

func TestProcessPaymentReturn_AmountMismatchRejected(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 100000)
	ord := placePendingVNPayOrder(t, env, a)

	values := signedCallback(map[string]string{
		"vnp_TxnRef":            strconv.FormatUint(uint64(ord.ID), 10),
		"vnp_Amount":            "9999900", // 99999 VND, not the order total
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
		"vnp_TransactionNo":     "14012345",
	})

	_, _, err := env.service.ProcessPaymentReturn(context.Background(), values)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAmountMismatch, apperrors.KindOf(err))

	// Order state untouched.
	reloaded, err := env.service.GetOrder(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, reloaded.Status)
}

func TestProcessPaymentReturn_TamperedSignatureRejected(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 100000)
	ord := placePendingVNPayOrder(t, env, a)

	values := callbackFor(ord, "00", "00")
	values.Set("vnp_Amount", strconv.FormatInt(ord.TotalAmount*100+100, 10))

	_, _, err := env.service.ProcessPaymentReturn(context.Background(), values)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidSignature, apperrors.KindOf(err))

	reloaded, err := env.service.GetOrder(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, reloaded.Status)
}

func TestProcessPaymentReturn_UnknownOrder(t *testing.T) {
	env := newOrderTestEnv(t, 0)

	values := signedCallback(map[string]string{
		"vnp_TxnRef":            "424242",
		"vnp_Amount":            "100000",
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
	})

	_, _, err := env.service.ProcessPaymentReturn(context.Background(), values)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	cust := env.seedCustomer(t)
	a := env.seedProduct(t, "A", 10000)

	ord, err := env.service.CreateAdminOrder(&AdminOrderRequest{
		CustomerID: cust.ID,
		Lines:      []AdminOrderLine{{ProductID: a.ID, Quantity: 1}},
	}, 99)
	require.NoError(t, err)
	require.Equal(t, OrderStatusProcessing, ord.Status)

	// processing -> delivered skips shipped and must fail
	err = env.service.UpdateOrderStatus(ord.ID, OrderStatusDelivered, "", 99)
	assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))

	require.NoError(t, env.service.UpdateOrderStatus(ord.ID, OrderStatusShipped, "handed to carrier", 99))
	reloaded, err := env.service.GetOrder(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, reloaded.Status)
	assert.NotNil(t, reloaded.ShippingDate)
	assert.Contains(t, reloaded.Notes, "handed to carrier")

	// shipped orders cannot go back
	err = env.service.UpdateOrderStatus(ord.ID, OrderStatusProcessing, "", 99)
	assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))

	require.NoError(t, env.service.UpdateOrderStatus(ord.ID, OrderStatusDelivered, "", 99))
}

func TestCancelOrder(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	cust := env.seedCustomer(t)
	a := env.seedProduct(t, "A", 10000)

	ord, err := env.service.CreateAdminOrder(&AdminOrderRequest{
		CustomerID: cust.ID,
		Lines:      []AdminOrderLine{{ProductID: a.ID, Quantity: 1}},
	}, 99)
	require.NoError(t, err)

	require.NoError(t, env.service.CancelOrder(ord.ID, "customer request", 99))
	reloaded, err := env.service.GetOrder(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, reloaded.Status)
	assert.Contains(t, reloaded.Notes, "customer request")

	// Cancelled orders cannot be cancelled again.
	err = env.service.CancelOrder(ord.ID, "again", 99)
	assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))
}

func TestCancelOrder_ShippedRejected(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	cust := env.seedCustomer(t)
	a := env.seedProduct(t, "A", 10000)

	ord, err := env.service.CreateAdminOrder(&AdminOrderRequest{
		CustomerID: cust.ID,
		Lines:      []AdminOrderLine{{ProductID: a.ID, Quantity: 1}},
	}, 99)
	require.NoError(t, err)
	require.NoError(t, env.service.UpdateOrderStatus(ord.ID, OrderStatusShipped, "", 99))

	err = env.service.CancelOrder(ord.ID, "too late", 99)
	assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))
}

func TestExpireStalePendingOrders(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 100000)
	ord := placePendingVNPayOrder(t, env, a)

	// Fresh orders survive the sweep.
	expired, err := env.service.ExpireStalePendingOrders(30 * time.Minute)
	require.NoError(t, err)
	assert.Zero(t, expired)

	// Age the order past the window.
	require.NoError(t, env.db.Model(&Order{}).Where("id = ?", ord.ID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)

	expired, err = env.service.ExpireStalePendingOrders(30 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	reloaded, err := env.service.GetOrder(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, reloaded.Status)
}

func TestGetOrders_Filters(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	cust := env.seedCustomer(t)
	a := env.seedProduct(t, "A", 10000)

	first, err := env.service.CreateAdminOrder(&AdminOrderRequest{
		CustomerID: cust.ID,
		Lines:      []AdminOrderLine{{ProductID: a.ID, Quantity: 1}},
	}, 99)
	require.NoError(t, err)
	_, err = env.service.CreateAdminOrder(&AdminOrderRequest{
		CustomerID: cust.ID,
		Lines:      []AdminOrderLine{{ProductID: a.ID, Quantity: 2}},
	}, 99)
	require.NoError(t, err)
	require.NoError(t, env.service.CancelOrder(first.ID, "mistake", 99))

	resp, err := env.service.GetOrders(&OrderListRequest{
		Page: 1, Limit: 20,
		Status:    OrderStatusCancelled,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, first.ID, resp.Orders[0].ID)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	// Search matches the customer name through the join.
	resp, err = env.service.GetOrders(&OrderListRequest{
		Page: 1, Limit: 20,
		Search:    "nguyen",
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 2)

	// Search by order number.
	resp, err = env.service.GetOrders(&OrderListRequest{
		Page: 1, Limit: 20,
		Search: first.OrderNumber,
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, first.ID, resp.Orders[0].ID)
}

func TestGetOwnedOrder(t *testing.T) {
	env := newOrderTestEnv(t, 0)
	a := env.seedProduct(t, "A", 10000)
	env.fillCart(t, 1, a)

	ord, err := env.service.CreateOrder(context.Background(), testIdentity(), &CreateOrderRequest{
		Shipping:      testShipping(),
		PaymentMethod: PaymentMethodCash,
	})
	require.NoError(t, err)

	owned, err := env.service.GetOwnedOrder(ord.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, owned.ID)

	// Another user sees not-found, not forbidden.
	_, err = env.service.GetOwnedOrder(ord.ID, 2)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGenerateOrderNumber(t *testing.T) {
	n1 := GenerateOrderNumber(OrderNumberPrefixStorefront)
	n2 := GenerateOrderNumber(OrderNumberPrefixStorefront)

	assert.Len(t, n1, 3+14+8)
	assert.NotEqual(t, n1, n2)
	assert.Contains(t, n1, OrderNumberPrefixStorefront)
}

func TestIsValidTransition(t *testing.T) {
	assert.True(t, IsValidTransition(OrderStatusPending, OrderStatusProcessing))
	assert.True(t, IsValidTransition(OrderStatusProcessing, OrderStatusShipped))
	assert.True(t, IsValidTransition(OrderStatusShipped, OrderStatusDelivered))
	assert.False(t, IsValidTransition(OrderStatusPending, OrderStatusShipped))
	assert.False(t, IsValidTransition(OrderStatusDelivered, OrderStatusPending))
	assert.False(t, IsValidTransition(OrderStatusCancelled, OrderStatusProcessing))
}
