// internal/domain/payment/vnpay_test.go
package payment

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

func testGatewayConfig() *config.Config {
	return &config.Config{
		VNPay: config.VNPayConfig{
			TmnCode:    "TESTTMN1",
			HashSecret: "test-hash-secret",
			PaymentURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "http://localhost:8080/api/v1/payment/vnpay-return",
			Locale:     "vn",
			OrderType:  "other",
			Expiry:     15 * time.Minute,
		},
	}
}

func TestNewGateway_MissingCredentials(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.VNPay.HashSecret = ""

	_, err := NewGateway(cfg)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindPaymentConfig, apperrors.KindOf(err))
}

func TestBuildPaymentURL(t *testing.T) {
	gw, err := NewGateway(testGatewayConfig())
	require.NoError(t, err)

	paymentURL, err := gw.BuildPaymentURL(PaymentURLRequest{
		TxnRef:    "42",
		Amount:    100000,
		OrderInfo: "Thanh toan don hang ORD1",
		ClientIP:  "203.0.113.7",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(paymentURL, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?"))

	q := parsed.Query()
	assert.Equal(t, "10000000", q.Get("vnp_Amount"), "amount must be sent in subunits")
	assert.Equal(t, "42", q.Get("vnp_TxnRef"))
	assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
	assert.Equal(t, "pay", q.Get("vnp_Command"))
	assert.Equal(t, "VND", q.Get("vnp_CurrCode"))
	assert.Equal(t, "TESTTMN1", q.Get("vnp_TmnCode"))
	assert.Equal(t, "203.0.113.7", q.Get("vnp_IpAddr"))
	assert.Len(t, q.Get("vnp_SecureHash"), 128, "hmac-sha512 hex digest")
	assert.NotEmpty(t, q.Get("vnp_CreateDate"))
	assert.NotEmpty(t, q.Get("vnp_ExpireDate"))
}

func TestBuildPaymentURL_Validation(t *testing.T) {
	gw, err := NewGateway(testGatewayConfig())
	require.NoError(t, err)

	_, err = gw.BuildPaymentURL(PaymentURLRequest{Amount: 1000})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = gw.BuildPaymentURL(PaymentURLRequest{TxnRef: "1", Amount: 0})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestVerifyCallback_RoundTrip(t *testing.T) {
	gw, err := NewGateway(testGatewayConfig())
	require.NoError(t, err)

	paymentURL, err := gw.BuildPaymentURL(PaymentURLRequest{
		TxnRef:    "7",
		Amount:    250000,
		OrderInfo: "order 7",
		ClientIP:  "127.0.0.1",
	})
	require.NoError(t, err)

	// A URL we signed ourselves must verify.
	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)

	data, err := gw.VerifyCallback(parsed.Query())
	require.NoError(t, err)
	assert.Equal(t, "7", data.TxnRef)
	assert.Equal(t, int64(25000000), data.Amount)
}

func signedCallback(t *testing.T, gw *Gateway, params map[string]string) url.Values {
	t.Helper()

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("vnp_SecureHash", gw.sign(values.Encode()))
	return values
}

func successParams() map[string]string {
	return map[string]string{
		"vnp_TxnRef":            "42",
		"vnp_Amount":            "10000000",
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
		"vnp_TransactionNo":     "14012345",
		"vnp_BankCode":          "NCB",
		"vnp_CardType":          "ATM",
		"vnp_OrderInfo":         "Thanh toan don hang",
		"vnp_PayDate":           "20260830143000",
	}
}

func TestVerifyCallback_ParsesFields(t *testing.T) {
	gw, err := NewGateway(testGatewayConfig())
	require.NoError(t, err)

	values := signedCallback(t, gw, successParams())

	data, err := gw.VerifyCallback(values)
	require.NoError(t, err)
	assert.Equal(t, "42", data.TxnRef)
	assert.Equal(t, int64(10000000), data.Amount)
	assert.Equal(t, "00", data.ResponseCode)
	assert.Equal(t, "00", data.TransactionStatus)
	assert.Equal(t, "14012345", data.TransactionNo)
	assert.Equal(t, "NCB", data.BankCode)
	assert.True(t, data.IsSuccess())
}

func TestVerifyCallback_TamperedParamRejected(t *testing.T) {
	gw, err := NewGateway(testGatewayConfig())
	require.NoError(t, err)

	values := signedCallback(t, gw, successParams())
	values.Set("vnp_Amount", "10000001")

	_, err = gw.VerifyCallback(values)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidSignature, apperrors.KindOf(err))
}

func TestVerifyCallback_MissingHashRejected(t *testing.T) {
	gw, err := NewGateway(testGatewayConfig())
	require.NoError(t, err)

	values := url.Values{}
	for k, v := range successParams() {
		values.Set(k, v)
	}

	_, err = gw.VerifyCallback(values)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidSignature, apperrors.KindOf(err))
}

func TestVerifyCallback_HashTypeParamExcludedFromSigning(t *testing.T) {
	gw, err := NewGateway(testGatewayConfig())
	require.NoError(t, err)

	// The gateway may append vnp_SecureHashType after signing; it must
	// not participate in verification.
	values := signedCallback(t, gw, successParams())
	values.Set("vnp_SecureHashType", "HMACSHA512")

	_, err = gw.VerifyCallback(values)
	assert.NoError(t, err)
}

func TestVerifyCallback_WrongSecretRejected(t *testing.T) {
	gw, err := NewGateway(testGatewayConfig())
	require.NoError(t, err)

	otherCfg := testGatewayConfig()
	otherCfg.VNPay.HashSecret = "some-other-secret"
	otherGw, err := NewGateway(otherCfg)
	require.NoError(t, err)

	values := signedCallback(t, otherGw, successParams())

	_, err = gw.VerifyCallback(values)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidSignature, apperrors.KindOf(err))
}

func TestCallbackDataIsSuccess(t *testing.T) {
	tests := []struct {
		name              string
		responseCode      string
		transactionStatus string
		want              bool
	}{
		{"both success", "00", "00", true},
		{"user abandoned", "24", "02", false},
		{"response ok status failed", "00", "02", false},
		{"status ok response failed", "51", "00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := &CallbackData{
				ResponseCode:      tt.responseCode,
				TransactionStatus: tt.transactionStatus,
			}
			assert.Equal(t, tt.want, data.IsSuccess())
		})
	}
}
