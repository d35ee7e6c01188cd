// internal/domain/payment/vnpay.go
package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

const (
	vnpVersion  = "2.1.0"
	vnpCommand  = "pay"
	vnpCurrCode = "VND"

	// Gateway response/transaction codes
	VNPayCodeSuccess = "00"

	hashParam     = "vnp_SecureHash"
	hashTypeParam = "vnp_SecureHashType"
)

// Gateway isolates the VNPay wire format and request signing from the
// rest of the system. The shared secret is loaded once at startup and
// never derived from request input.
type Gateway struct {
	tmnCode    string
	hashSecret string
	paymentURL string
	returnURL  string
	locale     string
	orderType  string
	expiry     time.Duration
	location   *time.Location
}

// NewGateway creates a VNPay gateway adapter. Missing merchant
// credentials are a configuration error, not a per-request one.
func NewGateway(cfg *config.Config) (*Gateway, error) {
	if cfg.VNPay.TmnCode == "" || cfg.VNPay.HashSecret == "" {
		return nil, apperrors.E(apperrors.KindPaymentConfig, "payment.NewGateway",
			"VNPay merchant credentials are not configured", nil)
	}

	// Gateway timestamps are expressed in Vietnam local time
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}

	return &Gateway{
		tmnCode:    cfg.VNPay.TmnCode,
		hashSecret: cfg.VNPay.HashSecret,
		paymentURL: cfg.VNPay.PaymentURL,
		returnURL:  cfg.VNPay.ReturnURL,
		locale:     cfg.VNPay.Locale,
		orderType:  cfg.VNPay.OrderType,
		expiry:     cfg.VNPay.Expiry,
		location:   loc,
	}, nil
}

// PaymentURLRequest carries the order fields encoded into the redirect URL
type PaymentURLRequest struct {
	TxnRef    string // Order id as the gateway transaction reference
	Amount    int64  // Order total in VND; sent as subunits (x100)
	OrderInfo string
	ClientIP  string
	ReturnURL string // Optional override of the configured return URL
}

// BuildPaymentURL builds the signed redirect URL for the gateway
func (g *Gateway) BuildPaymentURL(req PaymentURLRequest) (string, error) {
	if req.TxnRef == "" {
		return "", apperrors.Validation("payment.BuildPaymentURL", "transaction reference is required")
	}
	if req.Amount <= 0 {
		return "", apperrors.Validation("payment.BuildPaymentURL", "amount must be positive")
	}

	returnURL := g.returnURL
	if req.ReturnURL != "" {
		returnURL = req.ReturnURL
	}

	now := time.Now().In(g.location)

	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", vnpCommand)
	params.Set("vnp_TmnCode", g.tmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CurrCode", vnpCurrCode)
	params.Set("vnp_TxnRef", req.TxnRef)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", g.orderType)
	params.Set("vnp_Locale", g.locale)
	params.Set("vnp_ReturnUrl", returnURL)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_CreateDate", now.Format("20060102150405"))
	params.Set("vnp_ExpireDate", now.Add(g.expiry).Format("20060102150405"))

	// Encode() sorts keys and URL-encodes values, which is exactly the
	// gateway's canonical signing form.
	canonical := params.Encode()
	signature := g.sign(canonical)

	return fmt.Sprintf("%s?%s&%s=%s", g.paymentURL, canonical, hashParam, signature), nil
}

// CallbackData is a parsed, signature-verified gateway callback
type CallbackData struct {
	TxnRef            string
	Amount            int64 // Subunit amount as sent by the gateway
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	CardType          string
	OrderInfo         string
	PayDate           string
	RawData           string
}

// IsSuccess reports whether both gateway codes indicate a completed payment
func (d *CallbackData) IsSuccess() bool {
	return d.ResponseCode == VNPayCodeSuccess && d.TransactionStatus == VNPayCodeSuccess
}

// VerifyCallback authenticates inbound gateway parameters and parses
// them. Verification fails closed: any hash mismatch rejects the whole
// callback.
func (g *Gateway) VerifyCallback(values url.Values) (*CallbackData, error) {
	const op = "payment.VerifyCallback"

	received := values.Get(hashParam)
	if received == "" {
		return nil, apperrors.E(apperrors.KindInvalidSignature, op, "missing secure hash", nil)
	}

	// Rebuild the canonical string from every gateway parameter except
	// the hash parameters themselves.
	signed := url.Values{}
	for key, vals := range values {
		if key == hashParam || key == hashTypeParam {
			continue
		}
		if !strings.HasPrefix(key, "vnp_") {
			continue
		}
		for _, v := range vals {
			signed.Add(key, v)
		}
	}

	expectedMAC := g.mac(signed.Encode())
	receivedMAC, err := hex.DecodeString(received)
	if err != nil || !hmac.Equal(receivedMAC, expectedMAC) {
		return nil, apperrors.E(apperrors.KindInvalidSignature, op, "secure hash mismatch", nil)
	}

	amount, err := strconv.ParseInt(values.Get("vnp_Amount"), 10, 64)
	if err != nil {
		return nil, apperrors.E(apperrors.KindValidation, op, "malformed amount", err)
	}

	return &CallbackData{
		TxnRef:            values.Get("vnp_TxnRef"),
		Amount:            amount,
		ResponseCode:      values.Get("vnp_ResponseCode"),
		TransactionStatus: values.Get("vnp_TransactionStatus"),
		TransactionNo:     values.Get("vnp_TransactionNo"),
		BankCode:          values.Get("vnp_BankCode"),
		CardType:          values.Get("vnp_CardType"),
		OrderInfo:         values.Get("vnp_OrderInfo"),
		PayDate:           values.Get("vnp_PayDate"),
		RawData:           signed.Encode(),
	}, nil
}

func (g *Gateway) sign(data string) string {
	return hex.EncodeToString(g.mac(data))
}

func (g *Gateway) mac(data string) []byte {
	mac := hmac.New(sha512.New, []byte(g.hashSecret))
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
