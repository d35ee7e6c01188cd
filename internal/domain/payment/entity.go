// internal/domain/payment/entity.go
package payment

import (
	"time"
)

// TransactionStatus is the domain status of a payment attempt
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is one row of the append-only payment ledger: a record of
// a gateway interaction (or a synchronously recorded cash payment),
// never updated after insertion. Order state lives on the order row;
// the ledger never gates or mutates it.
type Transaction struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	OrderID           uint              `gorm:"not null;index" json:"order_id"`
	TransactionCode   string            `gorm:"size:100" json:"transaction_code"` // Gateway-assigned id
	TransactionStatus string            `gorm:"size:10" json:"transaction_status"`
	ResponseCode      string            `gorm:"size:10" json:"response_code"`
	Status            TransactionStatus `gorm:"not null;size:20" json:"status"`
	PaymentMethod     string            `gorm:"not null;size:50" json:"payment_method"`
	Amount            int64             `gorm:"not null" json:"amount"`
	BankCode          string            `gorm:"size:50" json:"bank_code"`
	CardType          string            `gorm:"size:50" json:"card_type"`
	PaymentTime       *time.Time        `json:"payment_time"`
	RawData           string            `gorm:"type:text" json:"raw_data"` // Opaque gateway payload kept for audit
	Notes             string            `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time         `json:"created_at"`
}

// TableName overrides the table name
func (Transaction) TableName() string {
	return "payment_transactions"
}
