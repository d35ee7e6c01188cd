// internal/domain/payment/ledger.go
package payment

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Ledger appends payment transaction records. It records what happened
// and never rejects a write based on order state; the order workflow is
// the only component that also mutates orders.
type Ledger struct {
	db     *gorm.DB
	config *config.Config
}

// NewLedger creates a new payment ledger
func NewLedger(db *gorm.DB, cfg *config.Config) *Ledger {
	return &Ledger{
		db:     db,
		config: cfg,
	}
}

// CreateTransaction appends a ledger row. When tx is non-nil the insert
// joins the caller's open transaction instead of starting its own.
func (l *Ledger) CreateTransaction(tx *gorm.DB, t *Transaction) error {
	if tx == nil {
		tx = l.db
	}
	if err := tx.Create(t).Error; err != nil {
		return fmt.Errorf("failed to record payment transaction: %w", err)
	}
	return nil
}

// GetTransactionsByOrderID returns the ledger rows for an order, newest first
func (l *Ledger) GetTransactionsByOrderID(orderID uint) ([]Transaction, error) {
	var transactions []Transaction
	err := l.db.Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment transactions: %w", err)
	}
	return transactions, nil
}
