// internal/domain/payment/ledger_test.go
package payment

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Transaction{}))
	return db
}

func TestLedger_CreateAndList(t *testing.T) {
	db := newLedgerTestDB(t)
	ledger := NewLedger(db, &config.Config{})

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	first := &Transaction{
		OrderID:       1,
		Status:        TransactionStatusFailed,
		ResponseCode:  "24",
		PaymentMethod: "vnpay",
		Amount:        100000,
		CreatedAt:     base,
	}
	second := &Transaction{
		OrderID:         1,
		Status:          TransactionStatusCompleted,
		ResponseCode:    "00",
		TransactionCode: "14012345",
		PaymentMethod:   "vnpay",
		Amount:          100000,
		CreatedAt:       base.Add(time.Minute),
	}
	other := &Transaction{
		OrderID:       2,
		Status:        TransactionStatusCompleted,
		PaymentMethod: "cash",
		Amount:        50000,
		CreatedAt:     base,
	}

	require.NoError(t, ledger.CreateTransaction(nil, first))
	require.NoError(t, ledger.CreateTransaction(nil, second))
	require.NoError(t, ledger.CreateTransaction(nil, other))

	transactions, err := ledger.GetTransactionsByOrderID(1)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	// Newest first
	assert.Equal(t, TransactionStatusCompleted, transactions[0].Status)
	assert.Equal(t, "14012345", transactions[0].TransactionCode)
	assert.Equal(t, TransactionStatusFailed, transactions[1].Status)
}

func TestLedger_CreateTransactionJoinsCallerTx(t *testing.T) {
	db := newLedgerTestDB(t)
	ledger := NewLedger(db, &config.Config{})

	tx := db.Begin()
	require.NoError(t, ledger.CreateTransaction(tx, &Transaction{
		OrderID:       9,
		Status:        TransactionStatusCompleted,
		PaymentMethod: "cash",
		Amount:        75000,
	}))
	tx.Rollback()

	// Rolled back with the caller's transaction, so nothing persisted.
	transactions, err := ledger.GetTransactionsByOrderID(9)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}
