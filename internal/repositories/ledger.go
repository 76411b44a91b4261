package repositories

import (
	"context"

	"vendora/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository is the persistence surface of the points ledger.
// GetAccountForUpdate is only meaningful inside ExecuteInTransaction / WithTx:
// it takes a row-level lock that serializes the read-compute-write cycle.
type LedgerRepository interface {
	CreateAccount(account *models.Account) error
	GetAccountByUserID(userID uint) (*models.Account, error)
	GetAccountForUpdate(userID uint) (*models.Account, error)
	UpdateAccount(account *models.Account) error

	CreateTransaction(txn *models.PointsTransaction) error
	GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, error)
	SumTransactionAmounts(userID uint) (int64, error)

	CreateOutboxEvent(event *models.NotificationEvent) error

	ExecuteInTransaction(fn func(LedgerRepository) error) error
	WithTx(tx *gorm.DB) LedgerRepository
}
