package ledger

import (
	"context"

	"vendora/internal/models"

	"gorm.io/gorm"
)

// Service is the single source of truth for points balances.
type Service interface {
	// Record appends a transaction and returns it with BalanceAfter set.
	Record(ctx context.Context, req RecordRequest) (*models.PointsTransaction, error)

	// RecordInTx performs the same unit inside a caller-owned database
	// transaction, so multi-party operations commit or roll back together.
	// It has no side effects outside the transaction; the caller must call
	// InvalidateBalances for the affected users after the transaction
	// commits.
	RecordInTx(tx *gorm.DB, req RecordRequest) (*models.PointsTransaction, error)

	// InvalidateBalances drops cached balances. Callers of RecordInTx invoke
	// it after their transaction commits; invalidating earlier would let a
	// concurrent read refill the cache from the not-yet-committed state.
	InvalidateBalances(ctx context.Context, userIDs ...uint)

	// Balance operations
	GetBalance(ctx context.Context, userID uint) (int64, error)
	ValidateBalance(ctx context.Context, userID uint, amount int64) error

	// Account management
	CreateAccount(ctx context.Context, userID uint) (*models.Account, error)

	// Ledger reads
	History(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, error)
}

// BalanceCache is the read-path cache the service invalidates on every write.
type BalanceCache interface {
	GetBalance(ctx context.Context, userID uint) (int64, bool, error)
	SetBalance(ctx context.Context, userID uint, balance int64) error
	InvalidateBalance(ctx context.Context, userID uint) error
}
