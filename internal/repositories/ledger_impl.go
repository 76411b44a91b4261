package repositories

import (
	"context"
	"errors"
	"fmt"

	"vendora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateAccount(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetAccountByUserID(userID uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetAccountForUpdate locks the account row for the duration of the enclosing
// transaction, so the balance read and write cannot interleave with another
// writer.
func (r *ledgerRepository) GetAccountForUpdate(userID uint) (*models.Account, error) {
	var account models.Account
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) UpdateAccount(account *models.Account) error {
	if err := r.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) CreateTransaction(txn *models.PointsTransaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, error) {
	var history []models.PointsTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return history, nil
}

func (r *ledgerRepository) SumTransactionAmounts(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.PointsTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum transaction amounts: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) CreateOutboxEvent(event *models.NotificationEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

func (r *ledgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: tx}
}
