package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "vendora/internal/errors"
	"vendora/internal/models"
	"vendora/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	repo    repositories.LedgerRepository
	cache   BalanceCache
	logger  *zap.Logger
	metrics MetricsCollector
}

// NewService creates the ledger service.
func NewService(
	repo repositories.LedgerRepository,
	cache BalanceCache,
	logger *zap.Logger,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *service) Record(ctx context.Context, req RecordRequest) (*models.PointsTransaction, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("record", time.Since(start))
	}()

	if err := validateRequest(req); err != nil {
		s.metrics.RecordError("record", "validation")
		return nil, err
	}

	var txn *models.PointsTransaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		var err error
		txn, err = s.record(tx, req)
		return err
	})
	if err != nil {
		s.metrics.RecordError("record", "persistence")
		return nil, err
	}

	s.afterRecord(ctx, req, txn)
	return txn, nil
}

// RecordInTx writes the ledger entry inside the caller's transaction and
// nothing else. Cache invalidation must wait for the commit: done here, a
// concurrent GetBalance could refill the cache from the old committed balance
// and keep serving it after the commit lands. The caller invalidates via
// InvalidateBalances once its transaction returns.
func (s *service) RecordInTx(tx *gorm.DB, req RecordRequest) (*models.PointsTransaction, error) {
	if err := validateRequest(req); err != nil {
		s.metrics.RecordError("record", "validation")
		return nil, err
	}

	txn, err := s.record(s.repo.WithTx(tx), req)
	if err != nil {
		s.metrics.RecordError("record", "persistence")
		return nil, err
	}
	return txn, nil
}

func (s *service) InvalidateBalances(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		if err := s.cache.InvalidateBalance(ctx, id); err != nil {
			s.logger.Warn("failed to invalidate balance cache",
				zap.Uint("user_id", id),
				zap.Error(err))
		}
	}
}

// record is the atomic unit: lock the account row, append the ledger entry
// with a balance snapshot, save the account, enqueue the outbox event. No
// other write to the same account can interleave while the lock is held.
func (s *service) record(tx repositories.LedgerRepository, req RecordRequest) (*models.PointsTransaction, error) {
	account, err := tx.GetAccountForUpdate(req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	account.Balance += req.Amount

	txn := &models.PointsTransaction{
		UserID:          req.UserID,
		Amount:          req.Amount,
		BalanceAfter:    account.Balance,
		Type:            req.Type,
		Description:     req.Description,
		RelatedUserID:   req.RelatedUserID,
		RelatedEntityID: req.RelatedEntityID,
		Metadata:        models.NewJSON(req.Metadata),
	}
	if err := tx.CreateTransaction(txn); err != nil {
		return nil, err
	}
	if err := tx.UpdateAccount(account); err != nil {
		return nil, err
	}

	event := &models.NotificationEvent{
		EventID:       uuid.NewString(),
		Type:          eventType(req.Amount),
		UserID:        req.UserID,
		RelatedUserID: req.RelatedUserID,
		Summary:       req.Description,
		Payload: models.NewJSON(map[string]interface{}{
			"transaction_id": txn.ID,
			"amount":         req.Amount,
			"balance_after":  account.Balance,
			"type":           string(req.Type),
		}),
	}
	if err := tx.CreateOutboxEvent(event); err != nil {
		return nil, err
	}
	return txn, nil
}

// afterRecord runs the post-commit side effects: cache invalidation and
// metrics. Nothing here may fire while the transaction is still open.
func (s *service) afterRecord(ctx context.Context, req RecordRequest, txn *models.PointsTransaction) {
	s.InvalidateBalances(ctx, req.UserID)
	s.metrics.RecordBalanceChange(req.UserID, txn.BalanceAfter-req.Amount, txn.BalanceAfter)
	s.metrics.RecordTransaction(string(req.Type), req.Amount)
}

func (s *service) GetBalance(ctx context.Context, userID uint) (int64, error) {
	if balance, found, err := s.cache.GetBalance(ctx, userID); err == nil && found {
		return balance, nil
	}

	account, err := s.repo.GetAccountByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	if err := s.cache.SetBalance(ctx, userID, account.Balance); err != nil {
		s.logger.Warn("failed to cache balance",
			zap.Uint("user_id", userID),
			zap.Error(err))
	}
	return account.Balance, nil
}

// ValidateBalance is the caller-facing sufficient-funds pre-check for debits.
// amount is the points required, as a positive number.
func (s *service) ValidateBalance(ctx context.Context, userID uint, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return err
	}
	if balance < amount {
		return domain.New(domain.CodeInsufficientFunds,
			"insufficient points, requires %d", amount)
	}
	return nil
}

func (s *service) CreateAccount(ctx context.Context, userID uint) (*models.Account, error) {
	account := &models.Account{UserID: userID}
	if err := s.repo.CreateAccount(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *service) History(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetTransactionHistory(ctx, userID, limit, offset)
}

func validateRequest(req RecordRequest) error {
	if req.Amount == 0 {
		return domain.ErrInvalidAmount
	}
	if !req.Type.Valid() {
		return domain.ErrInvalidTransactionType
	}
	return nil
}

func eventType(amount int64) string {
	if amount > 0 {
		return EventPointsCredited
	}
	return EventPointsDebited
}
