package ledger

import (
	"context"
	"testing"

	domain "vendora/internal/errors"
	"vendora/internal/models"
	"vendora/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) CreateAccount(account *models.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetAccountByUserID(userID uint) (*models.Account, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockLedgerRepository) GetAccountForUpdate(userID uint) (*models.Account, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockLedgerRepository) UpdateAccount(account *models.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockLedgerRepository) CreateTransaction(txn *models.PointsTransaction) error {
	args := m.Called(txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PointsTransaction), args.Error(1)
}

func (m *MockLedgerRepository) SumTransactionAmounts(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) CreateOutboxEvent(event *models.NotificationEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockLedgerRepository) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	args := m.Called(fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

func (m *MockLedgerRepository) WithTx(tx *gorm.DB) repositories.LedgerRepository {
	return m
}

type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) GetBalance(ctx context.Context, userID uint) (int64, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockBalanceCache) SetBalance(ctx context.Context, userID uint, balance int64) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *MockBalanceCache) InvalidateBalance(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestService_Record(t *testing.T) {
	tests := []struct {
		name        string
		req         RecordRequest
		setupMock   func(*MockLedgerRepository, *MockBalanceCache)
		wantErr     error
		wantBalance int64
	}{
		{
			name: "credit appends entry with balance snapshot",
			req: RecordRequest{
				UserID:      1,
				Amount:      25,
				Type:        models.TransactionTypeCheckIn,
				Description: "daily check-in",
			},
			setupMock: func(repo *MockLedgerRepository, cache *MockBalanceCache) {
				repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
				repo.On("GetAccountForUpdate", uint(1)).Return(&models.Account{UserID: 1, Balance: 100}, nil)
				repo.On("CreateTransaction", mock.MatchedBy(func(txn *models.PointsTransaction) bool {
					return txn.Amount == 25 && txn.BalanceAfter == 125
				})).Return(nil)
				repo.On("UpdateAccount", mock.MatchedBy(func(a *models.Account) bool {
					return a.Balance == 125
				})).Return(nil)
				repo.On("CreateOutboxEvent", mock.Anything).Return(nil)
				cache.On("InvalidateBalance", mock.Anything, uint(1)).Return(nil)
			},
			wantBalance: 125,
		},
		{
			name: "debit can take the balance below zero",
			req: RecordRequest{
				UserID:      2,
				Amount:      -40,
				Type:        models.TransactionTypeContactExposure,
				Description: "contact exposure deduction",
			},
			setupMock: func(repo *MockLedgerRepository, cache *MockBalanceCache) {
				repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
				repo.On("GetAccountForUpdate", uint(2)).Return(&models.Account{UserID: 2, Balance: 10}, nil)
				repo.On("CreateTransaction", mock.MatchedBy(func(txn *models.PointsTransaction) bool {
					return txn.BalanceAfter == -30
				})).Return(nil)
				repo.On("UpdateAccount", mock.Anything).Return(nil)
				repo.On("CreateOutboxEvent", mock.Anything).Return(nil)
				cache.On("InvalidateBalance", mock.Anything, uint(2)).Return(nil)
			},
			wantBalance: -30,
		},
		{
			name:    "zero amount rejected",
			req:     RecordRequest{UserID: 1, Amount: 0, Type: models.TransactionTypeCheckIn},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unknown type rejected",
			req:     RecordRequest{UserID: 1, Amount: 10, Type: "mystery"},
			wantErr: domain.ErrInvalidTransactionType,
		},
		{
			name: "missing account",
			req:  RecordRequest{UserID: 99, Amount: 10, Type: models.TransactionTypeCheckIn},
			setupMock: func(repo *MockLedgerRepository, cache *MockBalanceCache) {
				repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
				repo.On("GetAccountForUpdate", uint(99)).Return(nil, repositories.ErrAccountNotFound)
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLedgerRepository)
			cache := new(MockBalanceCache)
			if tt.setupMock != nil {
				tt.setupMock(repo, cache)
			}

			s := NewService(repo, cache, nil, nil)
			txn, err := s.Record(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantBalance, txn.BalanceAfter)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_RecordInTx_DefersCacheInvalidation(t *testing.T) {
	// A caller's transaction is still open when RecordInTx returns; dropping
	// the cached balance at that point would let a concurrent read refill it
	// from the old committed state. The write must leave the cache alone and
	// let the caller invalidate after commit.
	repo := new(MockLedgerRepository)
	cache := new(MockBalanceCache)
	repo.On("GetAccountForUpdate", uint(1)).Return(&models.Account{UserID: 1, Balance: 100}, nil)
	repo.On("CreateTransaction", mock.Anything).Return(nil)
	repo.On("UpdateAccount", mock.Anything).Return(nil)
	repo.On("CreateOutboxEvent", mock.Anything).Return(nil)

	s := NewService(repo, cache, nil, nil)
	txn, err := s.RecordInTx(&gorm.DB{}, RecordRequest{
		UserID:      1,
		Amount:      25,
		Type:        models.TransactionTypeCheckIn,
		Description: "daily check-in",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(125), txn.BalanceAfter)
	cache.AssertNotCalled(t, "InvalidateBalance", mock.Anything, mock.Anything)

	cache.On("InvalidateBalance", mock.Anything, uint(1)).Return(nil)
	s.InvalidateBalances(context.Background(), 1)
	cache.AssertExpectations(t)
}

func TestService_InvalidateBalances(t *testing.T) {
	cache := new(MockBalanceCache)
	cache.On("InvalidateBalance", mock.Anything, uint(1)).Return(nil)
	cache.On("InvalidateBalance", mock.Anything, uint(2)).Return(assert.AnError)
	cache.On("InvalidateBalance", mock.Anything, uint(3)).Return(nil)

	s := NewService(new(MockLedgerRepository), cache, nil, nil)
	// A cache failure only costs a later cache miss; it must not stop the
	// remaining invalidations.
	s.InvalidateBalances(context.Background(), 1, 2, 3)

	cache.AssertExpectations(t)
}

func TestService_GetBalance(t *testing.T) {
	t.Run("cache hit skips the database", func(t *testing.T) {
		repo := new(MockLedgerRepository)
		cache := new(MockBalanceCache)
		cache.On("GetBalance", mock.Anything, uint(1)).Return(int64(300), true, nil)

		s := NewService(repo, cache, nil, nil)
		balance, err := s.GetBalance(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(300), balance)
		repo.AssertNotCalled(t, "GetAccountByUserID")
	})

	t.Run("cache miss reads and backfills", func(t *testing.T) {
		repo := new(MockLedgerRepository)
		cache := new(MockBalanceCache)
		cache.On("GetBalance", mock.Anything, uint(1)).Return(int64(0), false, nil)
		repo.On("GetAccountByUserID", uint(1)).Return(&models.Account{UserID: 1, Balance: 42}, nil)
		cache.On("SetBalance", mock.Anything, uint(1), int64(42)).Return(nil)

		s := NewService(repo, cache, nil, nil)
		balance, err := s.GetBalance(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), balance)
		cache.AssertExpectations(t)
	})

	t.Run("missing account maps to the domain error", func(t *testing.T) {
		repo := new(MockLedgerRepository)
		cache := new(MockBalanceCache)
		cache.On("GetBalance", mock.Anything, uint(7)).Return(int64(0), false, nil)
		repo.On("GetAccountByUserID", uint(7)).Return(nil, repositories.ErrAccountNotFound)

		s := NewService(repo, cache, nil, nil)
		_, err := s.GetBalance(context.Background(), 7)

		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestService_ValidateBalance(t *testing.T) {
	repo := new(MockLedgerRepository)
	cache := new(MockBalanceCache)
	cache.On("GetBalance", mock.Anything, uint(1)).Return(int64(15), true, nil)

	s := NewService(repo, cache, nil, nil)

	assert.NoError(t, s.ValidateBalance(context.Background(), 1, 15))

	err := s.ValidateBalance(context.Background(), 1, 16)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.ErrorIs(t, s.ValidateBalance(context.Background(), 1, 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, s.ValidateBalance(context.Background(), 1, -5), domain.ErrInvalidAmount)
}

func TestService_History(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults applied", limit: 0, offset: -3, wantLimit: DefaultHistoryLimit, wantOffset: 0},
		{name: "limit capped", limit: 1000, offset: 40, wantLimit: MaxHistoryLimit, wantOffset: 40},
		{name: "passthrough", limit: 10, offset: 20, wantLimit: 10, wantOffset: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLedgerRepository)
			cache := new(MockBalanceCache)
			repo.On("GetTransactionHistory", mock.Anything, uint(1), tt.wantLimit, tt.wantOffset).
				Return([]models.PointsTransaction{}, nil)

			s := NewService(repo, cache, nil, nil)
			_, err := s.History(context.Background(), 1, tt.limit, tt.offset)

			assert.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
