package deposit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"vendora/internal/config"
	domain "vendora/internal/errors"
	"vendora/internal/models"
	"vendora/internal/repositories"
	"vendora/internal/services/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) Create(merchant *models.Merchant) error {
	args := m.Called(merchant)
	return args.Error(0)
}

func (m *MockMerchantRepository) GetByID(id uint) (*models.Merchant, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) GetByUserID(userID uint) (*models.Merchant, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) GetForUpdate(id uint) (*models.Merchant, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) Update(merchant *models.Merchant) error {
	args := m.Called(merchant)
	return args.Error(0)
}

func (m *MockMerchantRepository) WithTx(tx *gorm.DB) repositories.MerchantRepository {
	return m
}

type stubSettings struct{}

func (stubSettings) Snapshot(ctx context.Context) (config.Settings, error) {
	return config.DefaultSettings(), nil
}

type stubLedger struct{}

func (stubLedger) Record(ctx context.Context, req ledger.RecordRequest) (*models.PointsTransaction, error) {
	return &models.PointsTransaction{}, nil
}

func (stubLedger) RecordInTx(tx *gorm.DB, req ledger.RecordRequest) (*models.PointsTransaction, error) {
	return &models.PointsTransaction{}, nil
}

func (stubLedger) GetBalance(ctx context.Context, userID uint) (int64, error) { return 0, nil }

func (stubLedger) ValidateBalance(ctx context.Context, userID uint, amount int64) error { return nil }

func (stubLedger) CreateAccount(ctx context.Context, userID uint) (*models.Account, error) {
	return &models.Account{UserID: userID}, nil
}

func (stubLedger) History(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, error) {
	return nil, nil
}

func (stubLedger) InvalidateBalances(ctx context.Context, userIDs ...uint) {}

// txPassthrough runs the unit of work directly; the mocks' WithTx returns the
// mock itself, so everything inside the closure still hits the mocks.
type txPassthrough struct{}

func (txPassthrough) Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fn(&gorm.DB{})
}

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) CreateDepositApplication(app *models.DepositApplication) error {
	args := m.Called(app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetDepositApplication(id uint) (*models.DepositApplication, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DepositApplication), args.Error(1)
}

func (m *MockApplicationRepository) UpdateDepositApplication(app *models.DepositApplication) error {
	args := m.Called(app)
	return args.Error(0)
}

func (m *MockApplicationRepository) CreateTopUpApplication(app *models.DepositTopUpApplication) error {
	args := m.Called(app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetTopUpApplication(id uint) (*models.DepositTopUpApplication, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DepositTopUpApplication), args.Error(1)
}

func (m *MockApplicationRepository) UpdateTopUpApplication(app *models.DepositTopUpApplication) error {
	args := m.Called(app)
	return args.Error(0)
}

func (m *MockApplicationRepository) CreateRefundApplication(app *models.DepositRefundApplication) error {
	args := m.Called(app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetRefundApplication(id uint) (*models.DepositRefundApplication, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DepositRefundApplication), args.Error(1)
}

func (m *MockApplicationRepository) UpdateRefundApplication(app *models.DepositRefundApplication) error {
	args := m.Called(app)
	return args.Error(0)
}

func (m *MockApplicationRepository) CreateViolation(v *models.DepositViolation) error {
	args := m.Called(v)
	return args.Error(0)
}

func (m *MockApplicationRepository) CreateOutboxEvent(event *models.NotificationEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockApplicationRepository) WithTx(tx *gorm.DB) repositories.ApplicationRepository {
	return m
}

func newTestService(merchantRepo repositories.MerchantRepository) Service {
	return NewService(txPassthrough{}, stubLedger{}, merchantRepo, nil, stubSettings{}, nil, nil)
}

func newTestServiceWithApps(merchantRepo repositories.MerchantRepository, appRepo repositories.ApplicationRepository) Service {
	return NewService(txPassthrough{}, stubLedger{}, merchantRepo, appRepo, stubSettings{}, nil, nil)
}

func TestService_Apply_Validation(t *testing.T) {
	tests := []struct {
		name      string
		req       ApplyRequest
		setupMock func(*MockMerchantRepository)
		wantCode  string
	}{
		{
			name:     "non-positive amount",
			req:      ApplyRequest{UserID: 1, Amount: decimal.Zero, PaymentProofURL: "https://proof"},
			wantCode: domain.CodeValidation,
		},
		{
			name:     "missing payment proof",
			req:      ApplyRequest{UserID: 1, Amount: decimal.NewFromInt(1000)},
			wantCode: domain.CodeValidation,
		},
		{
			name: "unknown merchant",
			req:  ApplyRequest{UserID: 9, Amount: decimal.NewFromInt(1000), PaymentProofURL: "https://proof"},
			setupMock: func(repo *MockMerchantRepository) {
				repo.On("GetByUserID", uint(9)).Return(nil, repositories.ErrMerchantNotFound)
			},
			wantCode: domain.CodeNotFound,
		},
		{
			name: "already paid",
			req:  ApplyRequest{UserID: 1, Amount: decimal.NewFromInt(1000), PaymentProofURL: "https://proof"},
			setupMock: func(repo *MockMerchantRepository) {
				repo.On("GetByUserID", uint(1)).Return(&models.Merchant{
					UserID:        1,
					DepositStatus: models.DepositStatusPaid,
				}, nil)
			},
			wantCode: domain.CodeInvalidTransition,
		},
		{
			name: "refund in flight",
			req:  ApplyRequest{UserID: 1, Amount: decimal.NewFromInt(1000), PaymentProofURL: "https://proof"},
			setupMock: func(repo *MockMerchantRepository) {
				repo.On("GetByUserID", uint(1)).Return(&models.Merchant{
					UserID:        1,
					DepositStatus: models.DepositStatusRefundRequested,
				}, nil)
			},
			wantCode: domain.CodeInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockMerchantRepository)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			s := newTestService(repo)
			_, err := s.Apply(context.Background(), tt.req)

			var derr *domain.DomainError
			assert.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.wantCode, derr.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_ApplyTopUp_RequiresPaidDeposit(t *testing.T) {
	repo := new(MockMerchantRepository)
	repo.On("GetByUserID", uint(1)).Return(&models.Merchant{
		UserID:        1,
		DepositStatus: models.DepositStatusUnpaid,
	}, nil)

	s := newTestService(repo)
	_, err := s.ApplyTopUp(context.Background(), TopUpRequest{
		UserID:          1,
		TopUpAmount:     decimal.NewFromInt(500),
		PaymentProofURL: "https://proof",
	})

	var derr *domain.DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeInvalidTransition, derr.Code)
}

func TestService_ApplyRefund_Validation(t *testing.T) {
	s := newTestService(new(MockMerchantRepository))

	_, err := s.ApplyRefund(context.Background(), RefundRequest{UserID: 1})

	var derr *domain.DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeValidation, derr.Code)
}

func TestService_MarkViolated_RequiresReason(t *testing.T) {
	s := newTestService(new(MockMerchantRepository))

	err := s.MarkViolated(context.Background(), 1, "")

	var derr *domain.DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeValidation, derr.Code)
}

func TestService_Apply_SecondPendingConflicts(t *testing.T) {
	merchants := new(MockMerchantRepository)
	merchants.On("GetByUserID", uint(1)).Return(&models.Merchant{
		UserID:        1,
		DepositStatus: models.DepositStatusUnpaid,
	}, nil)

	apps := new(MockApplicationRepository)
	apps.On("CreateDepositApplication", mock.AnythingOfType("*models.DepositApplication")).
		Return(repositories.ErrDuplicatePending)

	s := newTestServiceWithApps(merchants, apps)
	_, err := s.Apply(context.Background(), ApplyRequest{
		UserID:          1,
		Amount:          decimal.NewFromInt(1000),
		PaymentProofURL: "https://proof",
	})

	var derr *domain.DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeConflictingPending, derr.Code)
	apps.AssertExpectations(t)
}

func TestService_CancelRefund_RestoresPaidDeposit(t *testing.T) {
	paidAt := time.Now().AddDate(0, -2, 0)
	app := &models.DepositRefundApplication{
		MerchantID:    7,
		UserID:        1,
		DepositAmount: decimal.NewFromInt(1000),
		DepositPaidAt: paidAt,
		Status:        models.ApplicationStatusPending,
	}
	merchant := &models.Merchant{
		UserID:        1,
		DepositStatus: models.DepositStatusRefundRequested,
		DepositAmount: decimal.NewFromInt(1000),
	}
	merchant.ID = 7

	apps := new(MockApplicationRepository)
	apps.On("GetRefundApplication", uint(3)).Return(app, nil)
	apps.On("UpdateRefundApplication", app).Return(nil)
	apps.On("CreateOutboxEvent", mock.AnythingOfType("*models.NotificationEvent")).Return(nil)

	merchants := new(MockMerchantRepository)
	merchants.On("GetForUpdate", uint(7)).Return(merchant, nil)
	merchants.On("Update", merchant).Return(nil)

	s := newTestServiceWithApps(merchants, apps)
	err := s.CancelRefund(context.Background(), 3, 1)

	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, app.Status)
	assert.Equal(t, models.DepositStatusPaid, merchant.DepositStatus)
	apps.AssertExpectations(t)
	merchants.AssertExpectations(t)
}

func TestService_CancelRefund_WrongUser(t *testing.T) {
	app := &models.DepositRefundApplication{
		MerchantID: 7,
		UserID:     1,
		Status:     models.ApplicationStatusPending,
	}

	apps := new(MockApplicationRepository)
	apps.On("GetRefundApplication", uint(3)).Return(app, nil)

	s := newTestServiceWithApps(new(MockMerchantRepository), apps)
	err := s.CancelRefund(context.Background(), 3, 2)

	var derr *domain.DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeUnauthorized, derr.Code)
}

func TestService_ReviewRefund_ViolatedMerchant(t *testing.T) {
	newFixtures := func() (*models.DepositRefundApplication, *models.Merchant) {
		app := &models.DepositRefundApplication{
			MerchantID:    7,
			UserID:        1,
			DepositAmount: decimal.NewFromInt(1000),
			DepositPaidAt: time.Now().AddDate(0, -1, 0),
			Status:        models.ApplicationStatusPending,
		}
		merchant := &models.Merchant{
			UserID:        1,
			DepositStatus: models.DepositStatusViolated,
			DepositAmount: decimal.NewFromInt(1000),
		}
		merchant.ID = 7
		return app, merchant
	}

	t.Run("reject closes the application and keeps the freeze", func(t *testing.T) {
		app, merchant := newFixtures()

		apps := new(MockApplicationRepository)
		apps.On("GetRefundApplication", uint(3)).Return(app, nil)
		apps.On("UpdateRefundApplication", app).Return(nil)
		apps.On("CreateOutboxEvent", mock.AnythingOfType("*models.NotificationEvent")).Return(nil)

		merchants := new(MockMerchantRepository)
		merchants.On("GetForUpdate", uint(7)).Return(merchant, nil)

		s := newTestServiceWithApps(merchants, apps)
		err := s.ReviewRefund(context.Background(), ReviewRequest{
			ApplicationID: 3,
			AdminID:       99,
			Decision:      DecisionReject,
			Note:          "deposit frozen for violation",
		})

		assert.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusRejected, app.Status)
		assert.Equal(t, "deposit frozen for violation", app.RejectedReason)
		// The escrow stays violated; the refund request no longer holds it.
		assert.Equal(t, models.DepositStatusViolated, merchant.DepositStatus)
		merchants.AssertNotCalled(t, "Update", mock.Anything)
		apps.AssertExpectations(t)
	})

	t.Run("approve is blocked", func(t *testing.T) {
		app, merchant := newFixtures()

		apps := new(MockApplicationRepository)
		apps.On("GetRefundApplication", uint(3)).Return(app, nil)

		merchants := new(MockMerchantRepository)
		merchants.On("GetForUpdate", uint(7)).Return(merchant, nil)

		s := newTestServiceWithApps(merchants, apps)
		err := s.ReviewRefund(context.Background(), ReviewRequest{
			ApplicationID: 3,
			AdminID:       99,
			Decision:      DecisionApprove,
		})

		var derr *domain.DomainError
		assert.ErrorAs(t, err, &derr)
		assert.Equal(t, domain.CodeInvalidTransition, derr.Code)
		assert.Equal(t, models.ApplicationStatusPending, app.Status)
	})
}

func TestValidateReview(t *testing.T) {
	tests := []struct {
		name    string
		req     ReviewRequest
		wantErr bool
	}{
		{name: "approve", req: ReviewRequest{ApplicationID: 1, Decision: DecisionApprove}},
		{name: "reject with note", req: ReviewRequest{ApplicationID: 1, Decision: DecisionReject, Note: "blurry proof"}},
		{name: "reject without note", req: ReviewRequest{ApplicationID: 1, Decision: DecisionReject}, wantErr: true},
		{name: "unknown decision", req: ReviewRequest{ApplicationID: 1, Decision: "maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateReview(tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, &domain.DomainError{Code: domain.CodeValidation})
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
