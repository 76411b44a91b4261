// Package deposit owns the merchant deposit escrow lifecycle: application,
// admin review, top-up, refund with time-tiered fees, and moderation
// violations. It never moves real funds; deposits are settled off-platform
// and this service records the accounting consequence.
package deposit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "vendora/internal/errors"
	"vendora/internal/models"
	"vendora/internal/repositories"
	"vendora/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MerchantCache invalidates cached merchants after escrow transitions.
type MerchantCache interface {
	InvalidateMerchant(ctx context.Context, id uint) error
}

// TxRunner runs a unit of work in one database transaction. *gorm.DB
// satisfies it.
type TxRunner interface {
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Service is the deposit escrow state machine.
type Service interface {
	Apply(ctx context.Context, req ApplyRequest) (*models.DepositApplication, error)
	ReviewApplication(ctx context.Context, req ReviewRequest) error

	ApplyTopUp(ctx context.Context, req TopUpRequest) (*models.DepositTopUpApplication, error)
	ReviewTopUp(ctx context.Context, req ReviewRequest) error

	ApplyRefund(ctx context.Context, req RefundRequest) (*models.DepositRefundApplication, error)
	ReviewRefund(ctx context.Context, req ReviewRequest) error
	CancelRefund(ctx context.Context, applicationID, userID uint) error

	MarkViolated(ctx context.Context, merchantID uint, reason string) error
}

type service struct {
	db           TxRunner
	ledger       ledger.Service
	merchantRepo repositories.MerchantRepository
	appRepo      repositories.ApplicationRepository
	settings     SettingsProvider
	cache        MerchantCache
	logger       *zap.Logger
}

func NewService(
	db TxRunner,
	ledgerSvc ledger.Service,
	merchantRepo repositories.MerchantRepository,
	appRepo repositories.ApplicationRepository,
	settings SettingsProvider,
	cache MerchantCache,
	logger *zap.Logger,
) Service {
	if db == nil {
		panic("db is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if settings == nil {
		panic("settings provider is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		db:           db,
		ledger:       ledgerSvc,
		merchantRepo: merchantRepo,
		appRepo:      appRepo,
		settings:     settings,
		cache:        cache,
		logger:       logger,
	}
}

func (s *service) Apply(ctx context.Context, req ApplyRequest) (*models.DepositApplication, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validation("deposit amount must be positive")
	}
	if req.PaymentProofURL == "" {
		return nil, domain.Validation("payment proof is required")
	}

	merchant, err := s.merchantByUser(req.UserID)
	if err != nil {
		return nil, err
	}

	switch merchant.DepositStatus {
	case models.DepositStatusUnpaid, models.DepositStatusRefunded:
		// eligible to (re-)apply
	default:
		return nil, domain.InvalidTransition(
			"cannot apply for a deposit while status is %s", merchant.DepositStatus)
	}

	app := &models.DepositApplication{
		MerchantID:      merchant.ID,
		UserID:          req.UserID,
		DepositAmount:   req.Amount,
		PaymentProofURL: req.PaymentProofURL,
		TransactionHash: req.TransactionHash,
		Status:          models.ApplicationStatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.appRepo.WithTx(tx)
		if err := repo.CreateDepositApplication(app); err != nil {
			return err
		}
		return repo.CreateOutboxEvent(s.event("deposit.applied", merchant.UserID,
			fmt.Sprintf("deposit application submitted for %s", req.Amount), map[string]interface{}{
				"application_id": app.ID,
				"merchant_id":    merchant.ID,
				"amount":         req.Amount.String(),
			}))
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicatePending) {
			return nil, domain.ErrPendingApplicationExists
		}
		return nil, err
	}

	return app, nil
}

func (s *service) ReviewApplication(ctx context.Context, req ReviewRequest) error {
	if err := validateReview(req); err != nil {
		return err
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return err
	}

	var merchantID, bonusUserID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.appRepo.WithTx(tx)
		app, err := repo.GetDepositApplication(req.ApplicationID)
		if err != nil {
			return mapAppErr(err)
		}
		if app.Status != models.ApplicationStatusPending {
			return domain.ErrStaleApplication
		}
		merchantID = app.MerchantID

		if req.Decision == DecisionReject {
			app.Status = models.ApplicationStatusRejected
			app.RejectedReason = req.Note
			if err := repo.UpdateDepositApplication(app); err != nil {
				return err
			}
			return repo.CreateOutboxEvent(s.event("deposit.rejected", app.UserID,
				"deposit application rejected: "+req.Note, map[string]interface{}{
					"application_id": app.ID,
					"reason":         req.Note,
				}))
		}

		merchant, err := s.merchantRepo.WithTx(tx).GetForUpdate(app.MerchantID)
		if err != nil {
			return err
		}

		now := time.Now()
		merchant.IsDepositMerchant = true
		merchant.DepositAmount = app.DepositAmount
		merchant.DepositStatus = models.DepositStatusPaid
		merchant.DepositPaidAt = &now
		if err := s.merchantRepo.WithTx(tx).Update(merchant); err != nil {
			return err
		}

		// One-time approval bonus, gated by the claimed-ever flag.
		if !merchant.DepositBonusClaimed {
			if _, err := s.ledger.RecordInTx(tx, ledger.RecordRequest{
				UserID:          merchant.UserID,
				Amount:          settings.DepositApprovalBonus,
				Type:            models.TransactionTypeDepositBonus,
				Description:     "deposit approval bonus",
				RelatedEntityID: &merchant.ID,
			}); err != nil {
				return err
			}
			bonusUserID = merchant.UserID
			merchant.DepositBonusClaimed = true
			if err := s.merchantRepo.WithTx(tx).Update(merchant); err != nil {
				return err
			}
		}

		app.Status = models.ApplicationStatusApproved
		app.AdminNote = req.Note
		app.ApprovedBy = &req.AdminID
		app.ApprovedAt = &now
		if err := repo.UpdateDepositApplication(app); err != nil {
			return err
		}

		return repo.CreateOutboxEvent(s.event("deposit.approved", app.UserID,
			"deposit application approved", map[string]interface{}{
				"application_id": app.ID,
				"amount":         app.DepositAmount.String(),
			}))
	})
	if err != nil {
		return err
	}

	if bonusUserID != 0 {
		s.ledger.InvalidateBalances(ctx, bonusUserID)
	}
	s.invalidateMerchant(ctx, merchantID)
	return nil
}

func (s *service) ApplyTopUp(ctx context.Context, req TopUpRequest) (*models.DepositTopUpApplication, error) {
	if req.TopUpAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validation("top-up amount must be positive")
	}
	if req.PaymentProofURL == "" {
		return nil, domain.Validation("payment proof is required")
	}

	merchant, err := s.merchantByUser(req.UserID)
	if err != nil {
		return nil, err
	}
	if merchant.DepositStatus != models.DepositStatusPaid {
		return nil, domain.InvalidTransition(
			"deposit must be paid before topping up, current status is %s", merchant.DepositStatus)
	}

	// TotalAmount is fixed now; approval copies it to the merchant without
	// re-adding the top-up.
	app := &models.DepositTopUpApplication{
		MerchantID:      merchant.ID,
		UserID:          req.UserID,
		OriginalAmount:  merchant.DepositAmount,
		TopUpAmount:     req.TopUpAmount,
		TotalAmount:     merchant.DepositAmount.Add(req.TopUpAmount),
		PaymentProofURL: req.PaymentProofURL,
		TransactionHash: req.TransactionHash,
		Status:          models.ApplicationStatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.appRepo.WithTx(tx)
		if err := repo.CreateTopUpApplication(app); err != nil {
			return err
		}
		return repo.CreateOutboxEvent(s.event("deposit.topup.applied", merchant.UserID,
			fmt.Sprintf("deposit top-up of %s submitted", req.TopUpAmount), map[string]interface{}{
				"application_id": app.ID,
				"total_amount":   app.TotalAmount.String(),
			}))
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicatePending) {
			return nil, domain.ErrPendingApplicationExists
		}
		return nil, err
	}

	return app, nil
}

func (s *service) ReviewTopUp(ctx context.Context, req ReviewRequest) error {
	if err := validateReview(req); err != nil {
		return err
	}

	var merchantID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.appRepo.WithTx(tx)
		app, err := repo.GetTopUpApplication(req.ApplicationID)
		if err != nil {
			return mapAppErr(err)
		}
		if app.Status != models.ApplicationStatusPending {
			return domain.ErrStaleApplication
		}
		merchantID = app.MerchantID

		if req.Decision == DecisionReject {
			app.Status = models.ApplicationStatusRejected
			app.RejectedReason = req.Note
			if err := repo.UpdateTopUpApplication(app); err != nil {
				return err
			}
			return repo.CreateOutboxEvent(s.event("deposit.topup.rejected", app.UserID,
				"deposit top-up rejected: "+req.Note, map[string]interface{}{
					"application_id": app.ID,
					"reason":         req.Note,
				}))
		}

		merchant, err := s.merchantRepo.WithTx(tx).GetForUpdate(app.MerchantID)
		if err != nil {
			return err
		}
		if merchant.DepositStatus != models.DepositStatusPaid {
			return domain.InvalidTransition(
				"cannot approve top-up while deposit status is %s", merchant.DepositStatus)
		}

		merchant.DepositAmount = app.TotalAmount
		if err := s.merchantRepo.WithTx(tx).Update(merchant); err != nil {
			return err
		}

		now := time.Now()
		app.Status = models.ApplicationStatusApproved
		app.AdminNote = req.Note
		app.ApprovedBy = &req.AdminID
		app.ApprovedAt = &now
		if err := repo.UpdateTopUpApplication(app); err != nil {
			return err
		}

		return repo.CreateOutboxEvent(s.event("deposit.topup.approved", app.UserID,
			"deposit top-up approved", map[string]interface{}{
				"application_id": app.ID,
				"total_amount":   app.TotalAmount.String(),
			}))
	})
	if err != nil {
		return err
	}

	s.invalidateMerchant(ctx, merchantID)
	return nil
}

func (s *service) ApplyRefund(ctx context.Context, req RefundRequest) (*models.DepositRefundApplication, error) {
	if req.WalletAddress == "" || req.WalletNetwork == "" {
		return nil, domain.Validation("wallet address and network are required")
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	merchant, err := s.merchantByUser(req.UserID)
	if err != nil {
		return nil, err
	}

	var app *models.DepositRefundApplication
	err = s.db.Transaction(func(tx *gorm.DB) error {
		m, err := s.merchantRepo.WithTx(tx).GetForUpdate(merchant.ID)
		if err != nil {
			return err
		}
		if m.DepositStatus != models.DepositStatusPaid {
			return domain.InvalidTransition(
				"refund requires a paid deposit, current status is %s", m.DepositStatus)
		}
		if m.DepositPaidAt == nil {
			return domain.InvalidTransition("deposit has no payment date on record")
		}

		// The fee is computed now and frozen into the application; later
		// clock drift cannot change an already-submitted request.
		breakdown := ComputeRefundFee(settings, m.DepositAmount, *m.DepositPaidAt, time.Now())

		app = &models.DepositRefundApplication{
			MerchantID:    m.ID,
			UserID:        req.UserID,
			DepositAmount: m.DepositAmount,
			DepositPaidAt: *m.DepositPaidAt,
			FeeRate:       breakdown.FeeRate,
			FeeAmount:     breakdown.FeeAmount,
			RefundAmount:  breakdown.RefundAmount,
			Reason:        req.Reason,
			WalletAddress: req.WalletAddress,
			WalletNetwork: req.WalletNetwork,
			Status:        models.ApplicationStatusPending,
		}

		repo := s.appRepo.WithTx(tx)
		if err := repo.CreateRefundApplication(app); err != nil {
			return err
		}

		m.DepositStatus = models.DepositStatusRefundRequested
		if err := s.merchantRepo.WithTx(tx).Update(m); err != nil {
			return err
		}

		return repo.CreateOutboxEvent(s.event("deposit.refund.applied", req.UserID,
			fmt.Sprintf("refund requested, %s after %s fee", app.RefundAmount, app.FeeAmount),
			map[string]interface{}{
				"application_id": app.ID,
				"fee_rate":       app.FeeRate.String(),
				"refund_amount":  app.RefundAmount.String(),
			}))
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicatePending) {
			return nil, domain.ErrPendingApplicationExists
		}
		return nil, err
	}

	s.invalidateMerchant(ctx, merchant.ID)
	return app, nil
}

func (s *service) ReviewRefund(ctx context.Context, req ReviewRequest) error {
	if err := validateReview(req); err != nil {
		return err
	}

	var merchantID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.appRepo.WithTx(tx)
		app, err := repo.GetRefundApplication(req.ApplicationID)
		if err != nil {
			return mapAppErr(err)
		}
		if app.Status != models.ApplicationStatusPending {
			return domain.ErrStaleApplication
		}
		merchantID = app.MerchantID

		merchant, err := s.merchantRepo.WithTx(tx).GetForUpdate(app.MerchantID)
		if err != nil {
			return err
		}

		now := time.Now()
		if req.Decision == DecisionReject {
			// A rejection always closes the application, even when a
			// violation froze the merchant in the meantime; the escrow
			// only reopens if the refund request still holds it.
			app.Status = models.ApplicationStatusRejected
			app.RejectedReason = req.Note
			if err := repo.UpdateRefundApplication(app); err != nil {
				return err
			}
			if merchant.DepositStatus == models.DepositStatusRefundRequested {
				merchant.DepositStatus = models.DepositStatusPaid
				if err := s.merchantRepo.WithTx(tx).Update(merchant); err != nil {
					return err
				}
			}
			return repo.CreateOutboxEvent(s.event("deposit.refund.rejected", app.UserID,
				"refund request rejected: "+req.Note, map[string]interface{}{
					"application_id": app.ID,
					"reason":         req.Note,
				}))
		}

		if merchant.DepositStatus != models.DepositStatusRefundRequested {
			// Violation or another transition overtook this application.
			return domain.InvalidTransition(
				"cannot approve refund while deposit status is %s", merchant.DepositStatus)
		}

		// Approval records the settlement amounts; the transfer itself
		// happens off-platform.
		app.Status = models.ApplicationStatusApproved
		app.AdminNote = req.Note
		app.ApprovedBy = &req.AdminID
		app.ApprovedAt = &now
		if err := repo.UpdateRefundApplication(app); err != nil {
			return err
		}

		merchant.DepositStatus = models.DepositStatusRefunded
		merchant.IsDepositMerchant = false
		merchant.DepositAmount = decimal.Zero
		if err := s.merchantRepo.WithTx(tx).Update(merchant); err != nil {
			return err
		}

		return repo.CreateOutboxEvent(s.event("deposit.refund.approved", app.UserID,
			fmt.Sprintf("refund of %s approved for settlement", app.RefundAmount),
			map[string]interface{}{
				"application_id": app.ID,
				"refund_amount":  app.RefundAmount.String(),
				"wallet_address": app.WalletAddress,
				"wallet_network": app.WalletNetwork,
			}))
	})
	if err != nil {
		return err
	}

	s.invalidateMerchant(ctx, merchantID)
	return nil
}

func (s *service) CancelRefund(ctx context.Context, applicationID, userID uint) error {
	var merchantID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.appRepo.WithTx(tx)
		app, err := repo.GetRefundApplication(applicationID)
		if err != nil {
			return mapAppErr(err)
		}
		if app.UserID != userID {
			return domain.ErrUnauthorized
		}
		if app.Status != models.ApplicationStatusPending {
			return domain.ErrStaleApplication
		}
		merchantID = app.MerchantID

		app.Status = models.ApplicationStatusRejected
		app.RejectedReason = "cancelled by vendor"
		if err := repo.UpdateRefundApplication(app); err != nil {
			return err
		}

		merchant, err := s.merchantRepo.WithTx(tx).GetForUpdate(app.MerchantID)
		if err != nil {
			return err
		}
		if merchant.DepositStatus == models.DepositStatusRefundRequested {
			merchant.DepositStatus = models.DepositStatusPaid
			if err := s.merchantRepo.WithTx(tx).Update(merchant); err != nil {
				return err
			}
		}

		return repo.CreateOutboxEvent(s.event("deposit.refund.cancelled", userID,
			"refund request cancelled", map[string]interface{}{
				"application_id": app.ID,
			}))
	})
	if err != nil {
		return err
	}

	s.invalidateMerchant(ctx, merchantID)
	return nil
}

func (s *service) MarkViolated(ctx context.Context, merchantID uint, reason string) error {
	if reason == "" {
		return domain.Validation("violation reason is required")
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		merchant, err := s.merchantRepo.WithTx(tx).GetForUpdate(merchantID)
		if err != nil {
			if errors.Is(err, repositories.ErrMerchantNotFound) {
				return domain.ErrMerchantNotFound
			}
			return err
		}
		switch merchant.DepositStatus {
		case models.DepositStatusPaid, models.DepositStatusRefundRequested:
			// freezable
		default:
			return domain.InvalidTransition(
				"cannot freeze deposit while status is %s", merchant.DepositStatus)
		}

		platform, victims := ComputeViolationSplit(settings, merchant.DepositAmount)

		repo := s.appRepo.WithTx(tx)
		if err := repo.CreateViolation(&models.DepositViolation{
			MerchantID:    merchantID,
			DepositAmount: merchant.DepositAmount,
			PlatformShare: platform,
			VictimShare:   victims,
			Reason:        reason,
		}); err != nil {
			return err
		}

		merchant.DepositStatus = models.DepositStatusViolated
		merchant.Status = "frozen"
		if err := s.merchantRepo.WithTx(tx).Update(merchant); err != nil {
			return err
		}

		return repo.CreateOutboxEvent(s.event("deposit.violated", merchant.UserID,
			"deposit frozen for violation: "+reason, map[string]interface{}{
				"merchant_id":    merchantID,
				"platform_share": platform.String(),
				"victim_share":   victims.String(),
			}))
	})
	if err != nil {
		return err
	}

	s.invalidateMerchant(ctx, merchantID)
	return nil
}

func (s *service) merchantByUser(userID uint) (*models.Merchant, error) {
	merchant, err := s.merchantRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, err
	}
	return merchant, nil
}

func (s *service) event(eventType string, userID uint, summary string, payload map[string]interface{}) *models.NotificationEvent {
	return &models.NotificationEvent{
		EventID: uuid.NewString(),
		Type:    eventType,
		UserID:  userID,
		Summary: summary,
		Payload: models.NewJSON(payload),
	}
}

func (s *service) invalidateMerchant(ctx context.Context, id uint) {
	if s.cache == nil || id == 0 {
		return
	}
	if err := s.cache.InvalidateMerchant(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate merchant cache",
			zap.Uint("merchant_id", id),
			zap.Error(err))
	}
}

func validateReview(req ReviewRequest) error {
	if !req.Decision.Valid() {
		return domain.Validation("decision must be approve or reject")
	}
	if req.Decision == DecisionReject && req.Note == "" {
		return domain.Validation("a rejection reason is required")
	}
	return nil
}

func mapAppErr(err error) error {
	if errors.Is(err, repositories.ErrApplicationNotFound) {
		return domain.ErrApplicationNotFound
	}
	return err
}
