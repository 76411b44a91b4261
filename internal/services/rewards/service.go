package rewards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	domain "vendora/internal/errors"
	"vendora/internal/models"
	"vendora/internal/repositories"
	"vendora/internal/services/ledger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MerchantCache invalidates cached merchants after promotion and reward
// mutations.
type MerchantCache interface {
	InvalidateMerchant(ctx context.Context, id uint) error
}

// TxRunner runs a unit of work in one database transaction. *gorm.DB
// satisfies it.
type TxRunner interface {
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type service struct {
	db           TxRunner
	ledger       ledger.Service
	ledgerRepo   repositories.LedgerRepository
	activityRepo repositories.ActivityRepository
	merchantRepo repositories.MerchantRepository
	userRepo     repositories.UserRepository
	settings     SettingsProvider
	cache        MerchantCache
	logger       *zap.Logger
}

// Service executes the point-earning and point-spending business actions,
// delegating every balance mutation to the ledger.
type Service interface {
	CheckIn(ctx context.Context, userID uint) (*CheckInResult, error)
	RevealContact(ctx context.Context, viewerID, merchantID uint) (*RevealResult, error)
	Refer(ctx context.Context, inviterID, inviteeID uint) (*ReferResult, error)
	Promote(ctx context.Context, userID uint, days int) (*PromoteResult, error)
	ClaimDailyDepositReward(ctx context.Context, userID uint) (int64, error)
}

func NewService(
	db TxRunner,
	ledgerSvc ledger.Service,
	ledgerRepo repositories.LedgerRepository,
	activityRepo repositories.ActivityRepository,
	merchantRepo repositories.MerchantRepository,
	userRepo repositories.UserRepository,
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
		ledgerRepo:   ledgerRepo,
		activityRepo: activityRepo,
		merchantRepo: merchantRepo,
		userRepo:     userRepo,
		settings:     settings,
		cache:        cache,
		logger:       logger,
	}
}

func (s *service) CheckIn(ctx context.Context, userID uint) (*CheckInResult, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	today := utcDate(time.Now())
	latest, err := s.activityRepo.GetLatestCheckIn(userID)
	if err != nil {
		return nil, err
	}

	consecutive := 1
	if latest != nil {
		last := utcDate(latest.CheckInDate)
		if last.Equal(today) {
			return nil, ErrAlreadyCheckedIn
		}
		if last.Equal(today.AddDate(0, 0, -1)) {
			consecutive = latest.ConsecutiveDays + 1
		}
	}

	reward := CheckInReward(settings, consecutive)

	var txn *models.PointsTransaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		rec := &models.CheckInRecord{
			UserID:          userID,
			CheckInDate:     today,
			ConsecutiveDays: consecutive,
		}
		// A racing second check-in fails here on the unique index.
		if err := s.activityRepo.WithTx(tx).CreateCheckIn(rec); err != nil {
			return err
		}

		txn, err = s.ledger.RecordInTx(tx, ledger.RecordRequest{
			UserID:      userID,
			Amount:      reward,
			Type:        models.TransactionTypeCheckIn,
			Description: fmt.Sprintf("daily check-in, day %d", consecutive),
			Metadata: map[string]interface{}{
				"consecutive_days": consecutive,
				"settings_version": settings.Version,
			},
		})
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyCheckedIn) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}

	s.ledger.InvalidateBalances(ctx, userID)
	return &CheckInResult{
		ConsecutiveDays: consecutive,
		Reward:          reward,
		Balance:         txn.BalanceAfter,
	}, nil
}

func (s *service) RevealContact(ctx context.Context, viewerID, merchantID uint) (*RevealResult, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	merchant, err := s.merchantRepo.GetByID(merchantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, err
	}

	// Owners see their own contact for free.
	if merchant.UserID == viewerID {
		return &RevealResult{ContactInfo: merchant.ContactInfo}, nil
	}

	today := utcDate(time.Now())
	paid, err := s.activityRepo.HasRevealToday(viewerID, merchantID, today)
	if err != nil {
		return nil, err
	}
	if paid {
		return &RevealResult{ContactInfo: merchant.ContactInfo, AlreadyPaid: true}, nil
	}

	viewer, err := s.userRepo.GetByID(viewerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	viewerCost, merchantDeduct := ContactRevealCharges(settings, false, viewer.IsMerchant())
	ownerID := merchant.UserID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Both sufficient-balance checks happen under the account locks,
		// before either debit. If the merchant cannot cover its deduction the
		// reveal is refused even when the viewer could pay.
		balances, err := s.lockBalances(tx, viewerID, ownerID)
		if err != nil {
			return err
		}
		if balances[viewerID] < viewerCost {
			return domain.New(domain.CodeInsufficientFunds,
				"insufficient points, requires %d", viewerCost)
		}
		if balances[ownerID] < merchantDeduct {
			return domain.New(domain.CodeInsufficientFunds,
				"merchant balance too low for contact reveal")
		}

		if _, err := s.ledger.RecordInTx(tx, ledger.RecordRequest{
			UserID:          viewerID,
			Amount:          -viewerCost,
			Type:            models.TransactionTypeContactReveal,
			Description:     fmt.Sprintf("contact reveal for merchant %s", merchant.BusinessName),
			RelatedUserID:   &ownerID,
			RelatedEntityID: &merchantID,
		}); err != nil {
			return err
		}

		if _, err := s.ledger.RecordInTx(tx, ledger.RecordRequest{
			UserID:          ownerID,
			Amount:          -merchantDeduct,
			Type:            models.TransactionTypeContactExposure,
			Description:     "contact viewed by a buyer",
			RelatedUserID:   &viewerID,
			RelatedEntityID: &merchantID,
		}); err != nil {
			return err
		}

		return s.activityRepo.WithTx(tx).CreateReveal(&models.ContactReveal{
			ViewerID:   viewerID,
			MerchantID: merchantID,
			RevealDate: today,
		})
	})
	if err != nil {
		// A racing reveal by the same viewer won the unique index; the
		// debits rolled back and the earlier payment covers this view.
		if errors.Is(err, repositories.ErrAlreadyRevealed) {
			return &RevealResult{ContactInfo: merchant.ContactInfo, AlreadyPaid: true}, nil
		}
		return nil, err
	}

	s.ledger.InvalidateBalances(ctx, viewerID, ownerID)
	return &RevealResult{
		ContactInfo:    merchant.ContactInfo,
		ViewerCost:     viewerCost,
		MerchantDeduct: merchantDeduct,
	}, nil
}

func (s *service) Refer(ctx context.Context, inviterID, inviteeID uint) (*ReferResult, error) {
	if inviterID == inviteeID {
		return nil, ErrSelfReferral
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	inviterReward, inviteeReward := ReferralRewards(settings)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Unique index on invitee makes the reward exactly-once.
		if err := s.activityRepo.WithTx(tx).CreateReferral(&models.ReferralRecord{
			InviterID: inviterID,
			InviteeID: inviteeID,
		}); err != nil {
			return err
		}

		if _, err := s.ledger.RecordInTx(tx, ledger.RecordRequest{
			UserID:        inviterID,
			Amount:        inviterReward,
			Type:          models.TransactionTypeReferralInviter,
			Description:   "referral reward",
			RelatedUserID: &inviteeID,
		}); err != nil {
			return err
		}

		_, err := s.ledger.RecordInTx(tx, ledger.RecordRequest{
			UserID:        inviteeID,
			Amount:        inviteeReward,
			Type:          models.TransactionTypeReferralInvitee,
			Description:   "welcome reward for joining via referral",
			RelatedUserID: &inviterID,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyReferred) {
			return nil, ErrAlreadyReferred
		}
		return nil, err
	}

	s.ledger.InvalidateBalances(ctx, inviterID, inviteeID)
	return &ReferResult{InviterReward: inviterReward, InviteeReward: inviteeReward}, nil
}

func (s *service) Promote(ctx context.Context, userID uint, days int) (*PromoteResult, error) {
	if days <= 0 {
		return nil, ErrInvalidDays
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	cost := PromotionCost(settings, days)

	merchant, err := s.merchantRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, err
	}

	var topUntil time.Time
	err = s.db.Transaction(func(tx *gorm.DB) error {
		m, err := s.merchantRepo.WithTx(tx).GetForUpdate(merchant.ID)
		if err != nil {
			return err
		}

		balances, err := s.lockBalances(tx, userID)
		if err != nil {
			return err
		}
		if balances[userID] < cost {
			return domain.New(domain.CodeInsufficientFunds,
				"insufficient points, requires %d", cost)
		}

		if _, err := s.ledger.RecordInTx(tx, ledger.RecordRequest{
			UserID:          userID,
			Amount:          -cost,
			Type:            models.TransactionTypePromotion,
			Description:     fmt.Sprintf("listing promotion, %d days", days),
			RelatedEntityID: &m.ID,
			Metadata: map[string]interface{}{
				"days":             days,
				"settings_version": settings.Version,
			},
		}); err != nil {
			return err
		}

		// Stacking: an active promotion is extended from its current expiry,
		// not restarted from now.
		now := time.Now()
		base := now
		if m.Promoted(now) {
			base = *m.TopUntil
		}
		topUntil = base.AddDate(0, 0, days)
		m.TopUntil = &topUntil

		return s.merchantRepo.WithTx(tx).Update(m)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.InvalidateBalances(ctx, userID)
	s.invalidateMerchant(ctx, merchant.ID)
	return &PromoteResult{Cost: cost, TopUntil: topUntil}, nil
}

func (s *service) ClaimDailyDepositReward(ctx context.Context, userID uint) (int64, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	merchant, err := s.merchantRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			return 0, domain.ErrMerchantNotFound
		}
		return 0, err
	}

	reward := settings.DepositDailyReward
	today := utcDate(time.Now())

	err = s.db.Transaction(func(tx *gorm.DB) error {
		m, err := s.merchantRepo.WithTx(tx).GetForUpdate(merchant.ID)
		if err != nil {
			return err
		}
		if !m.IsDepositMerchant || m.DepositStatus != models.DepositStatusPaid {
			return ErrNotDepositPaid
		}
		if m.LastDailyRewardAt != nil && !utcDate(*m.LastDailyRewardAt).Before(today) {
			return ErrRewardClaimed
		}

		if _, err := s.ledger.RecordInTx(tx, ledger.RecordRequest{
			UserID:          userID,
			Amount:          reward,
			Type:            models.TransactionTypeDepositDailyReward,
			Description:     "daily deposit merchant reward",
			RelatedEntityID: &m.ID,
		}); err != nil {
			return err
		}

		now := time.Now()
		m.LastDailyRewardAt = &now
		return s.merchantRepo.WithTx(tx).Update(m)
	})
	if err != nil {
		return 0, err
	}

	s.ledger.InvalidateBalances(ctx, userID)
	s.invalidateMerchant(ctx, merchant.ID)
	return reward, nil
}

// lockBalances takes the account row locks in ascending user ID order so two
// concurrent multi-account operations cannot deadlock, then returns the
// locked balances.
func (s *service) lockBalances(tx *gorm.DB, userIDs ...uint) (map[uint]int64, error) {
	ids := append([]uint(nil), userIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	repo := s.ledgerRepo.WithTx(tx)
	balances := make(map[uint]int64, len(ids))
	for _, id := range ids {
		if _, seen := balances[id]; seen {
			continue
		}
		account, err := repo.GetAccountForUpdate(id)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, err
		}
		balances[id] = account.Balance
	}
	return balances, nil
}

func (s *service) invalidateMerchant(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMerchant(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate merchant cache",
			zap.Uint("merchant_id", id),
			zap.Error(err))
	}
}

// utcDate truncates t to a civil date in UTC, the platform's single reference
// timezone.
func utcDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
