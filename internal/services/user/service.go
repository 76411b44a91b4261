// Package user handles registration: creating the user row, its points
// account, the registration bonus, and the optional referral credit in one
// transaction.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vendora/internal/config"
	domain "vendora/internal/errors"
	"vendora/internal/models"
	"vendora/internal/repositories"
	"vendora/internal/services/ledger"
	"vendora/internal/services/rewards"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email is already registered")

// TxRunner runs a unit of work in one database transaction. *gorm.DB
// satisfies it.
type TxRunner interface {
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// SettingsProvider supplies the reward constants snapshot.
type SettingsProvider interface {
	Snapshot(ctx context.Context) (config.Settings, error)
}

type RegisterRequest struct {
	Email      string
	Password   string
	Name       string
	UserType   string // customer or merchant
	InviteCode string // optional referral
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
}

type service struct {
	db         TxRunner
	userRepo   repositories.UserRepository
	ledger     ledger.Service
	ledgerRepo repositories.LedgerRepository
	activity   repositories.ActivityRepository
	settings   SettingsProvider
}

func NewService(
	db TxRunner,
	userRepo repositories.UserRepository,
	ledgerSvc ledger.Service,
	ledgerRepo repositories.LedgerRepository,
	activity repositories.ActivityRepository,
	settings SettingsProvider,
) Service {
	return &service{
		db:         db,
		userRepo:   userRepo,
		ledger:     ledgerSvc,
		ledgerRepo: ledgerRepo,
		activity:   activity,
		settings:   settings,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.Name == "" {
		return nil, domain.Validation("email, password and name are required")
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	var inviter *models.User
	if req.InviteCode != "" {
		var err error
		inviter, err = s.userRepo.GetByInviteCode(req.InviteCode)
		if err != nil {
			return nil, domain.Validation("unknown invite code")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	userType := req.UserType
	if userType == "" {
		userType = "customer"
	}

	user := &models.User{
		Email:      email,
		Password:   string(hash),
		Name:       req.Name,
		UserType:   userType,
		InviteCode: uuid.NewString()[:8],
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(user); err != nil {
			return err
		}
		if err := s.ledgerRepo.WithTx(tx).CreateAccount(&models.Account{UserID: user.ID}); err != nil {
			return err
		}

		if settings.RegistrationBonus > 0 {
			if _, err := s.ledger.RecordInTx(tx, ledger.RecordRequest{
				UserID:      user.ID,
				Amount:      settings.RegistrationBonus,
				Type:        models.TransactionTypeRegister,
				Description: "registration bonus",
			}); err != nil {
				return err
			}
		}

		if inviter == nil {
			return nil
		}

		// Referral rewards, exactly once per invitee.
		if err := s.activity.WithTx(tx).CreateReferral(&models.ReferralRecord{
			InviterID: inviter.ID,
			InviteeID: user.ID,
		}); err != nil {
			return err
		}
		inviterReward, inviteeReward := rewards.ReferralRewards(settings)
		inviterID, inviteeID := inviter.ID, user.ID
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
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			// The unique index is what actually enforces this; the earlier
			// lookup only gives a friendlier fast path.
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.ledger.InvalidateBalances(ctx, affectedUsers(user, inviter)...)
	return user, nil
}

func affectedUsers(user *models.User, inviter *models.User) []uint {
	ids := []uint{user.ID}
	if inviter != nil {
		ids = append(ids, inviter.ID)
	}
	return ids
}
