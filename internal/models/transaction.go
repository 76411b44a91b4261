package models

import (
	"time"
)

// TransactionType is the closed set of business reasons a balance may change.
type TransactionType string

const (
	TransactionTypeRegister           TransactionType = "register"
	TransactionTypeCheckIn            TransactionType = "check_in"
	TransactionTypeContactReveal      TransactionType = "contact_reveal"
	TransactionTypeContactExposure    TransactionType = "contact_exposure"
	TransactionTypeReferralInviter    TransactionType = "referral_inviter"
	TransactionTypeReferralInvitee    TransactionType = "referral_invitee"
	TransactionTypePromotion          TransactionType = "promotion"
	TransactionTypeDepositDailyReward TransactionType = "deposit_daily_reward"
	TransactionTypeDepositBonus       TransactionType = "deposit_bonus"
	TransactionTypeAdminAdjust        TransactionType = "admin_adjust"
)

// Valid reports whether t is a recognized transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeRegister,
		TransactionTypeCheckIn,
		TransactionTypeContactReveal,
		TransactionTypeContactExposure,
		TransactionTypeReferralInviter,
		TransactionTypeReferralInvitee,
		TransactionTypePromotion,
		TransactionTypeDepositDailyReward,
		TransactionTypeDepositBonus,
		TransactionTypeAdminAdjust:
		return true
	}
	return false
}

// PointsTransaction is an immutable, append-only ledger entry. BalanceAfter
// snapshots Account.Balance immediately after this entry was applied, so the
// ledger can be replayed and audited without reference to the account row.
type PointsTransaction struct {
	ID              uint            `gorm:"primarykey"`
	UserID          uint            `gorm:"index;not null"`
	Amount          int64           `gorm:"not null"`
	BalanceAfter    int64           `gorm:"not null"`
	Type            TransactionType `gorm:"type:varchar(40);index;not null"`
	Description     string
	RelatedUserID   *uint
	RelatedEntityID *uint
	Metadata        JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time
}

func (PointsTransaction) TableName() string {
	return "points_transactions"
}
