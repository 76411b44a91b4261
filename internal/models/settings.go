package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformSettings is the single configuration row holding fee and reward
// constants. Version increases on every admin edit; a consistent snapshot of
// one version is read per logical operation (never a live global).
type PlatformSettings struct {
	ID      uint `gorm:"primarykey"`
	Version int  `gorm:"not null;default:1"`

	RegistrationBonus   int64 `gorm:"not null;default:100"`
	CheckInBase         int64 `gorm:"not null;default:5"`
	CheckInWeeklyBonus  int64 `gorm:"not null;default:20"`
	CheckInMonthlyBonus int64 `gorm:"not null;default:100"`

	ContactRevealCustomerCost   int64 `gorm:"not null;default:10"`
	ContactRevealMerchantCost   int64 `gorm:"not null;default:20"`
	ContactRevealMerchantDeduct int64 `gorm:"not null;default:5"`

	ReferralInviterReward int64 `gorm:"not null;default:50"`
	ReferralInviteeReward int64 `gorm:"not null;default:30"`

	PromotionCostPerDay int64 `gorm:"not null;default:100"`

	DepositDailyReward   int64 `gorm:"not null;default:10"`
	DepositApprovalBonus int64 `gorm:"not null;default:500"`

	// Refund fee tiers, expressed in percent of the deposit amount.
	RefundFeeRateEarly  decimal.Decimal `gorm:"type:numeric(5,2);default:30"`
	RefundFeeRateLate   decimal.Decimal `gorm:"type:numeric(5,2);default:15"`
	RefundFeeTierMonths int             `gorm:"not null;default:3"`

	// Share of the deposit retained by the platform on violation, in percent;
	// the remainder is earmarked for victim compensation.
	ViolationPlatformShare decimal.Decimal `gorm:"type:numeric(5,2);default:30"`

	UpdatedAt time.Time
}
