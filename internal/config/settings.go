package config

import (
	"github.com/shopspring/decimal"
)

// Settings is an immutable snapshot of the platform's fee and reward
// constants. One snapshot is read per logical operation and passed explicitly
// to the rules engine and fee calculator; changes to the stored settings only
// apply to operations started after the change.
type Settings struct {
	Version int

	RegistrationBonus   int64
	CheckInBase         int64
	CheckInWeeklyBonus  int64
	CheckInMonthlyBonus int64

	ContactRevealCustomerCost   int64
	ContactRevealMerchantCost   int64
	ContactRevealMerchantDeduct int64

	ReferralInviterReward int64
	ReferralInviteeReward int64

	PromotionCostPerDay int64

	DepositDailyReward   int64
	DepositApprovalBonus int64

	// Percent rates.
	RefundFeeRateEarly  decimal.Decimal
	RefundFeeRateLate   decimal.Decimal
	RefundFeeTierMonths int

	ViolationPlatformShare decimal.Decimal
}

// DefaultSettings returns the settings used to seed a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		Version:                     1,
		RegistrationBonus:           100,
		CheckInBase:                 5,
		CheckInWeeklyBonus:          20,
		CheckInMonthlyBonus:         100,
		ContactRevealCustomerCost:   10,
		ContactRevealMerchantCost:   20,
		ContactRevealMerchantDeduct: 5,
		ReferralInviterReward:       50,
		ReferralInviteeReward:       30,
		PromotionCostPerDay:         100,
		DepositDailyReward:          10,
		DepositApprovalBonus:        500,
		RefundFeeRateEarly:          decimal.NewFromInt(30),
		RefundFeeRateLate:           decimal.NewFromInt(15),
		RefundFeeTierMonths:         3,
		ViolationPlatformShare:      decimal.NewFromInt(30),
	}
}
