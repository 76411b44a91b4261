package rewards

import (
	"vendora/internal/config"
)

// The rules engine: pure functions from a settings snapshot and event context
// to signed point amounts. No clock, no storage, no side effects.

// CheckInReward returns the credit for a check-in at the given streak length.
// The weekly and monthly bonuses trigger on independent moduli and are
// additive: a day divisible by both 7 and 30 earns both bonuses on top of the
// base reward.
func CheckInReward(s config.Settings, consecutiveDays int) int64 {
	reward := s.CheckInBase
	if consecutiveDays > 0 && consecutiveDays%7 == 0 {
		reward += s.CheckInWeeklyBonus
	}
	if consecutiveDays > 0 && consecutiveDays%30 == 0 {
		reward += s.CheckInMonthlyBonus
	}
	return reward
}

// ContactRevealCharges returns what the viewer pays and what the viewed
// merchant's owner is deducted for one contact reveal. Owners view their own
// listing for free; merchants viewing other listings pay the merchant rate.
func ContactRevealCharges(s config.Settings, viewerIsOwner, viewerIsMerchant bool) (viewerCost, merchantDeduct int64) {
	if viewerIsOwner {
		return 0, 0
	}
	if viewerIsMerchant {
		viewerCost = s.ContactRevealMerchantCost
	} else {
		viewerCost = s.ContactRevealCustomerCost
	}
	return viewerCost, s.ContactRevealMerchantDeduct
}

// ReferralRewards returns the flat credits for a successful referral,
// granted exactly once per invitee.
func ReferralRewards(s config.Settings) (inviter, invitee int64) {
	return s.ReferralInviterReward, s.ReferralInviteeReward
}

// PromotionCost returns the points cost of promoting a listing for the given
// number of days.
func PromotionCost(s config.Settings, days int) int64 {
	return int64(days) * s.PromotionCostPerDay
}
