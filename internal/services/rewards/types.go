package rewards

import (
	"context"
	"time"

	"vendora/internal/config"
)

// SettingsProvider supplies the fee/reward constants snapshot read once per
// logical operation.
type SettingsProvider interface {
	Snapshot(ctx context.Context) (config.Settings, error)
}

// CheckInResult reports the outcome of a daily check-in.
type CheckInResult struct {
	ConsecutiveDays int   `json:"consecutive_days"`
	Reward          int64 `json:"reward"`
	Balance         int64 `json:"balance"`
}

// RevealResult reports the outcome of a contact reveal.
type RevealResult struct {
	ContactInfo    string `json:"contact_info"`
	ViewerCost     int64  `json:"viewer_cost"`
	MerchantDeduct int64  `json:"merchant_deduct"`
	AlreadyPaid    bool   `json:"already_paid"` // free repeat view within the same day
}

// ReferResult reports the credits granted for a referral.
type ReferResult struct {
	InviterReward int64 `json:"inviter_reward"`
	InviteeReward int64 `json:"invitee_reward"`
}

// PromoteResult reports the outcome of buying listing promotion.
type PromoteResult struct {
	Cost     int64     `json:"cost"`
	TopUntil time.Time `json:"top_until"`
}
