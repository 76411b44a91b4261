package deposit

import (
	"time"

	"vendora/internal/config"

	"github.com/shopspring/decimal"
)

// FeeBreakdown is the refund fee computation frozen into a refund
// application at request time.
type FeeBreakdown struct {
	FeeRate      decimal.Decimal `json:"fee_rate"` // percent
	FeeAmount    decimal.Decimal `json:"fee_amount"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

// ComputeRefundFee computes the refund fee for a deposit paid at paidAt.
// Elapsed time is measured in whole 30-day months in UTC, the single
// reference timezone, so client clock skew never changes the tier. Deposits
// held less than the tier boundary pay the early rate; older ones the late
// rate. The fee is rounded to the currency's minor unit.
func ComputeRefundFee(s config.Settings, amount decimal.Decimal, paidAt, now time.Time) FeeBreakdown {
	days := int(now.UTC().Sub(paidAt.UTC()).Hours() / 24)
	if days < 0 {
		days = 0
	}
	months := days / 30

	rate := s.RefundFeeRateEarly
	if months >= s.RefundFeeTierMonths {
		rate = s.RefundFeeRateLate
	}

	fee := amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	return FeeBreakdown{
		FeeRate:      rate,
		FeeAmount:    fee,
		RefundAmount: amount.Sub(fee),
	}
}

// ComputeViolationSplit splits a violated merchant's deposit between the
// platform and the victim compensation pool.
func ComputeViolationSplit(s config.Settings, amount decimal.Decimal) (platform, victims decimal.Decimal) {
	platform = amount.Mul(s.ViolationPlatformShare).Div(decimal.NewFromInt(100)).Round(2)
	victims = amount.Sub(platform)
	return platform, victims
}
