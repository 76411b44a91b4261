package deposit

import (
	"context"

	"vendora/internal/config"

	"github.com/shopspring/decimal"
)

// SettingsProvider supplies the fee constants snapshot read once per
// logical operation.
type SettingsProvider interface {
	Snapshot(ctx context.Context) (config.Settings, error)
}

// Decision is an admin review outcome.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// ApplyRequest is a vendor's deposit application input.
type ApplyRequest struct {
	UserID          uint
	Amount          decimal.Decimal
	PaymentProofURL string
	TransactionHash string
}

// TopUpRequest increases an active deposit.
type TopUpRequest struct {
	UserID          uint
	TopUpAmount     decimal.Decimal
	PaymentProofURL string
	TransactionHash string
}

// RefundRequest asks for the deposit back, minus the time-tiered fee.
type RefundRequest struct {
	UserID        uint
	Reason        string
	WalletAddress string
	WalletNetwork string
}

// ReviewRequest is an admin decision on a pending application.
type ReviewRequest struct {
	ApplicationID uint
	AdminID       uint
	Decision      Decision
	Note          string
}
