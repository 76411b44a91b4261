package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus is the escrow state of a merchant's refundable deposit.
type DepositStatus string

const (
	DepositStatusUnpaid          DepositStatus = "unpaid"
	DepositStatusPaid            DepositStatus = "paid"
	DepositStatusRefundRequested DepositStatus = "refund_requested"
	DepositStatusRefunded        DepositStatus = "refunded"
	DepositStatusViolated        DepositStatus = "violated"
)

func (s DepositStatus) Valid() bool {
	switch s {
	case DepositStatusUnpaid, DepositStatusPaid, DepositStatusRefundRequested,
		DepositStatusRefunded, DepositStatusViolated:
		return true
	}
	return false
}

type Merchant struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"uniqueIndex;not null"`
	BusinessName string `gorm:"not null"`
	BusinessType string
	Status       string `gorm:"default:'active'"`
	ContactInfo  string

	// Deposit escrow fields. DepositAmount is money, not points, and is only
	// mutated through approved deposit applications.
	IsDepositMerchant   bool            `gorm:"default:false"`
	DepositAmount       decimal.Decimal `gorm:"type:numeric(20,2);default:0"`
	DepositStatus       DepositStatus   `gorm:"type:varchar(20);default:'unpaid'"`
	DepositPaidAt       *time.Time
	DepositBonusClaimed bool `gorm:"default:false"`
	LastDailyRewardAt   *time.Time

	// Promotion ("top" listing) expiry. Buying more days while still promoted
	// extends this timestamp instead of restarting it.
	TopUntil *time.Time

	Metadata  JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Promoted reports whether the merchant's listing promotion is still active.
func (m *Merchant) Promoted(now time.Time) bool {
	return m.TopUntil != nil && m.TopUntil.After(now)
}
