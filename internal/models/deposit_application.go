package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the review state of any admin-mediated application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// DepositApplication is a vendor's request to become a deposit merchant.
// At most one pending application may exist per merchant; the constraint is a
// partial unique index on (merchant_id) WHERE status = 'pending'.
type DepositApplication struct {
	ID              uint            `gorm:"primarykey"`
	MerchantID      uint            `gorm:"index;not null"`
	UserID          uint            `gorm:"not null"`
	DepositAmount   decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	PaymentProofURL string          `gorm:"not null"`
	TransactionHash string
	Status          ApplicationStatus `gorm:"type:varchar(20);default:'pending'"`
	AdminNote       string
	ApprovedBy      *uint
	ApprovedAt      *time.Time
	RejectedReason  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DepositTopUpApplication increases an already-active deposit. TotalAmount is
// precomputed at creation; approval sets Merchant.DepositAmount to it directly
// rather than incrementing again.
type DepositTopUpApplication struct {
	ID              uint            `gorm:"primarykey"`
	MerchantID      uint            `gorm:"index;not null"`
	UserID          uint            `gorm:"not null"`
	OriginalAmount  decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	TopUpAmount     decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	PaymentProofURL string          `gorm:"not null"`
	TransactionHash string
	Status          ApplicationStatus `gorm:"type:varchar(20);default:'pending'"`
	AdminNote       string
	ApprovedBy      *uint
	ApprovedAt      *time.Time
	RejectedReason  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DepositRefundApplication freezes the fee computation made at request time so
// later clock drift never changes an already-submitted request.
type DepositRefundApplication struct {
	ID             uint            `gorm:"primarykey"`
	MerchantID     uint            `gorm:"index;not null"`
	UserID         uint            `gorm:"not null"`
	DepositAmount  decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	DepositPaidAt  time.Time       `gorm:"not null"`
	FeeRate        decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	FeeAmount      decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	RefundAmount   decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Reason         string
	WalletAddress  string            `gorm:"not null"`
	WalletNetwork  string            `gorm:"not null"`
	Status         ApplicationStatus `gorm:"type:varchar(20);default:'pending'"`
	AdminNote      string
	ApprovedBy     *uint
	ApprovedAt     *time.Time
	RejectedReason string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DepositViolation records the split applied when moderation freezes a
// merchant's deposit: the platform retains PlatformShare, VictimShare is
// earmarked for victim compensation and settled off-platform.
type DepositViolation struct {
	ID            uint            `gorm:"primarykey"`
	MerchantID    uint            `gorm:"index;not null"`
	DepositAmount decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	PlatformShare decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	VictimShare   decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Reason        string          `gorm:"not null"`
	CreatedAt     time.Time
}
