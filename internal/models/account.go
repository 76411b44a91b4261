package models

import (
	"time"

	"gorm.io/gorm"
)

// Account holds a user's current points balance. It is mutated exclusively
// through the ledger service; every change is backed by a PointsTransaction row.
type Account struct {
	ID        uint  `gorm:"primarykey"`
	UserID    uint  `gorm:"uniqueIndex;not null"`
	Balance   int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	// New accounts always start empty; the registration bonus arrives as a
	// ledger transaction, never as an initial balance.
	a.Balance = 0
	return nil
}
