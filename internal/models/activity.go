package models

import (
	"time"
)

// CheckInRecord tracks a user's daily check-in streak. The unique index on
// (user_id, check_in_date) makes a second check-in on the same day a
// duplicate-key insert rather than a check-then-act race.
type CheckInRecord struct {
	ID              uint      `gorm:"primarykey"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_checkin_user_date"`
	CheckInDate     time.Time `gorm:"type:date;not null;uniqueIndex:idx_checkin_user_date"`
	ConsecutiveDays int       `gorm:"not null;default:1"`
	CreatedAt       time.Time
}

// ReferralRecord enforces the exactly-once referral reward: the unique index
// on invitee_id means a user can only ever be referred once.
type ReferralRecord struct {
	ID        uint `gorm:"primarykey"`
	InviterID uint `gorm:"index;not null"`
	InviteeID uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// ContactReveal records a paid contact view. Repeat views by the same viewer
// on the same day are free, keyed by (viewer_id, merchant_id, reveal_date).
type ContactReveal struct {
	ID         uint      `gorm:"primarykey"`
	ViewerID   uint      `gorm:"not null;uniqueIndex:idx_reveal_viewer_merchant_date"`
	MerchantID uint      `gorm:"not null;uniqueIndex:idx_reveal_viewer_merchant_date"`
	RevealDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_reveal_viewer_merchant_date"`
	CreatedAt  time.Time
}
