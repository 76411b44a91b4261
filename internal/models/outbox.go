package models

import (
	"time"
)

// Outbox event statuses.
const (
	OutboxStatusPending    = "pending"
	OutboxStatusProcessing = "processing"
	OutboxStatusDelivered  = "delivered"
	OutboxStatusFailed     = "failed"
)

// NotificationEvent is an outbox row. It is inserted in the same database
// transaction as the state change it describes, then delivered asynchronously
// at-least-once; a delivery failure never rolls back the originating change.
type NotificationEvent struct {
	ID            uint   `gorm:"primarykey"`
	EventID       string `gorm:"uniqueIndex;not null"` // uuid, stable across redeliveries
	Type          string `gorm:"index;not null"`
	UserID        uint   `gorm:"index;not null"`
	RelatedUserID *uint
	Summary       string `gorm:"not null"`
	Payload       JSON   `gorm:"type:jsonb"`
	Status        string `gorm:"type:varchar(20);index;default:'pending'"`
	Attempts      int    `gorm:"not null;default:0"`
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeliveredAt   *time.Time
}
