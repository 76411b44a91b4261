package ledger

import (
	"vendora/internal/models"
)

// RecordRequest describes one balance mutation.
type RecordRequest struct {
	UserID          uint
	Amount          int64 // signed, non-zero
	Type            models.TransactionType
	Description     string
	RelatedUserID   *uint
	RelatedEntityID *uint
	Metadata        map[string]interface{}
}

// RecordResult is what handlers expose to callers after a successful record.
type RecordResult struct {
	TransactionID uint  `json:"transaction_id"`
	BalanceAfter  int64 `json:"balance_after"`
}
