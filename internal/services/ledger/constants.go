package ledger

// Default pagination bounds for history reads.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Outbox event types emitted by the ledger.
const (
	EventPointsCredited = "points.credited"
	EventPointsDebited  = "points.debited"
)
