package ledger

import "time"

// MetricsCollector defines the interface for collecting ledger metrics.
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordTransaction(txType string, amount int64)
	RecordBalanceChange(userID uint, oldBalance, newBalance int64)
	RecordError(operation, errType string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordTransaction(string, int64)               {}
func (n *NoopMetricsCollector) RecordBalanceChange(uint, int64, int64)        {}
func (n *NoopMetricsCollector) RecordError(string, string)                    {}
