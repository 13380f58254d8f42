package models

import "time"

// ProcessorStatus is the live-mode checkpoint, keyed by processor_id.
type ProcessorStatus struct {
	Processor               string
	LastSuccessVersion      int64
	LastUpdated             time.Time
	LastTransactionTimestamp *time.Time
}

// BackfillStatus is the closed set of states a bounded backfill run moves
// through: InProgress until the stream reaches its configured ending
// version, then Complete.
type BackfillStatus string

const (
	BackfillInProgress BackfillStatus = "in_progress"
	BackfillComplete   BackfillStatus = "complete"
)

// BackfillProcessorStatus is the backfill-mode checkpoint, keyed by
// (processor_id, backfill_id).
type BackfillProcessorStatus struct {
	Processor                 string
	BackfillAlias             string
	BackfillStatus            BackfillStatus
	LastSuccessVersion        int64
	LastUpdated               time.Time
	LastTransactionTimestamp  *time.Time
	BackfillStartVersion      int64
	BackfillEndVersion        *int64
}
