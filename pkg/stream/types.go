// Package stream defines the upstream transaction-stream contract: an
// ordered, at-least-once sequence of committed-transaction batches, and
// the client that produces them.
package stream

import "time"

// EventKey identifies the emitting account of an on-chain event.
type EventKey struct {
	AccountAddress string
}

// Event is one entry in a transaction's event list.
type Event struct {
	TypeStr        string
	Data           []byte // raw JSON
	Key            EventKey
	SequenceNumber uint64
	CreationNumber uint64
}

// WriteSetChange is one resource write recorded by a transaction.
type WriteSetChange struct {
	Address  string
	TypeStr  string
	Data     []byte // raw JSON
}

// Transaction is one committed transaction; IsUserTxn marks the
// user-initiated ones, the only ones the event remapper reads.
type Transaction struct {
	Version         int64
	BlockHeight     int64
	Timestamp       time.Time
	Events          []Event
	Changes         []WriteSetChange
	IsUserTxn       bool
	HasTxnInfo      bool
}

// Batch is a bounded, strictly-increasing-version slice of the stream,
// carrying the metadata the version tracker persists as a checkpoint.
type Batch struct {
	Transactions []Transaction
	StartVersion int64
	EndVersion   int64
	EndTimestamp time.Time
	ChainID      uint64
}
