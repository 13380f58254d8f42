package database

import "errors"

// Sentinel errors for database operations.
var (
	// ErrNotFound is returned when a requested checkpoint row does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrChainIDMismatch is process-fatal: the stream's reported chain id
	// disagrees with the one recorded on a previous run.
	ErrChainIDMismatch = errors.New("chain id mismatch between stream and stored value")

	// ErrBatchFatal names the batch-fatal class (malformed input such as
	// unparseable event JSON) that fails the whole batch without advancing
	// the checkpoint. The remappers report those errors with fmt.Errorf and
	// do not wrap this sentinel.
	ErrBatchFatal = errors.New("batch-fatal error")
)

// IsTransient classifies a database error as retryable.
// Connection failures and a narrow set of Postgres SQLSTATE classes
// (connection exceptions, serialization/deadlock failures, and the
// "too many connections" admission error) are transient; everything
// else -- constraint violations, syntax errors, data exceptions -- is
// persistent and propagates immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	code, ok := pqErrorCode(err)
	if !ok {
		return true // connection-level failures carry no SQLSTATE
	}
	switch code[:2] {
	case "08": // connection exception
		return true
	case "40": // transaction rollback (serialization failure, deadlock)
		return true
	case "53": // insufficient resources (too many connections, disk full)
		return true
	default:
		return false
	}
}
