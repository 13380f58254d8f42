package stream

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// fixtureBatch is the on-disk JSON shape for a testing-mode fixture file: a
// hand-authored slice of batches that stands in for the real upstream
// transaction stream.
type fixtureBatch struct {
	Transactions []fixtureTransaction `json:"transactions"`
	StartVersion int64                `json:"start_version"`
	EndVersion   int64                `json:"end_version"`
	EndTimestamp time.Time            `json:"end_timestamp"`
	ChainID      uint64               `json:"chain_id"`
}

type fixtureTransaction struct {
	Version     int64            `json:"version"`
	BlockHeight int64            `json:"block_height"`
	Timestamp   time.Time        `json:"timestamp"`
	Events      []fixtureEvent   `json:"events"`
	Changes     []fixtureChange  `json:"changes"`
	IsUserTxn   bool             `json:"is_user_txn"`
	HasTxnInfo  bool             `json:"has_txn_info"`
}

type fixtureEvent struct {
	TypeStr        string          `json:"type"`
	Data           json.RawMessage `json:"data"`
	AccountAddress string          `json:"account_address"`
	SequenceNumber uint64          `json:"sequence_number"`
	CreationNumber uint64          `json:"creation_number"`
}

type fixtureChange struct {
	Address string          `json:"address"`
	TypeStr string          `json:"type"`
	Data    json.RawMessage `json:"data"`
}

// LoadFixture reads a testing-mode fixture file and converts it into the
// batches a FakeClient replays. It exists for the testing processor mode:
// the real transaction stream client is an external dependency with
// a fixed wire contract outside this repo's scope.
func LoadFixture(path string) ([]Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stream: read fixture %s: %w", path, err)
	}

	var fixtures []fixtureBatch
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("stream: parse fixture %s: %w", path, err)
	}

	batches := make([]Batch, 0, len(fixtures))
	for _, fb := range fixtures {
		txns := make([]Transaction, 0, len(fb.Transactions))
		for _, ft := range fb.Transactions {
			events := make([]Event, 0, len(ft.Events))
			for _, fe := range ft.Events {
				events = append(events, Event{
					TypeStr:        fe.TypeStr,
					Data:           []byte(fe.Data),
					Key:            EventKey{AccountAddress: fe.AccountAddress},
					SequenceNumber: fe.SequenceNumber,
					CreationNumber: fe.CreationNumber,
				})
			}
			changes := make([]WriteSetChange, 0, len(ft.Changes))
			for _, fc := range ft.Changes {
				changes = append(changes, WriteSetChange{
					Address: fc.Address,
					TypeStr: fc.TypeStr,
					Data:    []byte(fc.Data),
				})
			}
			txns = append(txns, Transaction{
				Version:     ft.Version,
				BlockHeight: ft.BlockHeight,
				Timestamp:   ft.Timestamp,
				Events:      events,
				Changes:     changes,
				IsUserTxn:   ft.IsUserTxn,
				HasTxnInfo:  ft.HasTxnInfo,
			})
		}
		batches = append(batches, Batch{
			Transactions: txns,
			StartVersion: fb.StartVersion,
			EndVersion:   fb.EndVersion,
			EndTimestamp: fb.EndTimestamp,
			ChainID:      fb.ChainID,
		})
	}
	return batches, nil
}
