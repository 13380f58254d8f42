package remap

import (
	"encoding/json"
	"fmt"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/identity"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/stream"
)

// ResourceRemapper consumes write-set changes instead of events. It
// produces no Activity rows of its own: its output only enriches rows the
// EventRemapper already produced, via the Reducer's fusion step.
type ResourceRemapper struct {
	Registry *config.Registry
}

func NewResourceRemapper(reg *config.Registry) *ResourceRemapper {
	return &ResourceRemapper{Registry: reg}
}

// Update is one resource write's extracted field set, keyed by the
// resource's standardized address and carrying the transaction version it
// was observed at (needed by the reducer to match it back to an activity
// within the same batch).
type Update struct {
	Address    string
	TxnVersion int64
	Fields     map[models.Column]string
}

// RemapBatch extracts a partial-update map from every resource write whose
// full type string matches a configured resource.
func (r *ResourceRemapper) RemapBatch(batch stream.Batch) ([]Update, error) {
	var updates []Update
	for _, txn := range batch.Transactions {
		for _, change := range txn.Changes {
			mapping, ok := r.Registry.Resources[change.TypeStr]
			if !ok {
				continue
			}

			var doc interface{}
			if len(change.Data) > 0 {
				if err := json.Unmarshal(change.Data, &doc); err != nil {
					return nil, fmt.Errorf("remap: malformed resource json at version %d address %s: %w", txn.Version, change.Address, err)
				}
			}

			fields := make(map[models.Column]string)
			for _, fm := range mapping.Fields {
				value, ok := fm.Path.Extract(doc)
				if !ok {
					continue
				}
				for _, target := range fm.Targets {
					fields[target.Column] = value
				}
			}
			if len(fields) == 0 {
				continue
			}
			updates = append(updates, Update{
				Address:    identity.StandardizeAddress(change.Address),
				TxnVersion: txn.Version,
				Fields:     fields,
			})
		}
	}
	return updates, nil
}
