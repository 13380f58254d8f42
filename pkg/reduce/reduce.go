// Package reduce implements the reducer: it fuses resource-derived partial
// updates into the event-derived rows and folds the "current" rows down
// to one row per stable key, last-writer-wins.
package reduce

import (
	"sort"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/remap"
)

// Output is the fully reduced, sorted batch ready for the writer.
type Output struct {
	Activities       []*models.Activity
	Listings         []*models.CurrentListing
	TokenOffers      []*models.CurrentTokenOffer
	CollectionOffers []*models.CurrentCollectionOffer
}

// Reducer holds no state: every call is independent, operating only on
// the batch passed in.
type Reducer struct{}

func NewReducer() *Reducer { return &Reducer{} }

// Reduce fuses events.Result with the resource partial-update vector and
// folds the current-table vectors down to one row per key.
func (r *Reducer) Reduce(events *remap.Result, resourceUpdates []remap.Update) *Output {
	updatesByAddress := indexUpdates(resourceUpdates)

	for _, l := range events.Listings {
		mergeListingUpdate(l, updatesByAddress[l.TokenDataID])
	}
	for _, t := range events.TokenOffers {
		mergeTokenOfferUpdate(t, updatesByAddress[t.TokenDataID])
	}
	for _, c := range events.CollectionOffers {
		update, ok := updatesByAddress[c.CollectionOfferID]
		if !ok {
			update, ok = updatesByAddress[c.TokenDataID]
		}
		if ok {
			mergeCollectionOfferUpdate(c, update)
		}
	}

	backfillActivities(events, updatesByAddress)

	out := &Output{
		Activities:       events.Activities,
		Listings:         foldListings(events.Listings),
		TokenOffers:      foldTokenOffers(events.TokenOffers),
		CollectionOffers: foldCollectionOffers(events.CollectionOffers),
	}

	sortActivities(out.Activities)
	sortListings(out.Listings)
	sortTokenOffers(out.TokenOffers)
	sortCollectionOffers(out.CollectionOffers)

	return out
}

// indexUpdates merges every resource write's fields keyed by its
// standardized address; a later write in batch order overwrites an
// earlier one's overlapping columns, matching the "latest resource write
// wins" expectation of a last-writer-wins system.
func indexUpdates(updates []remap.Update) map[string]remap.Update {
	merged := make(map[string]remap.Update, len(updates))
	for _, u := range updates {
		existing, ok := merged[u.Address]
		if !ok {
			merged[u.Address] = u
			continue
		}
		for col, val := range u.Fields {
			existing.Fields[col] = val
		}
		if u.TxnVersion > existing.TxnVersion {
			existing.TxnVersion = u.TxnVersion
		}
		merged[u.Address] = existing
	}
	return merged
}
