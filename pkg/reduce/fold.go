package reduce

import (
	"sort"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// foldListings folds rows down to one per (marketplace, token_data_id),
// a later event index within the batch replacing an earlier one sharing
// the same key.
func foldListings(rows []*models.CurrentListing) []*models.CurrentListing {
	byKey := make(map[string]*models.CurrentListing, len(rows))
	order := make([]string, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = r
	}
	out := make([]*models.CurrentListing, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func foldTokenOffers(rows []*models.CurrentTokenOffer) []*models.CurrentTokenOffer {
	byKey := make(map[string]*models.CurrentTokenOffer, len(rows))
	order := make([]string, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = r
	}
	out := make([]*models.CurrentTokenOffer, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func foldCollectionOffers(rows []*models.CurrentCollectionOffer) []*models.CurrentCollectionOffer {
	byKey := make(map[string]*models.CurrentCollectionOffer, len(rows))
	order := make([]string, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = r
	}
	out := make([]*models.CurrentCollectionOffer, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// sortActivities enforces the ordering guarantee: within one batch,
// activities are sorted by (txn_version, event_index) before write.
func sortActivities(rows []*models.Activity) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TxnVersion != rows[j].TxnVersion {
			return rows[i].TxnVersion < rows[j].TxnVersion
		}
		return rows[i].EventIndex < rows[j].EventIndex
	})
}

// sortListings, sortTokenOffers, sortCollectionOffers sort by primary key
// so the writer's chunked upserts touch rows in a stable order across
// concurrent processors, avoiding cross-chunk deadlocks.
func sortListings(rows []*models.CurrentListing) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key() < rows[j].Key() })
}

func sortTokenOffers(rows []*models.CurrentTokenOffer) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key() < rows[j].Key() })
}

func sortCollectionOffers(rows []*models.CurrentCollectionOffer) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key() < rows[j].Key() })
}
