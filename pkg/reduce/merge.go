package reduce

import (
	"strconv"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/remap"
)

// mergeListingUpdate fills in only the fields the event-derived row left
// absent or empty: a resource write enriches a row, it never clobbers a
// value the event itself already supplied.
func mergeListingUpdate(l *models.CurrentListing, update remap.Update) {
	for col, val := range update.Fields {
		switch col {
		case models.ColPrice:
			if l.Price == 0 {
				l.SetField(col, val)
			}
		case models.ColTokenAmount:
			if l.TokenAmount == nil {
				l.SetField(col, val)
			}
		case models.ColSeller:
			if l.Seller == "" {
				l.SetField(col, val)
			}
		case models.ColTokenName:
			if l.TokenName == "" {
				l.SetField(col, val)
			}
		case models.ColListingID:
			if l.ListingID == "" {
				l.SetField(col, val)
			}
		case models.ColCollectionID:
			if l.CollectionID == "" {
				l.SetField(col, val)
			}
		case models.ColContractAddress:
			if l.ContractAddress == "" {
				l.SetField(col, val)
			}
		}
	}
}

func mergeTokenOfferUpdate(t *models.CurrentTokenOffer, update remap.Update) {
	for col, val := range update.Fields {
		switch col {
		case models.ColPrice:
			if t.Price == 0 {
				t.SetField(col, val)
			}
		case models.ColTokenAmount:
			if t.TokenAmount == nil {
				t.SetField(col, val)
			}
		case models.ColTokenName:
			if t.TokenName == "" {
				t.SetField(col, val)
			}
		case models.ColOfferID:
			if t.OfferID == "" {
				t.SetField(col, val)
			}
		case models.ColCollectionID:
			if t.CollectionID == "" {
				t.SetField(col, val)
			}
		case models.ColContractAddress:
			if t.ContractAddress == "" {
				t.SetField(col, val)
			}
		case models.ColExpirationTime:
			if t.ExpirationTime == nil {
				t.SetField(col, val)
			}
		case models.ColBidKey:
			if t.BidKey == nil {
				t.SetField(col, val)
			}
		}
	}
}

func mergeCollectionOfferUpdate(c *models.CurrentCollectionOffer, update remap.Update) {
	for col, val := range update.Fields {
		switch col {
		case models.ColPrice:
			if c.Price == 0 {
				c.SetField(col, val)
			}
		case models.ColRemainingAmount:
			if c.RemainingTokenAmount == nil {
				c.SetField(col, val)
			}
		case models.ColBuyer:
			if c.Buyer == "" {
				c.SetField(col, val)
			}
		case models.ColCollectionID:
			if c.CollectionID == "" {
				c.SetField(col, val)
			}
		case models.ColContractAddress:
			if c.ContractAddress == "" {
				c.SetField(col, val)
			}
		case models.ColExpirationTime:
			if c.ExpirationTime == nil {
				c.SetField(col, val)
			}
		case models.ColBidKey:
			if c.BidKey == nil {
				c.SetField(col, val)
			}
		}
	}
}

// backfillActivities locates, for every current-table row that received a
// resource-derived update, the activity sharing its txn_version and
// discriminator, and applies the same update there. This is what lets a
// PlaceListing event missing `price` end up with a populated price in the
// permanent activity log once the matching resource write is folded in.
func backfillActivities(events *remap.Result, updatesByAddress map[string]remap.Update) {
	byVersionAndKey := make(map[string]*models.Activity, len(events.Activities))
	for _, a := range events.Activities {
		if a.TokenDataID != "" {
			byVersionAndKey[activityKey(a.TxnVersion, a.TokenDataID)] = a
		}
		if a.OfferID != "" {
			byVersionAndKey[activityKey(a.TxnVersion, a.OfferID)] = a
		}
		if a.CollectionID != "" {
			byVersionAndKey[activityKey(a.TxnVersion, a.CollectionID)] = a
		}
	}

	apply := func(txnVersion int64, discriminator string, update remap.Update) {
		a, ok := byVersionAndKey[activityKey(txnVersion, discriminator)]
		if !ok {
			return
		}
		mergeActivityUpdate(a, update)
	}

	for _, l := range events.Listings {
		if update, ok := updatesByAddress[l.TokenDataID]; ok {
			apply(l.LastTransactionVersion, l.TokenDataID, update)
		}
	}
	for _, t := range events.TokenOffers {
		if update, ok := updatesByAddress[t.TokenDataID]; ok {
			apply(t.LastTransactionVersion, t.TokenDataID, update)
		}
	}
	for _, c := range events.CollectionOffers {
		update, ok := updatesByAddress[c.CollectionOfferID]
		if !ok {
			update, ok = updatesByAddress[c.TokenDataID]
		}
		if ok {
			apply(c.LastTransactionVersion, c.CollectionOfferID, update)
		}
	}
}

func activityKey(txnVersion int64, discriminator string) string {
	return discriminator + "@" + strconv.FormatInt(txnVersion, 10)
}

func mergeActivityUpdate(a *models.Activity, update remap.Update) {
	for col, val := range update.Fields {
		switch col {
		case models.ColPrice:
			if a.Price == 0 {
				a.SetField(col, val)
			}
		case models.ColTokenAmount:
			if a.TokenAmount == nil {
				a.SetField(col, val)
			}
		case models.ColSeller:
			if a.Seller == "" {
				a.SetField(col, val)
			}
		case models.ColBuyer:
			if a.Buyer == "" {
				a.SetField(col, val)
			}
		case models.ColTokenName:
			if a.TokenName == "" {
				a.SetField(col, val)
			}
		case models.ColListingID:
			if a.ListingID == "" {
				a.SetField(col, val)
			}
		case models.ColOfferID:
			if a.OfferID == "" {
				a.SetField(col, val)
			}
		case models.ColCollectionID:
			if a.CollectionID == "" {
				a.SetField(col, val)
			}
		case models.ColContractAddress:
			if a.ContractAddress == "" {
				a.SetField(col, val)
			}
		case models.ColExpirationTime:
			if a.ExpirationTime == nil {
				a.SetField(col, val)
			}
		case models.ColBidKey:
			if a.BidKey == nil {
				a.SetField(col, val)
			}
		}
	}
}
