// Package remap implements the event and resource remappers: the
// data-driven extractors that turn a raw transaction batch into rows,
// driven entirely by a compiled config.Registry.
package remap

import (
	"encoding/json"
	"fmt"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/identity"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/stream"
)

// EventRemapper is stateless and safe for concurrent use: its only
// dependency is the immutable, shared Registry built at startup.
type EventRemapper struct {
	Registry *config.Registry
}

func NewEventRemapper(reg *config.Registry) *EventRemapper {
	return &EventRemapper{Registry: reg}
}

// Result is everything the event remapper produces for one batch.
type Result struct {
	Activities       []*models.Activity
	Listings         []*models.CurrentListing
	TokenOffers      []*models.CurrentTokenOffer
	CollectionOffers []*models.CurrentCollectionOffer
}

// RemapBatch iterates every user transaction's events in block order and
// emits one Activity (plus, for recognized marketplace actions, an initial
// "current" row) per recognized event. A transaction lacking info the
// stream contract guarantees (HasTxnInfo) is batch-fatal.
func (r *EventRemapper) RemapBatch(batch stream.Batch) (*Result, error) {
	res := &Result{}
	for _, txn := range batch.Transactions {
		if !txn.IsUserTxn {
			continue
		}
		if !txn.HasTxnInfo {
			return nil, fmt.Errorf("remap: transaction %d missing transaction info", txn.Version)
		}
		for idx, ev := range txn.Events {
			activity, listing, tokenOffer, collectionOffer, ok, err := r.remapEvent(txn, int64(idx), ev)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			res.Activities = append(res.Activities, activity)
			if listing != nil {
				res.Listings = append(res.Listings, listing)
			}
			if tokenOffer != nil {
				res.TokenOffers = append(res.TokenOffers, tokenOffer)
			}
			if collectionOffer != nil {
				res.CollectionOffers = append(res.CollectionOffers, collectionOffer)
			}
		}
	}
	return res, nil
}

func (r *EventRemapper) remapEvent(txn stream.Transaction, eventIndex int64, ev stream.Event) (
	*models.Activity, *models.CurrentListing, *models.CurrentTokenOffer, *models.CurrentCollectionOffer, bool, error,
) {
	qt, ok := identity.ParseQualifiedType(ev.TypeStr)
	if !ok {
		return nil, nil, nil, nil, false, nil
	}
	if identity.IsFrameworkEvent(qt) {
		return nil, nil, nil, nil, false, nil
	}

	mapping, ok := r.Registry.Events[qt.String()]
	if !ok {
		return nil, nil, nil, nil, false, nil
	}

	var doc interface{}
	if len(ev.Data) > 0 {
		if err := json.Unmarshal(ev.Data, &doc); err != nil {
			return nil, nil, nil, nil, false, fmt.Errorf("remap: malformed event json at version %d index %d: %w", txn.Version, eventIndex, err)
		}
	}

	activity := &models.Activity{
		TxnVersion:        txn.Version,
		EventIndex:        eventIndex,
		Marketplace:       mapping.Marketplace,
		RawEventType:      ev.TypeStr,
		StandardEventType: mapping.Action,
		ContractAddress:   qt.Address,
		BlockTimestamp:    txn.Timestamp,
		JSONData:          ev.Data,
	}

	var listing *models.CurrentListing
	var tokenOffer *models.CurrentTokenOffer
	var collectionOffer *models.CurrentCollectionOffer

	switch {
	case mapping.Action.IsListing():
		listing = &models.CurrentListing{
			Marketplace:              mapping.Marketplace,
			IsDeleted:                mapping.Action.IsDeleted(),
			ContractAddress:          qt.Address,
			LastTransactionVersion:   txn.Version,
			LastTransactionTimestamp: txn.Timestamp,
			StandardEventType:        mapping.Action,
		}
	case mapping.Action.IsTokenOffer():
		tokenOffer = &models.CurrentTokenOffer{
			Marketplace:              mapping.Marketplace,
			IsDeleted:                mapping.Action.IsDeleted(),
			ContractAddress:          qt.Address,
			LastTransactionVersion:   txn.Version,
			LastTransactionTimestamp: txn.Timestamp,
			StandardEventType:        mapping.Action,
		}
	case mapping.Action.IsCollectionOffer():
		collectionOffer = &models.CurrentCollectionOffer{
			Marketplace:              mapping.Marketplace,
			IsDeleted:                mapping.Action.IsDeleted(),
			ContractAddress:          qt.Address,
			LastTransactionVersion:   txn.Version,
			LastTransactionTimestamp: txn.Timestamp,
			StandardEventType:        mapping.Action,
		}
	}

	// Every configured (path -> targets) pair is extracted once and
	// dispatched to every row whose table it names: a single path commonly
	// feeds both the activity log and its matching current-state row in
	// one pass.
	for _, fm := range mapping.Fields {
		value, ok := fm.Path.Extract(doc)
		if !ok {
			continue
		}
		for _, target := range fm.Targets {
			switch target.Table {
			case models.TableActivities:
				activity.SetField(target.Column, value)
			case models.TableCurrentListings:
				if listing != nil {
					listing.SetField(target.Column, value)
				}
			case models.TableCurrentTokenOffers:
				if tokenOffer != nil {
					tokenOffer.SetField(target.Column, value)
				}
			case models.TableCurrentCollectionOffers:
				if collectionOffer != nil {
					collectionOffer.SetField(target.Column, value)
				}
			}
		}
	}

	resolveDerivedIdentity(activity)
	if listing != nil {
		listing.TokenDataID = activity.TokenDataID
		listing.CollectionID = orDefault(listing.CollectionID, activity.CollectionID)
	}
	if tokenOffer != nil {
		tokenOffer.TokenDataID = activity.TokenDataID
		tokenOffer.CollectionID = orDefault(tokenOffer.CollectionID, activity.CollectionID)
	}
	if collectionOffer != nil {
		collectionOffer.CollectionOfferID = offerIDOrCollectionID(collectionOffer, activity)
		collectionOffer.TokenDataID = activity.TokenDataID
		collectionOffer.CollectionID = orDefault(collectionOffer.CollectionID, activity.CollectionID)
	}

	return activity, listing, tokenOffer, collectionOffer, true, nil
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// offerIDOrCollectionID resolves a collection offer's primary-key
// fragment: marketplaces configure either an explicit collection_offer_id or leave
// the indexer to key purely by collection, so fall back to collection_id
// rather than persist a row with an empty key fragment.
func offerIDOrCollectionID(co *models.CurrentCollectionOffer, a *models.Activity) string {
	if co.CollectionOfferID != "" {
		return co.CollectionOfferID
	}
	if a.CollectionID != "" {
		return a.CollectionID
	}
	return co.CollectionID
}
