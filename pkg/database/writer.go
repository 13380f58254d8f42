package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// ChunkSize is the suggested upsert batch size.
const ChunkSize = 200

// Writer executes the ordered, chunked upserts against the four persisted
// tables. It shares its connection pool with the version tracker.
type Writer struct {
	client *Client
}

func NewWriter(client *Client) *Writer {
	return &Writer{client: client}
}

// WriteBatch upserts every vector in a reduced batch, in the fixed order
// activities -> listings -> token offers -> collection offers. Vectors
// arrive pre-sorted by primary key from the reducer.
func (w *Writer) WriteBatch(ctx context.Context, activities []*models.Activity, listings []*models.CurrentListing, tokenOffers []*models.CurrentTokenOffer, collectionOffers []*models.CurrentCollectionOffer) error {
	if err := w.backfillMissingListingIDs(ctx, activities, listings); err != nil {
		return err
	}
	if err := w.writeActivities(ctx, activities); err != nil {
		return err
	}
	if err := w.writeListings(ctx, listings); err != nil {
		return err
	}
	if err := w.writeTokenOffers(ctx, tokenOffers); err != nil {
		return err
	}
	if err := w.writeCollectionOffers(ctx, collectionOffers); err != nil {
		return err
	}
	return nil
}

func (w *Writer) writeActivities(ctx context.Context, rows []*models.Activity) error {
	return chunkedEach(rows, ChunkSize, func(chunk []*models.Activity) error {
		if len(chunk) == 0 {
			return nil
		}
		return withRetry(ctx, func() error { return w.insertActivitiesChunk(ctx, chunk) })
	})
}

func (w *Writer) insertActivitiesChunk(ctx context.Context, rows []*models.Activity) error {
	const cols = 21
	var sb strings.Builder
	sb.WriteString(`INSERT INTO nft_marketplace_activities (
		txn_version, index, marketplace, raw_event_type, standard_event_type,
		creator_address, collection_id, collection_name, token_data_id, token_name,
		price, token_amount, buyer, seller, listing_id, offer_id, json_data,
		contract_address, block_timestamp, expiration_time, bid_key
	) VALUES `)

	args := make([]interface{}, 0, len(rows)*cols)
	for i, a := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		writePlaceholderGroup(&sb, i*cols, cols)
		args = append(args,
			a.TxnVersion, a.EventIndex, a.Marketplace, a.RawEventType, string(a.StandardEventType),
			nullString(a.CreatorAddress), nullString(a.CollectionID), nullString(a.CollectionName), nullString(a.TokenDataID), nullString(a.TokenName),
			a.Price, a.TokenAmount, nullString(a.Buyer), nullString(a.Seller), nullString(a.ListingID), nullString(a.OfferID), a.JSONData,
			a.ContractAddress, a.BlockTimestamp, a.ExpirationTime, a.BidKey,
		)
	}
	sb.WriteString(" ON CONFLICT (txn_version, index, marketplace) DO NOTHING")

	_, err := w.client.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (w *Writer) writeListings(ctx context.Context, rows []*models.CurrentListing) error {
	return chunkedEach(rows, ChunkSize, func(chunk []*models.CurrentListing) error {
		if len(chunk) == 0 {
			return nil
		}
		return withRetry(ctx, func() error { return w.upsertListingsChunk(ctx, chunk) })
	})
}

func (w *Writer) upsertListingsChunk(ctx context.Context, rows []*models.CurrentListing) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO current_nft_marketplace_listings (
		token_data_id, marketplace, listing_id, collection_id, seller, price,
		token_amount, token_name, is_deleted, contract_address,
		last_transaction_version, last_transaction_timestamp, standard_event_type
	) VALUES `)

	args := make([]interface{}, 0, len(rows)*13)
	for i, l := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		writePlaceholderGroup(&sb, i*13, 13)
		args = append(args,
			l.TokenDataID, l.Marketplace, nullString(l.ListingID), nullString(l.CollectionID), nullString(l.Seller), l.Price,
			l.TokenAmount, nullString(l.TokenName), l.IsDeleted, l.ContractAddress,
			l.LastTransactionVersion, l.LastTransactionTimestamp, string(l.StandardEventType),
		)
	}
	sb.WriteString(` ON CONFLICT (token_data_id, marketplace) DO UPDATE SET
		listing_id = EXCLUDED.listing_id,
		collection_id = EXCLUDED.collection_id,
		seller = EXCLUDED.seller,
		price = EXCLUDED.price,
		token_amount = EXCLUDED.token_amount,
		token_name = EXCLUDED.token_name,
		is_deleted = EXCLUDED.is_deleted,
		contract_address = EXCLUDED.contract_address,
		last_transaction_version = EXCLUDED.last_transaction_version,
		last_transaction_timestamp = EXCLUDED.last_transaction_timestamp,
		standard_event_type = EXCLUDED.standard_event_type
	WHERE current_nft_marketplace_listings.last_transaction_timestamp < EXCLUDED.last_transaction_timestamp`)

	_, err := w.client.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (w *Writer) writeTokenOffers(ctx context.Context, rows []*models.CurrentTokenOffer) error {
	return chunkedEach(rows, ChunkSize, func(chunk []*models.CurrentTokenOffer) error {
		if len(chunk) == 0 {
			return nil
		}
		return withRetry(ctx, func() error { return w.upsertTokenOffersChunk(ctx, chunk) })
	})
}

func (w *Writer) upsertTokenOffersChunk(ctx context.Context, rows []*models.CurrentTokenOffer) error {
	const cols = 15
	var sb strings.Builder
	sb.WriteString(`INSERT INTO current_nft_marketplace_token_offers (
		token_data_id, buyer, marketplace, offer_id, collection_id, price,
		token_amount, token_name, is_deleted, contract_address,
		last_transaction_version, last_transaction_timestamp, standard_event_type,
		expiration_time, bid_key
	) VALUES `)

	args := make([]interface{}, 0, len(rows)*cols)
	for i, t := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		writePlaceholderGroup(&sb, i*cols, cols)
		args = append(args,
			t.TokenDataID, t.Buyer, t.Marketplace, nullString(t.OfferID), nullString(t.CollectionID), t.Price,
			t.TokenAmount, nullString(t.TokenName), t.IsDeleted, t.ContractAddress,
			t.LastTransactionVersion, t.LastTransactionTimestamp, string(t.StandardEventType),
			t.ExpirationTime, t.BidKey,
		)
	}
	sb.WriteString(` ON CONFLICT (token_data_id, buyer, marketplace) DO UPDATE SET
		offer_id = EXCLUDED.offer_id,
		collection_id = EXCLUDED.collection_id,
		price = EXCLUDED.price,
		token_amount = EXCLUDED.token_amount,
		token_name = EXCLUDED.token_name,
		is_deleted = EXCLUDED.is_deleted,
		contract_address = EXCLUDED.contract_address,
		last_transaction_version = EXCLUDED.last_transaction_version,
		last_transaction_timestamp = EXCLUDED.last_transaction_timestamp,
		standard_event_type = EXCLUDED.standard_event_type,
		expiration_time = EXCLUDED.expiration_time,
		bid_key = EXCLUDED.bid_key
	WHERE current_nft_marketplace_token_offers.last_transaction_version < EXCLUDED.last_transaction_version`)

	_, err := w.client.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (w *Writer) writeCollectionOffers(ctx context.Context, rows []*models.CurrentCollectionOffer) error {
	return chunkedEach(rows, ChunkSize, func(chunk []*models.CurrentCollectionOffer) error {
		if len(chunk) == 0 {
			return nil
		}
		return withRetry(ctx, func() error { return w.upsertCollectionOffersChunk(ctx, chunk) })
	})
}

func (w *Writer) upsertCollectionOffersChunk(ctx context.Context, rows []*models.CurrentCollectionOffer) error {
	const cols = 13
	var sb strings.Builder
	sb.WriteString(`INSERT INTO current_nft_marketplace_collection_offers (
		collection_offer_id, marketplace, collection_id, buyer, price,
		remaining_token_amount, is_deleted, contract_address,
		last_transaction_version, last_transaction_timestamp, standard_event_type,
		token_data_id, expiration_time
	) VALUES `)

	args := make([]interface{}, 0, len(rows)*cols)
	for i, c := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		writePlaceholderGroup(&sb, i*cols, cols)
		args = append(args,
			c.CollectionOfferID, c.Marketplace, nullString(c.CollectionID), c.Buyer, c.Price,
			c.RemainingTokenAmount, c.IsDeleted, c.ContractAddress,
			c.LastTransactionVersion, c.LastTransactionTimestamp, string(c.StandardEventType),
			nullString(c.TokenDataID), c.ExpirationTime,
		)
	}
	sb.WriteString(` ON CONFLICT (collection_offer_id, marketplace) DO UPDATE SET
		collection_id = EXCLUDED.collection_id,
		buyer = EXCLUDED.buyer,
		price = EXCLUDED.price,
		remaining_token_amount = EXCLUDED.remaining_token_amount,
		is_deleted = EXCLUDED.is_deleted,
		contract_address = EXCLUDED.contract_address,
		last_transaction_version = EXCLUDED.last_transaction_version,
		last_transaction_timestamp = EXCLUDED.last_transaction_timestamp,
		standard_event_type = EXCLUDED.standard_event_type,
		token_data_id = EXCLUDED.token_data_id,
		expiration_time = EXCLUDED.expiration_time
	WHERE current_nft_marketplace_collection_offers.last_transaction_version < EXCLUDED.last_transaction_version`)

	_, err := w.client.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// ExistingListingIDs returns, keyed by token_data_id, the listing_id of the
// current listing already on file for each given token (rows without a
// listing_id are skipped). backfillMissingListingIDs uses it to supplement
// the event remapper with the database lookup the original processor
// performs before writing activities (see DESIGN.md).
func (w *Writer) ExistingListingIDs(ctx context.Context, tokenDataIDs []string) (map[string]string, error) {
	if len(tokenDataIDs) == 0 {
		return map[string]string{}, nil
	}
	rows, err := w.client.db.QueryContext(ctx,
		`SELECT token_data_id, listing_id FROM current_nft_marketplace_listings WHERE token_data_id = ANY($1) AND listing_id IS NOT NULL`,
		pq.Array(tokenDataIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("database: existing listing lookup: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var tokenDataID, listingID string
		if err := rows.Scan(&tokenDataID, &listingID); err != nil {
			return nil, err
		}
		out[tokenDataID] = listingID
	}
	return out, rows.Err()
}

// backfillMissingListingIDs fills in Activity/CurrentListing.ListingID for
// fill_listing and cancel_listing rows whose source event carried no
// listing_id of its own, by looking up the id recorded when the listing was
// placed. Some marketplace event schemas only emit listing_id on the
// place_listing event; without this lookup later activities for the same
// listing would persist with an empty listing_id.
func (w *Writer) backfillMissingListingIDs(ctx context.Context, activities []*models.Activity, listings []*models.CurrentListing) error {
	closesListing := func(kind models.ActionKind) bool {
		return kind == models.ActionCancelListing || kind == models.ActionFillListing
	}
	needed := make(map[string]struct{})
	for _, a := range activities {
		if a.ListingID == "" && closesListing(a.StandardEventType) && a.TokenDataID != "" {
			needed[a.TokenDataID] = struct{}{}
		}
	}
	for _, l := range listings {
		if l.ListingID == "" && closesListing(l.StandardEventType) && l.TokenDataID != "" {
			needed[l.TokenDataID] = struct{}{}
		}
	}
	if len(needed) == 0 {
		return nil
	}

	tokenDataIDs := make([]string, 0, len(needed))
	for id := range needed {
		tokenDataIDs = append(tokenDataIDs, id)
	}
	found, err := w.ExistingListingIDs(ctx, tokenDataIDs)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return nil
	}

	for _, a := range activities {
		if a.ListingID == "" && closesListing(a.StandardEventType) {
			if id, ok := found[a.TokenDataID]; ok {
				a.ListingID = id
			}
		}
	}
	for _, l := range listings {
		if l.ListingID == "" && closesListing(l.StandardEventType) {
			if id, ok := found[l.TokenDataID]; ok {
				l.ListingID = id
			}
		}
	}
	return nil
}

func chunkedEach[T any](rows []T, size int, fn func([]T) error) error {
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		if err := fn(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func writePlaceholderGroup(sb *strings.Builder, offset, n int) {
	sb.WriteByte('(')
	for i := 1; i <= n; i++ {
		if i > 1 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(sb, "$%d", offset+i)
	}
	sb.WriteByte(')')
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
