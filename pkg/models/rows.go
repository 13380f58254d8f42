package models

import (
	"strconv"
	"time"
)

// parseIntSilentZero parses a decimal integer, returning 0 on any failure.
// Used for required numeric columns (price) where a silent default is
// preferred over propagating a parse error.
func parseIntSilentZero(value string) int64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseOptionalInt parses a decimal integer, returning nil on failure or
// empty input. Used for optional numeric columns.
func parseOptionalInt(value string) *int64 {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// parseEpochSeconds interprets a decimal seconds-since-epoch string as a
// UTC timestamp. Returns nil on empty or unparseable input.
func parseEpochSeconds(value string) *time.Time {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(n, 0).UTC()
	return &t
}

// Activity is the append-only audit-log row, keyed by
// (txn_version, event_index, marketplace).
type Activity struct {
	TxnVersion         int64
	EventIndex         int64
	Marketplace        string
	RawEventType       string
	StandardEventType  ActionKind
	CreatorAddress     string
	CollectionID       string
	CollectionName     string
	TokenDataID        string
	TokenName          string
	TokenStandard      string
	Price              int64
	TokenAmount        *int64
	Buyer              string
	Seller             string
	ListingID          string
	OfferID            string
	JSONData           []byte
	ContractAddress    string
	BlockTimestamp     time.Time
	ExpirationTime     *time.Time
	BidKey             *int64
}

func (a *Activity) SetField(col Column, value string) {
	if value == "" {
		return
	}
	switch col {
	case ColCreatorAddress:
		a.CreatorAddress = value
	case ColCollectionID:
		a.CollectionID = value
	case ColCollectionName:
		a.CollectionName = value
	case ColTokenDataID:
		a.TokenDataID = value
	case ColTokenName:
		a.TokenName = value
	case ColPrice:
		a.Price = parseIntSilentZero(value)
	case ColTokenAmount:
		a.TokenAmount = parseOptionalInt(value)
	case ColBuyer:
		a.Buyer = value
	case ColSeller:
		a.Seller = value
	case ColListingID:
		a.ListingID = value
	case ColOfferID:
		a.OfferID = value
	case ColContractAddress:
		a.ContractAddress = value
	case ColExpirationTime:
		if t := parseEpochSeconds(value); t != nil {
			a.ExpirationTime = t
		}
	case ColBidKey:
		a.BidKey = parseOptionalInt(value)
	}
}

// CurrentListing is the last-writer-wins projection keyed by
// (token_data_id, marketplace).
type CurrentListing struct {
	TokenDataID             string
	Marketplace              string
	ListingID                string
	CollectionID             string
	Seller                   string
	Price                    int64
	TokenAmount              *int64
	TokenName                string
	IsDeleted                bool
	ContractAddress          string
	LastTransactionVersion   int64
	LastTransactionTimestamp time.Time
	StandardEventType        ActionKind
}

func (r *CurrentListing) Key() string { return r.Marketplace + "::" + r.TokenDataID }

func (r *CurrentListing) SetField(col Column, value string) {
	if value == "" {
		return
	}
	switch col {
	case ColTokenDataID:
		r.TokenDataID = value
	case ColListingID:
		r.ListingID = value
	case ColCollectionID:
		r.CollectionID = value
	case ColSeller:
		r.Seller = value
	case ColPrice:
		r.Price = parseIntSilentZero(value)
	case ColTokenAmount:
		r.TokenAmount = parseOptionalInt(value)
	case ColTokenName:
		r.TokenName = value
	case ColContractAddress:
		r.ContractAddress = value
	}
}

// CurrentTokenOffer is keyed by (token_data_id, buyer, marketplace).
type CurrentTokenOffer struct {
	TokenDataID              string
	Buyer                    string
	Marketplace              string
	OfferID                  string
	CollectionID             string
	Price                    int64
	TokenAmount              *int64
	TokenName                string
	IsDeleted                bool
	ContractAddress          string
	LastTransactionVersion   int64
	LastTransactionTimestamp time.Time
	StandardEventType        ActionKind
	ExpirationTime           *time.Time
	BidKey                   *int64
}

func (r *CurrentTokenOffer) Key() string {
	return r.Marketplace + "::" + r.TokenDataID + "::" + r.Buyer
}

func (r *CurrentTokenOffer) SetField(col Column, value string) {
	if value == "" {
		return
	}
	switch col {
	case ColTokenDataID:
		r.TokenDataID = value
	case ColBuyer:
		r.Buyer = value
	case ColOfferID:
		r.OfferID = value
	case ColCollectionID:
		r.CollectionID = value
	case ColPrice:
		r.Price = parseIntSilentZero(value)
	case ColTokenAmount:
		r.TokenAmount = parseOptionalInt(value)
	case ColTokenName:
		r.TokenName = value
	case ColContractAddress:
		r.ContractAddress = value
	case ColExpirationTime:
		if t := parseEpochSeconds(value); t != nil {
			r.ExpirationTime = t
		}
	case ColBidKey:
		r.BidKey = parseOptionalInt(value)
	}
}

// CurrentCollectionOffer is keyed by (collection_offer_id, marketplace).
type CurrentCollectionOffer struct {
	CollectionOfferID        string
	Marketplace              string
	CollectionID             string
	Buyer                    string
	Price                    int64
	RemainingTokenAmount     *int64
	IsDeleted                bool
	ContractAddress          string
	LastTransactionVersion   int64
	LastTransactionTimestamp time.Time
	StandardEventType        ActionKind
	TokenDataID              string
	ExpirationTime           *time.Time
	BidKey                   *int64
}

func (r *CurrentCollectionOffer) Key() string {
	return r.Marketplace + "::" + r.CollectionOfferID
}

func (r *CurrentCollectionOffer) SetField(col Column, value string) {
	if value == "" {
		return
	}
	switch col {
	case ColCollectionOfferID:
		r.CollectionOfferID = value
	case ColCollectionID:
		r.CollectionID = value
	case ColBuyer:
		r.Buyer = value
	case ColPrice:
		r.Price = parseIntSilentZero(value)
	case ColRemainingAmount:
		r.RemainingTokenAmount = parseOptionalInt(value)
	case ColContractAddress:
		r.ContractAddress = value
	case ColTokenDataID:
		r.TokenDataID = value
	case ColExpirationTime:
		if t := parseEpochSeconds(value); t != nil {
			r.ExpirationTime = t
		}
	case ColBidKey:
		r.BidKey = parseOptionalInt(value)
	}
}
