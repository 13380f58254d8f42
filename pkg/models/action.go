// Package models defines the canonical row types persisted by the indexer
// and the column-addressed setter that the remappers drive.
package models

// ActionKind is the closed set of normalized marketplace actions. It is
// stored as its snake_case string form in nft_marketplace_activities.
type ActionKind string

const (
	ActionPlaceListing           ActionKind = "place_listing"
	ActionCancelListing          ActionKind = "cancel_listing"
	ActionFillListing            ActionKind = "fill_listing"
	ActionPlaceTokenOffer        ActionKind = "place_token_offer"
	ActionCancelTokenOffer       ActionKind = "cancel_token_offer"
	ActionFillTokenOffer         ActionKind = "fill_token_offer"
	ActionPlaceCollectionOffer   ActionKind = "place_collection_offer"
	ActionCancelCollectionOffer  ActionKind = "cancel_collection_offer"
	ActionFillCollectionOffer    ActionKind = "fill_collection_offer"
	ActionUnknown                ActionKind = "unknown"
)

// legacyActionAliases translates action-kind spellings seen in older
// marketplace configs onto the names this indexer persists.
var legacyActionAliases = map[string]ActionKind{
	"place_offer":  ActionPlaceTokenOffer,
	"PlaceOffer":   ActionPlaceTokenOffer,
	"PlaceListing": ActionPlaceListing,
}

// ParseActionKind normalizes a raw event_model_mapping value, folding known
// legacy spellings (see the PlaceOffer/PlaceTokenOffer discrepancy) onto the
// canonical kind. Unrecognized values become ActionUnknown rather than an
// error: the action itself is configuration-supplied, so a typo should not
// be process-fatal.
func ParseActionKind(raw string) ActionKind {
	if alias, ok := legacyActionAliases[raw]; ok {
		return alias
	}
	switch ActionKind(raw) {
	case ActionPlaceListing, ActionCancelListing, ActionFillListing,
		ActionPlaceTokenOffer, ActionCancelTokenOffer, ActionFillTokenOffer,
		ActionPlaceCollectionOffer, ActionCancelCollectionOffer, ActionFillCollectionOffer:
		return ActionKind(raw)
	default:
		return ActionUnknown
	}
}

// IsListing, IsTokenOffer, IsCollectionOffer report which "current"
// projection (if any) an action kind participates in.
func (a ActionKind) IsListing() bool {
	return a == ActionPlaceListing || a == ActionCancelListing || a == ActionFillListing
}

func (a ActionKind) IsTokenOffer() bool {
	return a == ActionPlaceTokenOffer || a == ActionCancelTokenOffer || a == ActionFillTokenOffer
}

func (a ActionKind) IsCollectionOffer() bool {
	return a == ActionPlaceCollectionOffer || a == ActionCancelCollectionOffer || a == ActionFillCollectionOffer
}

// IsDeleted reports whether this action marks its current-state row as
// removed (cancel/fill) rather than created (place).
func (a ActionKind) IsDeleted() bool {
	switch a {
	case ActionCancelListing, ActionFillListing,
		ActionCancelTokenOffer, ActionFillTokenOffer,
		ActionCancelCollectionOffer, ActionFillCollectionOffer:
		return true
	default:
		return false
	}
}
