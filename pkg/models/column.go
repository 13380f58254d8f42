package models

// Column is the tagged-enum target of a configured (json_path -> column)
// mapping. It is deliberately a closed set: an unconfigured column name
// read out of a marketplace YAML file is a debug-level skip, never a panic
// or a reflection-based field walk (see SetField on each row type).
type Column string

const (
	ColCreatorAddress  Column = "creator_address"
	ColCollectionID    Column = "collection_id"
	ColCollectionName  Column = "collection_name"
	ColTokenDataID     Column = "token_data_id"
	ColTokenName       Column = "token_name"
	ColPrice           Column = "price"
	ColTokenAmount     Column = "token_amount"
	ColRemainingAmount Column = "remaining_token_amount"
	ColBuyer           Column = "buyer"
	ColSeller          Column = "seller"
	ColListingID       Column = "listing_id"
	ColOfferID         Column = "offer_id"
	ColCollectionOfferID Column = "collection_offer_id"
	ColContractAddress Column = "contract_address"
	ColExpirationTime  Column = "expiration_time"
	ColBidKey          Column = "bid_key"
)

// Table is the destination table name used in a marketplace config's
// {table, column} mapping target.
type Table string

const (
	TableActivities              Table = "activities"
	TableCurrentListings         Table = "current_listings"
	TableCurrentTokenOffers      Table = "current_token_offers"
	TableCurrentCollectionOffers Table = "current_collection_offers"
)

// FieldSetter is implemented by every row type the remappers populate.
// SetField applies the minimum parsing required for the column's semantic
// type (integer, timestamp, or string) and silently ignores empty input
// and columns the row type does not carry, per the configured-DSL contract.
type FieldSetter interface {
	SetField(col Column, value string)
}
