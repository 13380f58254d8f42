package config

import (
	"fmt"
	"log"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/identity"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// FieldTarget is a single resolved {table, column} upsert destination.
type FieldTarget struct {
	Table  models.Table
	Column models.Column
}

// FieldMapping pairs one compiled JSONPath with the rows it writes to.
type FieldMapping struct {
	Path    *CompiledPath
	Targets []FieldTarget
}

// EventMapping is the resolved, compiled form of one marketplace's event
// configuration: the standard action it denotes, plus its field
// extractors. The Registry keys it by the event's standardized qualified
// type string, since that is what the remapper always looks up with.
type EventMapping struct {
	Marketplace  string
	Action       models.ActionKind
	RawEventType string
	Fields       []FieldMapping
}

// ResourceMapping is the resolved form of one resource-type configuration.
type ResourceMapping struct {
	RawResourceType string
	Fields          []FieldMapping
}

// Registry is the immutable, shared-without-locks lookup table the event
// and resource remappers consult. It is built once at startup from every
// loaded MarketplaceConfig and never mutated afterward.
type Registry struct {
	Events    map[string]EventMapping
	Resources map[string]ResourceMapping
}

// knownColumns is the closed set of column names a marketplace config may
// target. Anything else is a configuration typo: logged at debug and
// dropped, never a startup failure, so that one bad entry in one
// marketplace file does not take the whole processor down.
var knownColumns = map[string]models.Column{
	"creator_address":         models.ColCreatorAddress,
	"collection_id":           models.ColCollectionID,
	"collection_name":         models.ColCollectionName,
	"token_data_id":            models.ColTokenDataID,
	"token_name":              models.ColTokenName,
	"price":                   models.ColPrice,
	"token_amount":            models.ColTokenAmount,
	"remaining_token_amount":  models.ColRemainingAmount,
	"buyer":                   models.ColBuyer,
	"seller":                  models.ColSeller,
	"listing_id":              models.ColListingID,
	"offer_id":                models.ColOfferID,
	"collection_offer_id":     models.ColCollectionOfferID,
	"contract_address":        models.ColContractAddress,
	"expiration_time":         models.ColExpirationTime,
	"bid_key":                 models.ColBidKey,
}

var knownTables = map[string]models.Table{
	"activities":               models.TableActivities,
	"current_listings":         models.TableCurrentListings,
	"current_token_offers":     models.TableCurrentTokenOffers,
	"current_collection_offers": models.TableCurrentCollectionOffers,
}

// BuildRegistry compiles every JSONPath in every supplied marketplace
// config and resolves its {table, column} targets. It returns an error for
// a JSONPath that fails to parse (batch-fatal at startup per the
// error-handling design) and for an event type that is not a qualified
// addr::module::struct string; an unrecognized table/column name is
// dropped with a log line instead.
func BuildRegistry(logger *log.Logger, configs []*MarketplaceConfig) (*Registry, error) {
	reg := &Registry{
		Events:    make(map[string]EventMapping),
		Resources: make(map[string]ResourceMapping),
	}
	for _, cfg := range configs {
		for rawEventType, remap := range cfg.Events {
			action := models.ActionUnknown
			if kind, ok := cfg.EventModelMapping[rawEventType]; ok {
				action = models.ParseActionKind(kind)
			}
			fields, err := compileFields(logger, remap.EventFields)
			if err != nil {
				return nil, fmt.Errorf("config: marketplace %s event %s: %w", cfg.Name, rawEventType, err)
			}
			qt, ok := identity.ParseQualifiedType(rawEventType)
			if !ok {
				return nil, fmt.Errorf("config: marketplace %s event %s: not a qualified type (want addr::module::struct)", cfg.Name, rawEventType)
			}
			reg.Events[qt.String()] = EventMapping{
				Marketplace:  cfg.Name,
				Action:       action,
				RawEventType: rawEventType,
				Fields:       fields,
			}
		}
		for rawResourceType, remap := range cfg.Resources {
			fields, err := compileFields(logger, remap.ResourceFields)
			if err != nil {
				return nil, fmt.Errorf("config: marketplace %s resource %s: %w", cfg.Name, rawResourceType, err)
			}
			reg.Resources[rawResourceType] = ResourceMapping{
				RawResourceType: rawResourceType,
				Fields:          fields,
			}
		}
	}
	return reg, nil
}

func compileFields(logger *log.Logger, raw map[string][]DbColumn) ([]FieldMapping, error) {
	fields := make([]FieldMapping, 0, len(raw))
	for path, targets := range raw {
		compiled, err := CompilePath(path)
		if err != nil {
			return nil, err
		}
		resolved := make([]FieldTarget, 0, len(targets))
		for _, t := range targets {
			table, tableOK := knownTables[t.Table]
			column, colOK := knownColumns[t.Column]
			if !tableOK || !colOK {
				if logger != nil {
					logger.Printf("debug: dropping unknown mapping target table=%q column=%q for path %q", t.Table, t.Column, path)
				}
				continue
			}
			resolved = append(resolved, FieldTarget{Table: table, Column: column})
		}
		fields = append(fields, FieldMapping{Path: compiled, Targets: resolved})
	}
	return fields, nil
}
