package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/identity"
)

// TestBuildRegistry_EventsKeyedByStandardizedQualifiedType guards against
// storing events under the literal, non-zero-padded config string: every
// real marketplace YAML spells addresses short (e.g. "0xcafe"), but the
// remapper always looks events up by the standardized 66-char form, so the
// registry must store under that same standardized key.
func TestBuildRegistry_EventsKeyedByStandardizedQualifiedType(t *testing.T) {
	cfg := &MarketplaceConfig{
		Name: "wapal",
		Events: map[string]EventRemapping{
			"0xcafe::wapal_marketplace::ListingPlacedEvent": {},
		},
	}
	reg, err := BuildRegistry(nil, []*MarketplaceConfig{cfg})
	require.NoError(t, err)

	_, rawKeyPresent := reg.Events["0xcafe::wapal_marketplace::ListingPlacedEvent"]
	assert.False(t, rawKeyPresent, "registry must not key events by the literal config string")

	standardized := identity.StandardizeAddress("0xcafe") + "::wapal_marketplace::ListingPlacedEvent"
	_, ok := reg.Events[standardized]
	assert.True(t, ok, "registry must key events by the standardized qualified type")
}

func TestBuildRegistry_MalformedEventTypeErrors(t *testing.T) {
	cfg := &MarketplaceConfig{
		Name: "wapal",
		Events: map[string]EventRemapping{
			"not_a_qualified_type": {},
		},
	}
	_, err := BuildRegistry(nil, []*MarketplaceConfig{cfg})
	assert.Error(t, err)
}

// TestBuildRegistry_ResourcesKeyedByRawString confirms the resource side
// stays keyed by the literal config string, unlike events: resource
// write-set changes are matched against the raw struct tag as emitted by
// the stream, not a parsed/standardized qualified type.
func TestBuildRegistry_ResourcesKeyedByRawString(t *testing.T) {
	cfg := &MarketplaceConfig{
		Name: "wapal",
		Resources: map[string]ResourceRemapping{
			"0xcafe::wapal_marketplace::Listing": {},
		},
	}
	reg, err := BuildRegistry(nil, []*MarketplaceConfig{cfg})
	require.NoError(t, err)

	_, ok := reg.Resources["0xcafe::wapal_marketplace::Listing"]
	assert.True(t, ok)
}
