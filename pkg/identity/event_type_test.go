package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQualifiedType(t *testing.T) {
	q, ok := ParseQualifiedType("0x1::wapal_marketplace::ListingPlacedEvent")
	require.True(t, ok)
	assert.Equal(t, "wapal_marketplace", q.Module)
	assert.Equal(t, "ListingPlacedEvent", q.Struct)
	assert.Regexp(t, addrPattern, q.Address)
}

func TestParseQualifiedType_GenericRemainderRejoined(t *testing.T) {
	q, ok := ParseQualifiedType("0x1::offer::Offer<0x1::coin::Coin>")
	require.True(t, ok)
	assert.Equal(t, "Offer<0x1::coin::Coin>", q.Struct)
}

func TestParseQualifiedType_TooFewSegmentsSkipped(t *testing.T) {
	_, ok := ParseQualifiedType("0x1::wapal_marketplace")
	assert.False(t, ok)
	_, ok = ParseQualifiedType("not_a_type")
	assert.False(t, ok)
}

func TestIsFrameworkEvent(t *testing.T) {
	q, _ := ParseQualifiedType("0x1::aptos_coin::AptosCoin")
	assert.True(t, IsFrameworkEvent(q))

	q2, _ := ParseQualifiedType("0xdeadbeef::wapal_marketplace::ListingPlacedEvent")
	assert.False(t, IsFrameworkEvent(q2))
}

func TestIsFrameworkEvent_ReservedRange(t *testing.T) {
	qa, _ := ParseQualifiedType("0xa::token::Token")
	assert.True(t, IsFrameworkEvent(qa), "0xa is the last reserved framework address")

	qb, _ := ParseQualifiedType("0xb::wapal_marketplace::ListingPlacedEvent")
	assert.False(t, IsFrameworkEvent(qb), "0xb is outside the reserved framework range")
}
