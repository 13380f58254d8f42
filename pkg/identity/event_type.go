package identity

import "strings"

// QualifiedType is the (address, module, struct) triple a raw chain type
// string decomposes into, e.g. "0x1::wapal_marketplace::ListingPlacedEvent".
type QualifiedType struct {
	Address string
	Module  string
	Struct  string
}

// String reconstructs the qualified type's standard "addr::module::struct"
// spelling, using the standardized address.
func (q QualifiedType) String() string {
	return q.Address + "::" + q.Module + "::" + q.Struct
}

// ParseQualifiedType splits a raw type string on "::" into its first three
// segments, concatenating any remainder back into the struct name (a
// generic struct such as "...::Offer<0x1::coin::Coin>" would otherwise
// lose its type argument). The address segment is standardized. Returns
// false if the raw string has fewer than three segments, so callers can
// skip a malformed type string silently rather than erroring.
func ParseQualifiedType(raw string) (QualifiedType, bool) {
	parts := strings.SplitN(raw, "::", 3)
	if len(parts) < 3 {
		return QualifiedType{}, false
	}
	return QualifiedType{
		Address: StandardizeAddress(parts[0]),
		Module:  parts[1],
		Struct:  parts[2],
	}, true
}

// IsFrameworkEvent reports whether a qualified type belongs to one of the
// Aptos framework/stdlib reserved addresses (the standardized range
// 0x1..0xa, mirroring AccountAddress::is_special) rather than to a
// marketplace contract. These are never present in a marketplace config's
// event_model_mapping, so the remapper skips the registry lookup for them
// entirely.
func IsFrameworkEvent(q QualifiedType) bool {
	hex := strings.TrimPrefix(q.Address, "0x")
	if len(hex) != addressHexLen {
		return false
	}
	if hex[:addressHexLen-1] != strings.Repeat("0", addressHexLen-1) {
		return false
	}
	last := hex[addressHexLen-1]
	return (last >= '1' && last <= '9') || last == 'a'
}
