// Package identity normalizes on-chain addresses and derives the stable
// token_data_id / collection_id identifiers used when a marketplace event
// does not supply them directly.
package identity

import "strings"

const addressHexLen = 64

// StandardizeAddress normalizes a raw hex address to the canonical 66-char
// lowercase form: "0x" followed by 64 zero-padded hex digits. Input may or
// may not carry a "0x" prefix and may be shorter than 64 digits. Empty
// input returns empty (callers treat that as "absent").
func StandardizeAddress(raw string) string {
	if raw == "" {
		return ""
	}
	hex := strings.ToLower(strings.TrimPrefix(raw, "0x"))
	if len(hex) > addressHexLen {
		hex = hex[len(hex)-addressHexLen:]
	} else if len(hex) < addressHexLen {
		hex = strings.Repeat("0", addressHexLen-len(hex)) + hex
	}
	return "0x" + hex
}

// IsStandardized reports whether addr already matches the canonical form.
func IsStandardized(addr string) bool {
	if len(addr) != addressHexLen+2 || !strings.HasPrefix(addr, "0x") {
		return false
	}
	for _, c := range addr[2:] {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
