package ton

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// Friendly-form addresses carry a 2-byte tag/workchain prefix followed by
// the 32-byte account id (and a trailing CRC we do not need).
const (
	friendlyPrefixLen = 2
	accountIDLen      = 32
)

// NormalizeAddress converts a wallet address into the canonical lowercase
// hex account id used for equality checks against indexer records.
//
// Two input shapes are accepted: the friendly URL-safe base64 form, and the
// "workchain:hex" raw form. Anything that cannot be decoded reports ok=false;
// callers are expected to fall back to raw lowercase comparison instead of
// failing the whole verification attempt.
func NormalizeAddress(addr string) (string, bool) {
	if addr == "" {
		return "", false
	}

	if i := strings.IndexByte(addr, ':'); i >= 0 {
		raw := strings.ToLower(addr[i+1:])
		if raw == "" {
			return "", false
		}
		return raw, true
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(addr, "="))
	if err != nil {
		return "", false
	}
	if len(decoded) < friendlyPrefixLen+accountIDLen {
		return "", false
	}

	accountID := decoded[friendlyPrefixLen : friendlyPrefixLen+accountIDLen]
	return strings.ToLower(hex.EncodeToString(accountID)), true
}

// comparableAddress returns the best available identity for an address:
// the normalized account id when decodable, otherwise the raw string
// lowercased. Both sides of a comparison go through this so the fallback
// stays symmetric.
func comparableAddress(addr string) string {
	if norm, ok := NormalizeAddress(addr); ok {
		return norm
	}
	return strings.ToLower(addr)
}

// AddressesMatch reports whether two address representations refer to the
// same account.
func AddressesMatch(a, b string) bool {
	return comparableAddress(a) == comparableAddress(b)
}
