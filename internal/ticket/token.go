package ticket

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// tokenBytes gives 256 bits of entropy; collisions are negligible at any
// realistic registration volume and the unique index on guests.token is the
// backstop.
const tokenBytes = 32

// TokenHexLen is the length of an encoded verification token.
const TokenHexLen = tokenBytes * 2

// PayloadSep separates the event namespace from the token in a QR payload.
const PayloadSep = "|"

var ErrBadPayload = errors.New("malformed ticket payload")

// GenerateToken returns a fresh verification token as a hex string.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// BuildPayload constructs the QR payload for a token: "<namespace>|<token>".
func BuildPayload(namespace, token string) string {
	return namespace + PayloadSep + token
}

// ParsePayload extracts the token from a scanned QR payload. A bare token is
// also accepted so check-in works when the scanner strips the prefix.
func ParsePayload(namespace, s string) (string, error) {
	s = strings.TrimSpace(s)
	if prefix := namespace + PayloadSep; strings.HasPrefix(s, prefix) {
		s = s[len(prefix):]
	}
	if len(s) != TokenHexLen {
		return "", ErrBadPayload
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", ErrBadPayload
	}
	return strings.ToLower(s), nil
}
