package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// opaqueTokenBytes is the entropy of a freshly generated opaque token.
// The hex encoding doubles it on the wire.
const opaqueTokenBytes = 40

// rawOpaqueLen is the length of a well-formed raw token string.
const rawOpaqueLen = opaqueTokenBytes * 2

// GenerateOpaqueToken returns a new random opaque token together with the
// SHA-256 digest under which it is stored. The raw value is handed to the
// client exactly once and never persisted server-side.
//
// The process-wide entropy source failing is not a recoverable condition,
// so this panics instead of returning an error.
func GenerateOpaqueToken() (raw, hash string) {
	b := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	raw = hex.EncodeToString(b)
	return raw, HashToken(raw)
}

// HashToken re-derives the storage key for a presented opaque token. The
// digest is deterministic and unkeyed; the token value itself is the secret.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// WellFormedOpaque reports whether raw has the shape of a token this server
// could have issued. Malformed input is rejected before any storage access.
func WellFormedOpaque(raw string) bool {
	if len(raw) != rawOpaqueLen {
		return false
	}
	_, err := hex.DecodeString(raw)
	return err == nil
}
