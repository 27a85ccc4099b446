package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestGenerateOpaqueToken(t *testing.T) {
	t.Parallel()

	raw, hash := GenerateOpaqueToken()

	if len(raw) != rawOpaqueLen {
		t.Fatalf("raw length = %d, want %d", len(raw), rawOpaqueLen)
	}
	if _, err := hex.DecodeString(raw); err != nil {
		t.Fatalf("raw is not hex: %v", err)
	}

	sum := sha256.Sum256([]byte(raw))
	if hash != hex.EncodeToString(sum[:]) {
		t.Fatalf("hash does not match sha256 of raw token")
	}

	raw2, hash2 := GenerateOpaqueToken()
	if raw == raw2 || hash == hash2 {
		t.Fatalf("two generated tokens must differ")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	t.Parallel()

	if HashToken("abc") != HashToken("abc") {
		t.Fatalf("hash must be deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatalf("distinct inputs must not collide")
	}
}

func TestWellFormedOpaque(t *testing.T) {
	t.Parallel()

	raw, _ := GenerateOpaqueToken()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"generated token", raw, true},
		{"empty", "", false},
		{"too short", raw[:20], false},
		{"not hex", string(make([]byte, rawOpaqueLen)), false},
	}

	for _, tc := range tests {
		if got := WellFormedOpaque(tc.in); got != tc.want {
			t.Fatalf("%s: WellFormedOpaque = %v, want %v", tc.name, got, tc.want)
		}
	}
}
